// Package uploads stores user-supplied images on local disk and derives the
// public URLs they are served under.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrUnsupportedType = errors.New("invalid file type")
)

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

// AllowedImage reports whether name carries one of the accepted image
// extensions. The check is case-insensitive.
func AllowedImage(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(name[i+1:])]
}

// SanitizeFilename keeps letters, digits, '.', '-' and '_' and replaces
// everything else with '_'.
func SanitizeFilename(name string) string {
	return unsafeChars.ReplaceAllString(filepath.Base(name), "_")
}

// Store writes images into one directory that is served at route.
type Store struct {
	dir     string
	baseURL string
	route   string
}

// NewStore creates dir if needed. baseURL is the public origin, e.g.
// "http://localhost:5000", and route the path the directory is served
// under, e.g. "/uploads".
func NewStore(dir, baseURL, route string) (*Store, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create upload folder: %w", err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		route:   "/" + strings.Trim(route, "/"),
	}, nil
}

func (s *Store) Dir() string   { return s.dir }
func (s *Store) Route() string { return s.route }

// URL returns the public URL of a stored file.
func (s *Store) URL(filename string) string {
	return fmt.Sprintf("%s%s/%s", s.baseURL, s.route, filename)
}

// SaveImage validates the upload's extension and writes it under a
// uuid-prefixed sanitized name, which it returns.
func (s *Store) SaveImage(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", ErrNoFile
	}
	if !AllowedImage(fh.Filename) {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	filename := fmt.Sprintf("%s_%s", uuid.NewString()[:8], SanitizeFilename(fh.Filename))
	if err := s.write(filename, src); err != nil {
		return "", err
	}
	return filename, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(filename string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(filename)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func (s *Store) write(filename string, r io.Reader) error {
	out, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return out.Sync()
}
