package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestAllowedImage(t *testing.T) {
	tests := map[string]bool{
		"apple.png":   true,
		"apple.JPG":   true,
		"apple.jpeg":  true,
		"apple.gif":   true,
		"apple.webp":  false,
		"apple":       false,
		"apple.png.x": false,
		"":            false,
	}
	for name, want := range tests {
		assert.Equal(t, want, AllowedImage(name), name)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_photo__1_.PNG", SanitizeFilename("my photo (1).PNG"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "milk-1L_v2.jpg", SanitizeFilename("milk-1L_v2.jpg"))
}

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewStore(dir, "http://localhost:5000/", "uploads")
	require.NoError(t, err)

	name, err := s.SaveImage(fileHeader(t, "fresh milk.png", []byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_fresh_milk.png"), name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "http://localhost:5000/uploads/"+name, s.URL(name))

	other, err := s.SaveImage(fileHeader(t, "fresh milk.png", []byte("again")))
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "http://localhost:5000", "/uploads")
	require.NoError(t, err)

	name, err := s.SaveImage(fileHeader(t, "tea.jpg", []byte("jpg")))
	require.NoError(t, err)
	require.NoError(t, s.Remove(name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Remove(name), "removing twice is fine")
}

func TestSaveImageRejects(t *testing.T) {
	s, err := NewStore(t.TempDir(), "http://localhost:5000", "/static/profiles")
	require.NoError(t, err)

	_, err = s.SaveImage(nil)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = s.SaveImage(fileHeader(t, "notes.txt", []byte("x")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, "http://localhost:5000/static/profiles/a.png", s.URL("a.png"))
}

func TestBackupCopiesAndPrunes(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.png"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "b.png"), []byte("b"), 0o644))

	backupDir := t.TempDir()
	now := time.Date(2024, 5, 10, 2, 0, 0, 0, time.Local)

	stale := filepath.Join(backupDir, now.Add(-5*24*time.Hour).Format(backupStampLayout))
	fresh := filepath.Join(backupDir, now.Add(-24*time.Hour).Format(backupStampLayout))
	unrelated := filepath.Join(backupDir, "keep-me")
	for _, d := range []string{stale, fresh, unrelated} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}

	dest, err := Backup(src, backupDir, 4*24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(backupDir, "2024-05-10_02-00-00"), dest)

	data, err := os.ReadFile(filepath.Join(dest, "nested", "b.png"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))

	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.DirExists(t, unrelated)
}

func TestNextRun(t *testing.T) {
	before := time.Date(2024, 5, 10, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC), nextRun(before, 2))

	after := time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 11, 2, 0, 0, 0, time.UTC), nextRun(after, 2))
}
