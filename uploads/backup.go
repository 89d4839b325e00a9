package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const backupStampLayout = "2006-01-02_15-04-05"

// Backup copies srcDir into a timestamped folder under backupDir and then
// removes backup folders older than retention. It returns the new folder.
func Backup(srcDir, backupDir string, retention time.Duration, now time.Time) (string, error) {
	destDir := filepath.Join(backupDir, now.Format(backupStampLayout))
	if err := copyDir(srcDir, destDir); err != nil {
		return "", fmt.Errorf("back up %s: %w", srcDir, err)
	}
	if retention > 0 {
		cleanupOldBackups(backupDir, retention, now)
	}
	return destDir, nil
}

// RunDailyBackup runs Backup every day at hour:00 local time until ctx is
// canceled.
func RunDailyBackup(ctx context.Context, srcDir, backupDir string, retention time.Duration, hour int) {
	for {
		now := time.Now()
		next := nextRun(now, hour)
		slog.Info("Next upload backup scheduled", "at", next.Format("2006-01-02 15:04:05"))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		dest, err := Backup(srcDir, backupDir, retention, time.Now())
		if err != nil {
			slog.Error("Failed to back up uploads", "err", err)
			continue
		}
		slog.Info("Uploads backed up", "dest", dest)
	}
}

func nextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

func copyDir(src, dest string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			err = copyDir(srcPath, destPath)
		} else {
			err = copyFile(srcPath, destPath)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// cleanupOldBackups removes backup folders whose timestamp name is older
// than retention. Folders with other names are left alone.
func cleanupOldBackups(backupDir string, retention time.Duration, now time.Time) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		slog.Error("Failed to read backup directory", "dir", backupDir, "err", err)
		return
	}

	cutoff := now.Add(-retention)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		stamp, err := time.ParseInLocation(backupStampLayout, entry.Name(), now.Location())
		if err != nil || !stamp.Before(cutoff) {
			continue
		}
		folder := filepath.Join(backupDir, entry.Name())
		if err := os.RemoveAll(folder); err != nil {
			slog.Error("Failed to remove old backup", "dir", folder, "err", err)
			continue
		}
		slog.Info("Removed old backup", "dir", folder)
	}
}
