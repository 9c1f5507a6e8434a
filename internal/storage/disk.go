package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskWriter keeps images under a base directory on the local filesystem
type DiskWriter struct {
	baseDir string
}

func NewDiskWriter(baseDir string) *DiskWriter {
	return &DiskWriter{baseDir: baseDir}
}

func (w *DiskWriter) UploadImage(ctx context.Context, folder, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, content, ext, err := sniff(r, originalName)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(w.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image folder: %w", err)
	}
	name := newName(ext)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	return name, nil
}

func (w *DiskWriter) DeleteImage(_ context.Context, folder, name string) error {
	// Base strips any directory part so only files inside the folder can be removed
	err := os.Remove(filepath.Join(w.baseDir, folder, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
