package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore writes objects below Dir; the router serves Dir at /uploads.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: joinURL(baseURL, "uploads")}
}

func (l *LocalStore) Save(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}

	dest := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if _, err := io.Copy(f, io.LimitReader(r, size)); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return joinURL(l.BaseURL, key), nil
}
