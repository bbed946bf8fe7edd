// Package storage saves uploaded media either to an S3-compatible bucket or
// to a local directory served by the API.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUploadFailed = errors.New("storage: upload failed")
	ErrInvalidKey   = errors.New("storage: invalid object key")
)

// Store persists an object and returns its public URL.
type Store interface {
	Save(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
}

// NewKey builds a collision-free object key under media/YYYY/MM, keeping the
// original extension when it matches the content type.
func NewKey(now time.Time, filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || !extensionMatches(ext, contentType) {
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}
	return fmt.Sprintf("media/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New().String(), ext)
}

func extensionMatches(ext, contentType string) bool {
	byExt := mime.TypeByExtension(ext)
	if byExt == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(byExt)
	return err == nil && mediaType == contentType
}

func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	return path.Clean(key) == key && !strings.HasPrefix(key, "..")
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
