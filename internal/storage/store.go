package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	_ AvatarStore = (*FilesystemStore)(nil)
	_ AvatarStore = (*S3Store)(nil)
)

// ErrInvalidName is returned for object names that are empty or try to escape the store root.
var ErrInvalidName = errors.New("storage: invalid object name")

// AvatarStore persists processed avatar images by file name.
type AvatarStore interface {
	// Put stores the object under name, replacing any previous content.
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, name string) error
	// URL returns the public address the object is served from.
	URL(name string) string
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	return path.Clean(name), nil
}
