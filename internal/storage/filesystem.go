package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PublicAvatarPath is the URL path local avatars are served under.
const PublicAvatarPath = "/public/images/user/"

// FilesystemStore keeps avatars in a directory that is served as static content.
type FilesystemStore struct {
	root    string
	baseURL string
}

// NewFilesystemStore initialises a store rooted at dir, creating it when missing.
// baseURL is the externally visible server address used to build avatar URLs.
func NewFilesystemStore(dir, baseURL string) (*FilesystemStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("avatar store: root directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("avatar store: ensure root directory: %w", err)
	}
	return &FilesystemStore{
		root:    dir,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

// Root returns the directory avatars are written to.
func (s *FilesystemStore) Root() string {
	return s.root
}

// Put writes body to a temporary file and renames it into place.
func (s *FilesystemStore) Put(ctx context.Context, name string, body io.Reader, _ int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return fmt.Errorf("avatar store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("avatar store: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("avatar store: close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.root, name)); err != nil {
		return fmt.Errorf("avatar store: publish %s: %w", name, err)
	}
	return nil
}

// Delete removes the named avatar.
func (s *FilesystemStore) Delete(_ context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("avatar store: delete %s: %w", name, err)
	}
	return nil
}

// URL builds the public address of a local avatar.
func (s *FilesystemStore) URL(name string) string {
	return s.baseURL + PublicAvatarPath + name
}
