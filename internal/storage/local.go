package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes images below a root directory that is also served at
// publicURL (see the /uploads route).
type LocalStore struct {
	root      diskRoot
	publicURL string
}

func NewLocalStore(root string, publicURL string) (*LocalStore, error) {
	dir, err := newDiskRoot(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir.abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}

	return &LocalStore{root: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *LocalStore) RootAbs() string {
	return s.root.abs
}

func (s *LocalStore) Put(_ context.Context, folder string, img Image) (Object, error) {
	key := objectKey(folder, img.Ext)

	resolved, err := s.root.resolve(key)
	if err != nil {
		return Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return Object{}, fmt.Errorf("create parent directory: %w", err)
	}

	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, img.Data, 0o644); err != nil {
		return Object{}, fmt.Errorf("write %q: %w", key, err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		_ = os.Remove(tmp)
		return Object{}, fmt.Errorf("finalize %q: %w", key, err)
	}

	return Object{Key: key, URL: s.publicURL + "/" + key}, nil
}

// Delete removes the object. A key that no longer exists is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	resolved, err := s.root.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
