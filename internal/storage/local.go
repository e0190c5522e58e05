package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps images under a directory served at publicURL.
type LocalStore struct {
	root      string
	publicURL string
}

// NewLocalStore returns a store rooted at dir.
func NewLocalStore(dir, publicURL string) *LocalStore {
	return &LocalStore{root: dir, publicURL: strings.TrimSuffix(publicURL, "/")}
}

// Root is the directory files are written under.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	p := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.URL(k), nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(k)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *LocalStore) URL(key string) string {
	return s.publicURL + "/" + strings.TrimPrefix(key, "/")
}
