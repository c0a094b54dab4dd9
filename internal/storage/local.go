package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a root directory on the local filesystem and
// serves them from a static base URL.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save streams r into root/key, creating parent directories as needed.
func (s *LocalStore) Save(_ context.Context, key string, r io.Reader) (StoredObject, error) {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return StoredObject{}, fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return StoredObject{}, fmt.Errorf("create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return StoredObject{}, fmt.Errorf("write object: %w", err)
	}
	return StoredObject{Key: key, URL: s.baseURL + "/" + key}, nil
}

// Delete removes the object; a missing object is not an error.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Root exposes the storage root for static file serving.
func (s *LocalStore) Root() string {
	return s.root
}
