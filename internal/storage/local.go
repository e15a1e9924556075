package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound signals that the stored object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// LocalStore persists document payloads on the local filesystem. Object keys
// are opaque and generated on save; callers keep them in document metadata.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory and returns a store rooted there.
func NewLocalStore(root string) (*LocalStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save streams the payload to a new object and returns its key and size.
func (s *LocalStore) Save(name string, payload io.Reader) (string, int64, error) {
	key := uuid.NewString() + sanitiseExtension(name)
	path := filepath.Join(s.root, key)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", 0, fmt.Errorf("storage: create object: %w", err)
	}

	size, err := io.Copy(file, payload)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("storage: write object: %w", err)
	}

	return key, size, nil
}

// Open returns a reader over the stored object. The caller closes it.
func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: open object: %w", err)
	}
	return file, nil
}

// Delete removes the stored object, tolerating objects already gone.
func (s *LocalStore) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete object: %w", err)
	}
	return nil
}

// resolve rejects keys that would escape the store root.
func (s *LocalStore) resolve(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || key != filepath.Base(key) {
		return "", errors.New("storage: invalid object key")
	}
	return filepath.Join(s.root, key), nil
}

func sanitiseExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 16 {
		return ""
	}
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
