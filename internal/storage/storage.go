// Package storage abstracts where listing images end up. Production
// deployments point this at an object store; the local implementation is
// the development default.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type ImageStore interface {
	Save(ctx context.Context, folder, filename, contentType string, data []byte) (string, error)
}

// LocalStore writes images under a root directory and returns URLs below a
// configured base path.
type LocalStore struct {
	root    string
	baseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Save(_ context.Context, folder, filename, _ string, data []byte) (string, error) {
	dir := filepath.Join(s.root, filepath.Clean(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, folder, name), nil
}
