package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes uploads to a directory served by the HTTP layer under
// /media. Development fallback when MinIO is not configured.
type LocalStore struct {
	dir       string
	publicURL string
}

// NewLocalStore ensures the media directory exists.
func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStore{
		dir:       dir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Dir returns the directory uploads are written to.
func (s *LocalStore) Dir() string { return s.dir }

// Store writes the image under the media directory.
func (s *LocalStore) Store(ctx context.Context, data []byte, filenameHint, contentType string) (string, string, error) {
	key := objectKey(filenameHint)
	path := filepath.Join(s.dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}
	return key, fmt.Sprintf("%s/media/%s", s.publicURL, key), nil
}
