package storage

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
)

// ObjectStore persists an uploaded image and returns a key plus a publicly
// reachable URL for it.
type ObjectStore interface {
	Store(ctx context.Context, data []byte, filenameHint, contentType string) (key, url string, err error)
}

// objectKey derives a storage key from the upload's extension, defaulting to
// .jpg when the filename carries none.
func objectKey(filenameHint string) string {
	ext := filepath.Ext(filenameHint)
	if ext == "" {
		ext = ".jpg"
	}
	return uuid.NewString() + ext
}
