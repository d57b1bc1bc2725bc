package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	apperrors "github.com/spec-kit/civicguard/pkg/util/errorutil"
)

// MaxUploadBytes caps accepted image uploads at 10MB.
const MaxUploadBytes = 10 * 1024 * 1024

// ValidateImage checks that the payload is an acceptable image upload:
// declared (or sniffed) image content type, within the size cap, and
// decodable. Returns the effective content type.
func ValidateImage(data []byte, declaredContentType string) (string, error) {
	contentType := declaredContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", apperrors.NewUnsupportedMediaType("unsupported media type, please upload an image")
	}
	if len(data) > MaxUploadBytes {
		return "", apperrors.NewPayloadTooLarge("file too large (max 10MB)")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", apperrors.NewValidationError("invalid image file", nil)
	}
	return contentType, nil
}

// SHA256Hex returns the payload hash used for client-side de-duplication.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
