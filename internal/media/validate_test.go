package media

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"testing"

	apperrors "github.com/spec-kit/civicguard/pkg/util/errorutil"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateImage_AcceptsPNG(t *testing.T) {
	contentType, err := ValidateImage(pngBytes(t), "image/png")
	if err != nil {
		t.Fatalf("ValidateImage: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("content type = %q", contentType)
	}
}

func TestValidateImage_SniffsMissingContentType(t *testing.T) {
	contentType, err := ValidateImage(pngBytes(t), "")
	if err != nil {
		t.Fatalf("ValidateImage: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("sniffed content type = %q", contentType)
	}
}

func TestValidateImage_RejectsNonImage(t *testing.T) {
	_, err := ValidateImage([]byte("%PDF-1.7 not an image"), "application/pdf")
	if err == nil {
		t.Fatal("expected rejection")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "UNSUPPORTED_MEDIA_TYPE" || domainErr.HTTPStatus != http.StatusUnsupportedMediaType {
		t.Fatalf("got %s/%d", domainErr.Code, domainErr.HTTPStatus)
	}
}

func TestValidateImage_RejectsOversizedPayload(t *testing.T) {
	_, err := ValidateImage(make([]byte, MaxUploadBytes+1), "image/png")
	if err == nil {
		t.Fatal("expected rejection")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "PAYLOAD_TOO_LARGE" || domainErr.HTTPStatus != http.StatusRequestEntityTooLarge {
		t.Fatalf("got %s/%d", domainErr.Code, domainErr.HTTPStatus)
	}
}

func TestValidateImage_RejectsUndecodableImage(t *testing.T) {
	_, err := ValidateImage([]byte("truncated"), "image/png")
	if err == nil {
		t.Fatal("expected rejection")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "VALIDATION_FAILED" || domainErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("got %s/%d", domainErr.Code, domainErr.HTTPStatus)
	}
}

func TestSHA256Hex(t *testing.T) {
	if got := SHA256Hex([]byte("abc")); got != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("got %q", got)
	}
	if a, b := SHA256Hex([]byte("x")), SHA256Hex([]byte("y")); a == b {
		t.Fatal("distinct payloads must hash differently")
	}
}
