// Package image checks uploaded pictures sent as base64 data URLs.
package image

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxSize is the largest decoded image accepted.
const MaxSize = 5 << 20

var (
	ErrNotDataURL = errors.New("image must be a base64 data URL")
	ErrNotImage   = errors.New("file must be an image")
	ErrTooLarge   = errors.New("image must be 5MB or smaller")
)

// Validate accepts "data:image/<type>;base64,<payload>" whose payload decodes to at most MaxSize
// bytes of real image content.
func Validate(dataURL string) error {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return ErrNotDataURL
	}
	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !strings.HasPrefix(declared, "image/") {
		return ErrNotImage
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxSize+3 {
		return ErrTooLarge
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotDataURL, err)
	}
	if len(raw) > MaxSize {
		return ErrTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(raw), "image/") {
		return ErrNotImage
	}
	return nil
}
