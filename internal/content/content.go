// Package content guards the scanner against file bodies it cannot use:
// binary blobs and anything over the configured size limit.
package content

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrBinary is returned for content whose detected type is not text.
	ErrBinary = errors.New("binary content")
	// ErrTooLarge is returned for content over the size limit.
	ErrTooLarge = errors.New("content too large")
)

// IsText reports whether data is detected as text/plain or one of its
// descendants (JSON, HTML, source code and so on).
func IsText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Decode returns data as a string if it is text and at most maxBytes long.
// A maxBytes of zero or less disables the size check.
func Decode(name string, data []byte, maxBytes int) (string, error) {
	if maxBytes > 0 && len(data) > maxBytes {
		return "", fmt.Errorf("%s: %d bytes exceeds limit of %d: %w", name, len(data), maxBytes, ErrTooLarge)
	}
	if len(data) == 0 {
		return "", nil
	}
	if !IsText(data) {
		return "", fmt.Errorf("%s: detected %s: %w", name, mimetype.Detect(data).String(), ErrBinary)
	}
	return string(data), nil
}
