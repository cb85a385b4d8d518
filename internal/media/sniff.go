// Package media stores cocktail images in an S3-compatible object store and
// validates uploaded content before it is accepted.
package media

import (
	"bytes"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
)

const (
	MIMETypePNG  = "image/png"
	MIMETypeJPEG = "image/jpeg"
	MIMETypeWEBP = "image/webp"

	// MaxImageBytes caps uploads at 2 MiB.
	MaxImageBytes = 2 << 20
)

var typeExtensions = map[string]string{
	MIMETypePNG:  ".png",
	MIMETypeJPEG: ".jpg",
	MIMETypeWEBP: ".webp",
}

// DetectImageType sniffs the actual content; the declared content type of an
// upload is never trusted. Only PNG, JPEG and WEBP are accepted.
func DetectImageType(data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return MIMETypePNG, nil
	case bytes.HasPrefix(data, []byte("\xFF\xD8")):
		return MIMETypeJPEG, nil
	case len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WEBP")):
		return MIMETypeWEBP, nil
	}
	return "", apperr.Validation("invalid data", apperr.FieldError{
		Field:   "image",
		Message: "only PNG, JPEG or WEBP images are accepted",
	})
}

// ExtensionFor returns the canonical file extension for a sniffed type.
func ExtensionFor(mimeType string) string {
	return typeExtensions[mimeType]
}
