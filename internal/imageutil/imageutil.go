// Package imageutil decodes and checks the images accepted for comparison.
package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder

	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxImageSize is the largest upload the service accepts.
const MaxImageSize = 10 * 1024 * 1024 // 10MB

var (
	ErrEmptyImage        = errors.New("image is empty")
	ErrImageTooLarge     = errors.New("image exceeds maximum size")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

var supportedFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
}

// Decode decodes a JPEG, PNG or WebP payload and returns the image and its format name.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return nil, "", ErrImageTooLarge
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if !supportedFormats[format] {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return img, format, nil
}

// Validate reports whether data is a complete, decodable image.
func Validate(data []byte) (string, error) {
	_, format, err := Decode(data)
	return format, err
}
