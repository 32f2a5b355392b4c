// Package imagemeta probes image dimensions and prepares image bytes for
// inlining into embedded reports.
package imagemeta

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"net/http"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support
)

// Dimensions holds image width and height in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// Probe returns image dimensions from raw bytes without fully decoding
// the pixel data.
func Probe(data []byte) (Dimensions, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	return Dimensions{Width: config.Width, Height: config.Height}, nil
}

// ContentType sniffs the MIME type of raw image bytes.
func ContentType(data []byte) string {
	return http.DetectContentType(data)
}

// DataURI encodes raw image bytes as a base64 data URI for inline use.
func DataURI(data []byte) string {
	return "data:" + ContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ShrinkToWidth downscales an image so its width does not exceed maxWidth,
// re-encoding as JPEG. Embedded reports inline every image as base64, so
// capping the inline width keeps a full-library document shippable.
//
// A maxWidth of zero disables resizing. Images already within the limit,
// and images that cannot be decoded, are returned unchanged so the caller
// can still inline the original bytes.
func ShrinkToWidth(data []byte, maxWidth int) []byte {
	if maxWidth <= 0 {
		return data
	}

	dims, err := Probe(data)
	if err != nil || dims.Width <= maxWidth {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return data
	}
	return buf.Bytes()
}
