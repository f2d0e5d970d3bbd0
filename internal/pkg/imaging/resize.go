// Package imaging implements the on-the-fly downscale used by the serve endpoint.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
)

// Resized holds a re-encoded image and its MIME type
type Resized struct {
	Data     []byte
	MimeType string
}

// IsResizable reports whether the format of the given MIME type can be resized
func IsResizable(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif":
		return true
	}
	return false
}

// Resize decodes r, scales it to the given width preserving aspect ratio and
// re-encodes it in its original format. Width must be positive; upscaling
// is allowed.
func Resize(r io.Reader, width int) (*Resized, error) {
	if width <= 0 {
		return nil, fmt.Errorf("width must be positive, got %d", width)
	}

	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("image has zero dimension")
	}

	height := int(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx()))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	var mimeType string

	switch format {
	case "jpeg":
		mimeType = "image/jpeg"
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85})
	case "png":
		mimeType = "image/png"
		err = png.Encode(&buf, dst)
	case "gif":
		mimeType = "image/gif"
		err = gif.Encode(&buf, dst, nil)
	default:
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return &Resized{Data: buf.Bytes(), MimeType: mimeType}, nil
}
