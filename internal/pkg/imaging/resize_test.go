package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestIsResizable(t *testing.T) {
	assert.True(t, IsResizable("image/jpeg"))
	assert.True(t, IsResizable("image/png"))
	assert.True(t, IsResizable("image/gif"))
	assert.False(t, IsResizable("image/webp"))
	assert.False(t, IsResizable("application/pdf"))
	assert.False(t, IsResizable(""))
}

func TestResizePreservesAspectRatio(t *testing.T) {
	src := encodePNG(t, 200, 100)

	resized, err := Resize(src, 50)
	require.NoError(t, err)
	assert.Equal(t, "image/png", resized.MimeType)

	out, _, err := image.Decode(bytes.NewReader(resized.Data))
	require.NoError(t, err)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 25, out.Bounds().Dy())
}

func TestResizeKeepsJPEGFormat(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	resized, err := Resize(&buf, 20)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", resized.MimeType)

	_, format, err := image.Decode(bytes.NewReader(resized.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestResizeRejectsBadInput(t *testing.T) {
	_, err := Resize(bytes.NewReader([]byte("not an image")), 50)
	require.Error(t, err)

	_, err = Resize(encodePNG(t, 10, 10), 0)
	require.Error(t, err)

	_, err = Resize(encodePNG(t, 10, 10), -3)
	require.Error(t, err)
}

func TestResizeTinyHeightClampsToOne(t *testing.T) {
	src := encodePNG(t, 400, 2)

	resized, err := Resize(src, 10)
	require.NoError(t, err)

	out, _, err := image.Decode(bytes.NewReader(resized.Data))
	require.NoError(t, err)
	assert.Equal(t, 1, out.Bounds().Dy())
}
