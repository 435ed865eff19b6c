package scene

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImageChannels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(1, 0, color.Gray{Y: 200})

	opaque := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	opaque.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	opaque.SetNRGBA(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})

	translucent := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	translucent.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 128})

	tests := []struct {
		name     string
		img      image.Image
		channels int
		pixels   []byte
	}{
		{"gray", gray, 1, []byte{0, 200, 0, 0}},
		{"opaque", opaque, 3, []byte{10, 20, 30, 40, 50, 60}},
		{"translucent", translucent, 4, []byte{1, 2, 3, 128}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DecodeImage(bytes.NewReader(encodePNG(t, tt.img)), false)
			require.NoError(t, err)
			assert.Equal(t, tt.channels, d.Channels)
			assert.Equal(t, tt.pixels, d.Pixels)
		})
	}
}

func TestDecodeImageFlip(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 1, 3))
	img.SetGray(0, 0, color.Gray{Y: 1})
	img.SetGray(0, 1, color.Gray{Y: 2})
	img.SetGray(0, 2, color.Gray{Y: 3})

	d, err := DecodeImage(bytes.NewReader(encodePNG(t, img)), true)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 2, 1}, d.Pixels)
}

func TestDecodeImageBMP(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))

	d, err := DecodeImage(&buf, false)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Width)
	assert.Equal(t, 2, d.Height)
	assert.Len(t, d.Pixels, d.Width*d.Height*d.Channels)
}

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodeImageFormats(t *testing.T) {
	src := solidNRGBA(4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	encoders := map[string]func(*bytes.Buffer) error{
		"png":  func(b *bytes.Buffer) error { return png.Encode(b, src) },
		"jpeg": func(b *bytes.Buffer) error { return jpeg.Encode(b, src, &jpeg.Options{Quality: 100}) },
		"tga":  func(b *bytes.Buffer) error { return tga.Encode(b, src) },
	}
	for name, encode := range encoders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, encode(&buf))

			d, err := DecodeImage(&buf, false)
			require.NoError(t, err)
			assert.Equal(t, 4, d.Width)
			assert.Equal(t, 4, d.Height)
			require.Equal(t, 3, d.Channels)
			assert.InDelta(t, 200, d.Pixels[0], 4)
			assert.InDelta(t, 100, d.Pixels[1], 4)
			assert.InDelta(t, 50, d.Pixels[2], 4)
		})
	}
}

func TestLoadImageTGA(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tga.Encode(&buf, solidNRGBA(2, 3, color.NRGBA{R: 9, G: 8, B: 7, A: 255})))
	path := filepath.Join(t.TempDir(), "solid.tga")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	d, err := LoadImage(path, false)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Width)
	assert.Equal(t, 3, d.Height)
	assert.Equal(t, []byte{9, 8, 7}, d.Pixels[:3])
}

func TestDecodeImageGarbage(t *testing.T) {
	_, err := DecodeImage(bytes.NewReader([]byte("not an image")), false)
	assert.Error(t, err)
}

func TestLoadImageMissing(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"), false)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImageFit(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	d, err := DecodeImage(bytes.NewReader(encodePNG(t, img)), false)
	require.NoError(t, err)

	small := d.Fit(16)
	assert.Equal(t, 16, small.Width)
	assert.Equal(t, 8, small.Height)
	assert.Equal(t, d.Channels, small.Channels)
	assert.Len(t, small.Pixels, 16*8*d.Channels)

	assert.Same(t, d, d.Fit(128))
	assert.Same(t, d, d.Fit(0))
}
