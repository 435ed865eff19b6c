package scene

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

type decodeFunc func(io.Reader) (image.Image, error)

// imageMagics selects a decoder by leading bytes; '?' matches any byte.
// The tga package registers itself with image.Decode under an empty magic
// that matches everything, so image.Decode is not used.
var imageMagics = []struct {
	magic  string
	decode decodeFunc
}{
	{"\x89PNG\r\n\x1a\n", png.Decode},
	{"\xff\xd8", jpeg.Decode},
	{"GIF8", gif.Decode},
	{"BM", bmp.Decode},
	{"II*\x00", tiff.Decode},
	{"MM\x00*", tiff.Decode},
	{"RIFF????WEBP", webp.Decode},
}

func matchMagic(magic string, head []byte) bool {
	if len(head) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != head[i] {
			return false
		}
	}
	return true
}

// sniff returns the decoder for the data in br. TGA has no signature and is
// the fallback.
func sniff(br *bufio.Reader) decodeFunc {
	head, _ := br.Peek(12)
	for _, m := range imageMagics {
		if matchMagic(m.magic, head) {
			return m.decode
		}
	}
	return tga.Decode
}

// ImageData is decoded 8-bit pixel data, tightly packed with Channels bytes
// per pixel (1, 3 or 4), row-major from the top row unless flipped.
type ImageData struct {
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}

// LoadImage decodes the image file at path.
func LoadImage(path string, flip bool) (*ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	decode := sniff(br)
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		decode = tga.Decode
	}
	img, err := decodeWith(br, decode, flip)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes PNG, JPEG, BMP, TIFF, WebP or TGA data. Grayscale
// sources keep one channel, opaque sources three, everything else four.
// flip reverses the row order so that the first row is the bottom one.
func DecodeImage(r io.Reader, flip bool) (*ImageData, error) {
	br := bufio.NewReader(r)
	return decodeWith(br, sniff(br), flip)
}

func decodeWith(r io.Reader, decode decodeFunc, flip bool) (*ImageData, error) {
	src, err := decode(r)
	if err != nil {
		return nil, err
	}
	return pack(src, channelsOf(src), flip), nil
}

func channelsOf(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

func pack(src image.Image, channels int, flip bool) *ImageData {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &ImageData{Width: w, Height: h, Channels: channels, Pixels: make([]byte, w*h*channels)}

	var rows func(y int) []byte
	switch channels {
	case 1:
		gray := image.NewGray(image.Rect(0, 0, w, h))
		xdraw.Draw(gray, gray.Bounds(), src, b.Min, xdraw.Src)
		rows = func(y int) []byte { return gray.Pix[y*gray.Stride : y*gray.Stride+w] }
	default:
		rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
		xdraw.Draw(rgba, rgba.Bounds(), src, b.Min, xdraw.Src)
		rows = func(y int) []byte { return rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4] }
	}

	for y := 0; y < h; y++ {
		srcRow := rows(y)
		dy := y
		if flip {
			dy = h - 1 - y
		}
		dst := out.Pixels[dy*w*channels : (dy+1)*w*channels]
		if channels != 3 {
			copy(dst, srcRow)
			continue
		}
		for x := 0; x < w; x++ {
			copy(dst[x*3:x*3+3], srcRow[x*4:x*4+3])
		}
	}
	return out
}

// toImage converts the packed pixels back into an image.Image.
func (d *ImageData) toImage() image.Image {
	r := image.Rect(0, 0, d.Width, d.Height)
	switch d.Channels {
	case 1:
		return &image.Gray{Pix: d.Pixels, Stride: d.Width, Rect: r}
	case 3:
		img := image.NewNRGBA(r)
		for i, j := 0, 0; i+2 < len(d.Pixels); i, j = i+3, j+4 {
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = d.Pixels[i], d.Pixels[i+1], d.Pixels[i+2], 255
		}
		return img
	}
	return &image.NRGBA{Pix: d.Pixels, Stride: d.Width * 4, Rect: r}
}

// Fit returns d scaled down with Catmull-Rom filtering so that neither side
// exceeds maxSize, keeping the aspect ratio. d itself is returned when it
// already fits or maxSize is not positive.
func (d *ImageData) Fit(maxSize int) *ImageData {
	if maxSize <= 0 || (d.Width <= maxSize && d.Height <= maxSize) {
		return d
	}
	w, h := d.Width, d.Height
	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}

	var dst xdraw.Image
	if d.Channels == 1 {
		dst = image.NewGray(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	src := d.toImage()
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return pack(dst, d.Channels, false)
}
