package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"hexview/internal/gpu"
	"hexview/scene"
)

// WrapMode selects texture coordinate wrapping. WrapAuto clamps images with
// an alpha channel, so that transparent borders do not bleed across edges,
// and repeats everything else.
type WrapMode int

const (
	WrapAuto WrapMode = iota
	WrapRepeat
	WrapClampToEdge
	WrapMirroredRepeat
)

func (w WrapMode) resolve(channels int) gpu.WrapMode {
	switch w {
	case WrapRepeat:
		return gpu.Repeat
	case WrapClampToEdge:
		return gpu.ClampToEdge
	case WrapMirroredRepeat:
		return gpu.MirroredRepeat
	}
	if channels == 4 {
		return gpu.ClampToEdge
	}
	return gpu.Repeat
}

type TextureOptions struct {
	Wrap           WrapMode
	FlipVertically bool
	// MaxSize limits both image sides; larger images are downscaled.
	// Zero disables the limit.
	MaxSize int
}

// Texture is a 2D texture object. A nil *Texture is valid and behaves as
// "no texture": Bind does nothing and the accessors return zero values.
type Texture struct {
	ctx      *Context
	id       gpu.TextureID
	width    int
	height   int
	channels int
	path     string
}

// LoadTexture decodes the image file at path and uploads it with mipmaps.
// Failures are logged and returned; callers may carry on with the nil
// texture.
func LoadTexture(ctx *Context, path string, opts TextureOptions) (*Texture, error) {
	img, err := scene.LoadImage(path, opts.FlipVertically)
	if err != nil {
		ctx.Log.Error("Failed to load texture", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	t, err := NewTextureFromImage(ctx, img.Fit(opts.MaxSize), opts)
	if err != nil {
		ctx.Log.Error("Failed to upload texture", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	t.path = path
	ctx.Log.Debug("Texture loaded",
		zap.String("path", path), zap.Int("width", t.width), zap.Int("height", t.height),
		zap.Int("channels", t.channels))
	return t, nil
}

// NewTextureFromImage uploads decoded pixels. The internal format follows
// the channel count (red, RGB or RGBA).
func NewTextureFromImage(ctx *Context, img *scene.ImageData, opts TextureOptions) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	format, err := gpu.FormatForChannels(img.Channels)
	if err != nil {
		return nil, err
	}
	if img.Width <= 0 || img.Height <= 0 || len(img.Pixels) != img.Width*img.Height*img.Channels {
		return nil, fmt.Errorf("image %dx%dx%d has %d bytes of pixel data",
			img.Width, img.Height, img.Channels, len(img.Pixels))
	}

	gl := ctx.GL
	t := &Texture{ctx: ctx, width: img.Width, height: img.Height, channels: img.Channels}
	t.id = gl.CreateTexture()
	gl.BindTexture(t.id)
	wrap := opts.Wrap.resolve(img.Channels)
	gl.SetSampler(gpu.SamplerState{WrapS: wrap, WrapT: wrap, Min: gpu.LinearMipmapLinear, Mag: gpu.Linear})
	gl.TexImage2D(gpu.TextureImage{
		Width:    int32(img.Width),
		Height:   int32(img.Height),
		Internal: format,
		Format:   format,
		Pixels:   img.Pixels,
	})
	gl.GenerateMipmap()
	gl.BindTexture(0)
	return t, nil
}

// newRenderTexture allocates an uninitialised RGBA16F color target.
func newRenderTexture(ctx *Context, width, height int) *Texture {
	gl := ctx.GL
	t := &Texture{ctx: ctx, width: width, height: height, channels: 4}
	t.id = gl.CreateTexture()
	gl.BindTexture(t.id)
	gl.TexImage2D(gpu.TextureImage{
		Width:    int32(width),
		Height:   int32(height),
		Internal: gpu.FormatRGBA16F,
		Format:   gpu.FormatRGBA,
	})
	gl.SetSampler(gpu.SamplerState{WrapS: gpu.ClampToEdge, WrapT: gpu.ClampToEdge, Min: gpu.Linear, Mag: gpu.Linear})
	gl.BindTexture(0)
	return t
}

// Bind makes t current on the given texture unit.
func (t *Texture) Bind(unit uint32) {
	if t == nil || t.ctx == nil {
		return
	}
	t.ctx.GL.ActiveTexture(unit)
	t.ctx.GL.BindTexture(t.id)
}

// BindOrNone binds t, or texture 0 when t is nil, to unit.
func BindOrNone(ctx *Context, t *Texture, unit uint32) {
	ctx.GL.ActiveTexture(unit)
	ctx.GL.BindTexture(t.ID())
}

func (t *Texture) ID() gpu.TextureID {
	if t == nil {
		return 0
	}
	return t.id
}

func (t *Texture) Width() int {
	if t == nil {
		return 0
	}
	return t.width
}

func (t *Texture) Height() int {
	if t == nil {
		return 0
	}
	return t.height
}

func (t *Texture) Channels() int {
	if t == nil {
		return 0
	}
	return t.channels
}

// Path is the file the texture was loaded from, if any.
func (t *Texture) Path() string {
	if t == nil {
		return ""
	}
	return t.path
}

// Release deletes the texture object once.
func (t *Texture) Release() {
	if t == nil || t.id == 0 {
		return
	}
	t.ctx.GL.DeleteTexture(t.id)
	t.id = 0
}

// TextureCache loads each referenced image once and shares the texture
// between every mesh that names it.
type TextureCache struct {
	ctx      *Context
	opts     TextureOptions
	textures map[string]*Texture
	failed   map[string]error
}

func NewTextureCache(ctx *Context, opts TextureOptions) *TextureCache {
	return &TextureCache{
		ctx:      ctx,
		opts:     opts,
		textures: make(map[string]*Texture),
		failed:   make(map[string]error),
	}
}

// Get returns the texture for ref, loading it on first use. A reference
// that failed once keeps failing without another attempt.
func (c *TextureCache) Get(ref scene.TextureRef) (*Texture, error) {
	key := ref.Key()
	if t, ok := c.textures[key]; ok {
		return t, nil
	}
	if err, ok := c.failed[key]; ok {
		return nil, err
	}

	var t *Texture
	var err error
	if ref.Image != nil {
		t, err = NewTextureFromImage(c.ctx, ref.Image.Fit(c.opts.MaxSize), c.opts)
		if err != nil {
			c.ctx.Log.Error("Failed to upload embedded texture", zap.String("key", key), zap.Error(err))
		} else {
			t.path = key
		}
	} else {
		t, err = LoadTexture(c.ctx, ref.Path, c.opts)
	}
	if err != nil {
		c.failed[key] = err
		return nil, err
	}
	c.textures[key] = t
	return t, nil
}

func (c *TextureCache) Len() int { return len(c.textures) }

// Release deletes every cached texture.
func (c *TextureCache) Release() {
	for k, t := range c.textures {
		t.Release()
		delete(c.textures, k)
	}
}
