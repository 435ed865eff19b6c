package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"hexview/internal/gpu"
)

// ToneMapper selects the HDR to LDR operator of the composite pass.
type ToneMapper int

const (
	ToneMapReinhard ToneMapper = iota
	ToneMapExposure
	toneMapperCount
)

func (t ToneMapper) String() string {
	switch t {
	case ToneMapReinhard:
		return "reinhard"
	case ToneMapExposure:
		return "exposure"
	}
	return fmt.Sprintf("ToneMapper(%d)", int(t))
}

// ParseToneMapper accepts the names returned by String.
func ParseToneMapper(s string) (ToneMapper, error) {
	for t := ToneMapper(0); t < toneMapperCount; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tone mapper %q", s)
}

// MinExposure is the lower bound of AdjustExposure.
const MinExposure = 0.01

type PostProcessConfig struct {
	// BlurPasses is the number of separable blur passes, alternating
	// horizontal and vertical. It must be even so that every horizontal
	// pass has its vertical partner.
	BlurPasses     int
	Exposure       float32
	ToneMapper     ToneMapper
	HDR            bool
	Bloom          bool
	BloomThreshold float32
	Gamma          float32
}

func DefaultPostProcessConfig() PostProcessConfig {
	return PostProcessConfig{
		BlurPasses:     10,
		Exposure:       1,
		ToneMapper:     ToneMapReinhard,
		HDR:            true,
		Bloom:          true,
		BloomThreshold: 1,
		Gamma:          2.2,
	}
}

func (c PostProcessConfig) Validate() error {
	switch {
	case c.BlurPasses < 2 || c.BlurPasses%2 != 0:
		return fmt.Errorf("blur passes must be a positive even number, got %d", c.BlurPasses)
	case c.Exposure < MinExposure:
		return fmt.Errorf("exposure must be at least %v, got %v", MinExposure, c.Exposure)
	case c.ToneMapper < 0 || c.ToneMapper >= toneMapperCount:
		return fmt.Errorf("unknown tone mapper %d", int(c.ToneMapper))
	case c.BloomThreshold < 0:
		return fmt.Errorf("bloom threshold must not be negative, got %v", c.BloomThreshold)
	case c.Gamma <= 0:
		return fmt.Errorf("gamma must be positive, got %v", c.Gamma)
	}
	return nil
}

// PostProcess renders the scene into an HDR framebuffer with a second
// bright-pass attachment, blurs the bright pass by ping-ponging between two
// framebuffers and composites the tone-mapped result with additive bloom
// into the default framebuffer.
type PostProcess struct {
	ctx *Context
	cfg PostProcessConfig

	width, height int

	hdr      *Framebuffer
	pingpong [2]*Framebuffer

	blur      *Program
	composite *Program
	quad      gpu.VertexArrayID

	// blurred is the output of the last Blur, nil until Blur runs.
	blurred *Texture
	// err holds the completeness error of the current targets.
	err error

	released bool
}

// NewPostProcess builds the targets at width x height and compiles the
// built-in blur and composite programs. Incomplete targets are logged and
// reported by Composite; only invalid configuration or a failing built-in
// shader makes construction fail.
func NewPostProcess(ctx *Context, width, height int, cfg PostProcessConfig) (*PostProcess, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("post-process size %dx%d", width, height)
	}

	pp := &PostProcess{ctx: ctx, cfg: cfg}
	var err error
	if pp.blur, err = NewProgram(ctx, "blur", fullscreenVS, blurFS); err != nil {
		pp.blur.Release()
		return nil, fmt.Errorf("blur shader: %w", err)
	}
	if pp.composite, err = NewProgram(ctx, "composite", fullscreenVS, compositeFS); err != nil {
		pp.blur.Release()
		pp.composite.Release()
		return nil, fmt.Errorf("composite shader: %w", err)
	}

	pp.blur.Use()
	pp.blur.SetInt("image", 0)
	pp.composite.Use()
	pp.composite.SetInt("scene", 0)
	pp.composite.SetInt("bloomBlur", 1)

	pp.quad = ctx.GL.CreateVertexArray()
	pp.alloc(width, height)
	return pp, nil
}

func (pp *PostProcess) alloc(width, height int) {
	pp.width, pp.height = width, height
	var errs []error
	var err error

	pp.hdr, err = NewFramebuffer(pp.ctx, width, height, FramebufferSpec{ColorAttachments: 2, Depth: true})
	errs = append(errs, err)
	for i := range pp.pingpong {
		pp.pingpong[i], err = NewFramebuffer(pp.ctx, width, height, FramebufferSpec{ColorAttachments: 1})
		errs = append(errs, err)
	}
	pp.blurred = nil
	pp.err = errors.Join(errs...)
	if pp.err != nil {
		pp.ctx.Log.Warn("Post-process targets incomplete",
			zap.Int("width", width), zap.Int("height", height), zap.Error(pp.err))
	}
}

func (pp *PostProcess) free() {
	if pp.hdr != nil {
		pp.hdr.Release()
		pp.hdr = nil
	}
	for i, fb := range pp.pingpong {
		if fb != nil {
			fb.Release()
			pp.pingpong[i] = nil
		}
	}
	pp.blurred = nil
}

// BeginScene directs drawing into the HDR framebuffer and clears it.
func (pp *PostProcess) BeginScene(clear mgl32.Vec4) {
	if pp.released {
		return
	}
	gl := pp.ctx.GL
	pp.hdr.Bind()
	gl.ClearColor(clear)
	gl.Clear(gpu.ClearColor | gpu.ClearDepth)
	gl.Enable(gpu.DepthTest)
}

// SceneUniforms sets bloomThreshold on a scene program that writes the
// bright-pass attachment. p must be in use.
func (pp *PostProcess) SceneUniforms(p *Program) bool {
	return p.SetFloat("bloomThreshold", pp.cfg.BloomThreshold)
}

// Blur runs BlurPasses separable passes and returns the texture written by
// the last one. Passes alternate between pingpong[1] (horizontal) and
// pingpong[0] (vertical), starting horizontal; the first pass samples the
// bright-pass attachment and every later pass the previous pass's output.
func (pp *PostProcess) Blur() *Texture {
	if pp.released || pp.err != nil {
		return nil
	}
	gl := pp.ctx.GL
	gl.Disable(gpu.DepthTest)
	pp.blur.Use()
	gl.BindVertexArray(pp.quad)

	horizontal, first := true, true
	var out *Texture
	for i := 0; i < pp.cfg.BlurPasses; i++ {
		dst := 0
		if horizontal {
			dst = 1
		}
		pp.pingpong[dst].Bind()
		pp.blur.SetBool("horizontal", horizontal)

		src := pp.pingpong[1-dst].Color(0)
		if first {
			src = pp.hdr.Color(1)
		}
		BindOrNone(pp.ctx, src, 0)
		gl.DrawArrays(gpu.Triangles, 0, 3)

		out = pp.pingpong[dst].Color(0)
		horizontal, first = !horizontal, false
	}

	gl.BindVertexArray(0)
	gl.BindFramebuffer(gpu.DefaultFramebuffer)
	pp.blurred = out
	return out
}

// Composite tone maps the HDR color attachment, adds the last blur output
// when bloom is on and writes the result to the default framebuffer. It
// returns the completeness error while the targets are incomplete.
func (pp *PostProcess) Composite() error {
	if pp.released {
		return ErrReleased
	}
	if pp.err != nil {
		return pp.err
	}
	gl := pp.ctx.GL
	gl.BindFramebuffer(gpu.DefaultFramebuffer)
	gl.Viewport(0, 0, int32(pp.width), int32(pp.height))
	gl.Clear(gpu.ClearColor | gpu.ClearDepth)
	gl.Disable(gpu.DepthTest)

	bloom := pp.cfg.Bloom && pp.blurred != nil
	pp.composite.Use()
	pp.composite.SetBool("hdr", pp.cfg.HDR)
	pp.composite.SetBool("bloom", bloom)
	pp.composite.SetFloat("exposure", pp.cfg.Exposure)
	pp.composite.SetInt("toneMapper", int32(pp.cfg.ToneMapper))
	pp.composite.SetFloat("gamma", pp.cfg.Gamma)

	BindOrNone(pp.ctx, pp.hdr.Color(0), 0)
	if bloom {
		BindOrNone(pp.ctx, pp.blurred, 1)
	} else {
		BindOrNone(pp.ctx, nil, 1)
	}
	gl.BindVertexArray(pp.quad)
	gl.DrawArrays(gpu.Triangles, 0, 3)
	gl.BindVertexArray(0)
	gl.ActiveTexture(0)
	gl.Enable(gpu.DepthTest)
	return nil
}

// EndScene runs the blur (when bloom is on) and the composite.
func (pp *PostProcess) EndScene() error {
	pp.blurred = nil
	if pp.cfg.Bloom {
		pp.Blur()
	}
	return pp.Composite()
}

// Resize reallocates every target at the new size. The same size is a
// no-op; a zero or negative size (minimized window) keeps the current
// targets and reports an error.
func (pp *PostProcess) Resize(width, height int) error {
	if pp.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("post-process size %dx%d", width, height)
	}
	if width == pp.width && height == pp.height {
		return pp.err
	}
	pp.free()
	pp.alloc(width, height)
	pp.ctx.Log.Debug("Post-process targets resized", zap.Int("width", width), zap.Int("height", height))
	return pp.err
}

// Targets lists every color texture: the two HDR attachments followed by
// the two ping-pong textures.
func (pp *PostProcess) Targets() []*Texture {
	if pp.hdr == nil {
		return nil
	}
	out := pp.hdr.Colors()
	for _, fb := range pp.pingpong {
		out = append(out, fb.Colors()...)
	}
	return out
}

// Framebuffers returns the HDR framebuffer and the two ping-pong buffers.
func (pp *PostProcess) Framebuffers() (hdr *Framebuffer, pingpong [2]*Framebuffer) {
	return pp.hdr, pp.pingpong
}

func (pp *PostProcess) Size() (width, height int) { return pp.width, pp.height }

func (pp *PostProcess) Config() PostProcessConfig { return pp.cfg }

func (pp *PostProcess) ToggleHDR() bool {
	pp.cfg.HDR = !pp.cfg.HDR
	return pp.cfg.HDR
}

func (pp *PostProcess) ToggleBloom() bool {
	pp.cfg.Bloom = !pp.cfg.Bloom
	return pp.cfg.Bloom
}

// AdjustExposure adds delta to the exposure, never going below MinExposure.
func (pp *PostProcess) AdjustExposure(delta float32) float32 {
	pp.cfg.Exposure = max(pp.cfg.Exposure+delta, MinExposure)
	return pp.cfg.Exposure
}

func (pp *PostProcess) CycleToneMapper() ToneMapper {
	pp.cfg.ToneMapper = (pp.cfg.ToneMapper + 1) % toneMapperCount
	return pp.cfg.ToneMapper
}

// Release frees every target, both programs and the fullscreen vertex array.
func (pp *PostProcess) Release() {
	if pp.released {
		return
	}
	pp.free()
	pp.blur.Release()
	pp.composite.Release()
	pp.ctx.GL.DeleteVertexArray(pp.quad)
	pp.quad = 0
	pp.released = true
}
