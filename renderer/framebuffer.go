package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"hexview/internal/gpu"
)

// MaxColorAttachments bounds FramebufferSpec.ColorAttachments.
const MaxColorAttachments = 4

type FramebufferSpec struct {
	// ColorAttachments is the number of RGBA16F color textures, all written
	// by the fragment shader (one draw buffer each).
	ColorAttachments int
	// Depth adds a depth-stencil renderbuffer.
	Depth bool
}

// Framebuffer is an off-screen render target.
type Framebuffer struct {
	ctx    *Context
	spec   FramebufferSpec
	id     gpu.FramebufferID
	colors []*Texture
	depth  gpu.RenderbufferID
	width  int
	height int
	status gpu.FramebufferStatus

	released bool
}

// NewFramebuffer allocates the attachments of spec at width x height. An
// incomplete framebuffer is logged and returned together with its Status
// error; it can be fixed by a later Resize.
func NewFramebuffer(ctx *Context, width, height int, spec FramebufferSpec) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer size %dx%d", width, height)
	}
	if spec.ColorAttachments < 1 || spec.ColorAttachments > MaxColorAttachments {
		return nil, fmt.Errorf("framebuffer needs 1 to %d color attachments, got %d", MaxColorAttachments, spec.ColorAttachments)
	}
	fb := &Framebuffer{ctx: ctx, spec: spec}
	fb.alloc(width, height)
	return fb, fb.Status()
}

func (fb *Framebuffer) alloc(width, height int) {
	gl := fb.ctx.GL
	fb.width, fb.height = width, height

	fb.id = gl.CreateFramebuffer()
	gl.BindFramebuffer(fb.id)
	fb.colors = make([]*Texture, fb.spec.ColorAttachments)
	for i := range fb.colors {
		fb.colors[i] = newRenderTexture(fb.ctx, width, height)
		gl.FramebufferTexture(gpu.ColorAttachment(i), fb.colors[i].id)
	}
	if fb.spec.Depth {
		fb.depth = gl.CreateRenderbuffer()
		gl.RenderbufferStorage(fb.depth, gpu.FormatDepth24Stencil8, int32(width), int32(height))
		gl.FramebufferRenderbuffer(gpu.DepthStencilAttachment, fb.depth)
	}
	gl.DrawBuffers(len(fb.colors))

	fb.status = gl.CheckFramebufferStatus()
	if fb.status != gpu.FramebufferComplete {
		fb.ctx.Log.Warn("Framebuffer incomplete",
			zap.Stringer("status", fb.status), zap.Int("width", width), zap.Int("height", height))
	}
	gl.BindFramebuffer(gpu.DefaultFramebuffer)
}

func (fb *Framebuffer) free() {
	gl := fb.ctx.GL
	for _, t := range fb.colors {
		t.Release()
	}
	fb.colors = nil
	if fb.depth != 0 {
		gl.DeleteRenderbuffer(fb.depth)
		fb.depth = 0
	}
	if fb.id != 0 {
		gl.DeleteFramebuffer(fb.id)
		fb.id = 0
	}
}

// Status reports whether the framebuffer can be rendered to.
func (fb *Framebuffer) Status() error {
	if fb.released {
		return ErrReleased
	}
	if fb.status != gpu.FramebufferComplete {
		return fmt.Errorf("%w: %s", gpu.ErrFramebufferIncomplete, fb.status)
	}
	return nil
}

// Bind directs rendering into the framebuffer and sets a matching viewport.
func (fb *Framebuffer) Bind() {
	gl := fb.ctx.GL
	gl.BindFramebuffer(fb.id)
	gl.Viewport(0, 0, int32(fb.width), int32(fb.height))
}

// Resize reallocates every attachment at the new size. The old textures are
// deleted, so references from Color or Colors become stale.
func (fb *Framebuffer) Resize(width, height int) error {
	if fb.released {
		return ErrReleased
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("framebuffer size %dx%d", width, height)
	}
	if width == fb.width && height == fb.height {
		return fb.Status()
	}
	fb.free()
	fb.alloc(width, height)
	return fb.Status()
}

// Color returns the i-th color attachment, nil when out of range.
func (fb *Framebuffer) Color(i int) *Texture {
	if i < 0 || i >= len(fb.colors) {
		return nil
	}
	return fb.colors[i]
}

func (fb *Framebuffer) Colors() []*Texture {
	return append([]*Texture(nil), fb.colors...)
}

func (fb *Framebuffer) ID() gpu.FramebufferID { return fb.id }

func (fb *Framebuffer) Size() (width, height int) { return fb.width, fb.height }

func (fb *Framebuffer) Release() {
	if fb.released {
		return
	}
	fb.free()
	fb.released = true
}
