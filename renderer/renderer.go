// Package renderer holds the GPU-resident objects of the viewer: vertex
// buffers, textures, shader programs, drawable primitives and meshes, the
// lighting uniforms and the HDR post-processing chain. Everything is created
// from a Context and must be used on the thread that owns the GL context.
package renderer

import (
	"errors"

	"go.uber.org/zap"

	"hexview/internal/gpu"
)

// ErrReleased is returned by operations on objects whose GPU resources have
// already been freed.
var ErrReleased = errors.New("object released")

// Context is the explicit rendering context handed to every constructor.
type Context struct {
	GL  gpu.Functions
	Log *zap.Logger
}

// NewContext wraps a gpu.Functions implementation. A nil logger discards
// all output.
func NewContext(fns gpu.Functions, log *zap.Logger) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	return &Context{GL: fns, Log: log}
}

// WithBlending runs fn with source-alpha blending enabled and restores the
// disabled state afterwards. Blended geometry should be sorted back to front
// (scene.SortBackToFront) before drawing.
func WithBlending(ctx *Context, fn func()) {
	ctx.GL.Enable(gpu.Blend)
	ctx.GL.BlendFunc(gpu.SrcAlpha, gpu.OneMinusSrcAlpha)
	defer ctx.GL.Disable(gpu.Blend)
	fn()
}
