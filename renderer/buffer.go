package renderer

import (
	"fmt"

	"hexview/internal/gpu"
	"hexview/scene"
)

// Buffer is an immutable vertex array with its vertex buffer and optional
// index buffer.
type Buffer struct {
	ctx    *Context
	vao    gpu.VertexArrayID
	vbo    gpu.BufferID
	ebo    gpu.BufferID
	layout scene.VertexLayout

	vertexCount int
	indexCount  int
	released    bool
}

// NewBuffer uploads vertices, interleaved as described by layout, and
// indices when non-empty. Every index must address an uploaded vertex.
func NewBuffer(ctx *Context, vertices []float32, indices []uint32, layout scene.VertexLayout) (*Buffer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	per := layout.Floats()
	if len(vertices) == 0 || len(vertices)%per != 0 {
		return nil, fmt.Errorf("vertex data of %d floats is not a whole number of %d-float vertices", len(vertices), per)
	}
	count := len(vertices) / per
	for i, idx := range indices {
		if int(idx) >= count {
			return nil, fmt.Errorf("index %d at position %d out of range for %d vertices", idx, i, count)
		}
	}

	gl := ctx.GL
	b := &Buffer{
		ctx:         ctx,
		layout:      append(scene.VertexLayout(nil), layout...),
		vertexCount: count,
		indexCount:  len(indices),
	}
	b.vao = gl.CreateVertexArray()
	gl.BindVertexArray(b.vao)

	b.vbo = gl.CreateBuffer()
	gl.BindBuffer(gpu.ArrayBuffer, b.vbo)
	gl.BufferFloats(gpu.ArrayBuffer, vertices)

	if len(indices) > 0 {
		b.ebo = gl.CreateBuffer()
		gl.BindBuffer(gpu.ElementArrayBuffer, b.ebo)
		gl.BufferIndices(indices)
	}

	stride := int32(layout.Stride())
	for i, off := range layout.Offsets() {
		a := layout[i]
		gl.EnableVertexAttrib(a.Slot)
		gl.VertexAttribPointer(a.Slot, int32(a.Components), stride, off)
	}

	gl.BindVertexArray(0)
	return b, nil
}

// Bind makes the vertex array current and returns the matching unbind.
//
//	defer buf.Bind()()
func (b *Buffer) Bind() (unbind func()) {
	b.ctx.GL.BindVertexArray(b.vao)
	return b.Unbind
}

func (b *Buffer) Unbind() { b.ctx.GL.BindVertexArray(0) }

func (b *Buffer) VertexCount() int           { return b.vertexCount }
func (b *Buffer) IndexCount() int            { return b.indexCount }
func (b *Buffer) Indexed() bool              { return b.indexCount > 0 }
func (b *Buffer) Layout() scene.VertexLayout { return b.layout }
func (b *Buffer) Released() bool             { return b.released }

// draw issues one draw of the whole buffer; the vertex array must be bound.
// instances > 0 selects the instanced variant.
func (b *Buffer) draw(instances int) {
	gl := b.ctx.GL
	switch {
	case b.Indexed() && instances > 0:
		gl.DrawElementsInstanced(gpu.Triangles, int32(b.indexCount), int32(instances))
	case b.Indexed():
		gl.DrawElements(gpu.Triangles, int32(b.indexCount))
	case instances > 0:
		gl.DrawArraysInstanced(gpu.Triangles, 0, int32(b.vertexCount), int32(instances))
	default:
		gl.DrawArrays(gpu.Triangles, 0, int32(b.vertexCount))
	}
}

// Draw binds the buffer and draws it once.
func (b *Buffer) Draw() {
	if b.released {
		return
	}
	defer b.Bind()()
	b.draw(0)
}

// Release frees the GPU objects. Calling it again does nothing.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	gl := b.ctx.GL
	gl.DeleteVertexArray(b.vao)
	gl.DeleteBuffer(b.vbo)
	if b.ebo != 0 {
		gl.DeleteBuffer(b.ebo)
	}
	b.vao, b.vbo, b.ebo = 0, 0, 0
	b.released = true
}
