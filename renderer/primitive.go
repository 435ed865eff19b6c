package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"hexview/internal/gpu"
	"hexview/scene"
)

// Primitive is drawable geometry whose capabilities (indexing, tangent
// basis, instancing) are fixed at construction.
type Primitive struct {
	ctx  *Context
	caps scene.Capabilities
	buf  *Buffer

	instanceVBO gpu.BufferID
	instances   []mgl32.Mat4

	// Textures are bound to units 0..n-1 before every draw. They are shared
	// and not released with the primitive.
	Textures []*Texture

	released bool
}

// NewPrimitive uploads geom. instances is copied and only used with the
// Instanced capability.
func NewPrimitive(ctx *Context, geom scene.Geometry, caps scene.Capabilities, instances []mgl32.Mat4) (*Primitive, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	if caps.Indexed != (len(geom.Indices) > 0) {
		return nil, fmt.Errorf("indexed capability is %v but geometry has %d indices", caps.Indexed, len(geom.Indices))
	}
	if caps.Instanced {
		if err := geom.Layout.ValidateInstanced(); err != nil {
			return nil, err
		}
	}

	buf, err := NewBuffer(ctx, geom.Vertices, geom.Indices, geom.Layout)
	if err != nil {
		return nil, err
	}
	p := &Primitive{ctx: ctx, caps: caps, buf: buf}
	if caps.Instanced {
		p.setupInstances()
		p.uploadInstances(instances)
	}
	return p, nil
}

// setupInstances adds a per-instance mat4 in slots 3 to 6 of the vertex
// array, advancing once per instance.
func (p *Primitive) setupInstances() {
	gl := p.ctx.GL
	defer p.buf.Bind()()

	p.instanceVBO = gl.CreateBuffer()
	gl.BindBuffer(gpu.ArrayBuffer, p.instanceVBO)
	const vec4Size = 4 * 4
	for i := 0; i < 4; i++ {
		slot := uint32(scene.InstanceSlotFirst + i)
		gl.EnableVertexAttrib(slot)
		gl.VertexAttribPointer(slot, 4, 4*vec4Size, i*vec4Size)
		gl.VertexAttribDivisor(slot, 1)
	}
}

func (p *Primitive) uploadInstances(instances []mgl32.Mat4) {
	p.instances = append(p.instances[:0], instances...)
	data := make([]float32, 0, len(p.instances)*16)
	for _, m := range p.instances {
		data = append(data, m[:]...)
	}
	gl := p.ctx.GL
	gl.BindBuffer(gpu.ArrayBuffer, p.instanceVBO)
	gl.BufferFloats(gpu.ArrayBuffer, data)
	gl.BindBuffer(gpu.ArrayBuffer, 0)
}

// SetInstances replaces the per-instance model matrices.
func (p *Primitive) SetInstances(instances []mgl32.Mat4) error {
	if p.released {
		return ErrReleased
	}
	if !p.caps.Instanced {
		return fmt.Errorf("primitive was not built with the instanced capability")
	}
	p.uploadInstances(instances)
	return nil
}

// Draw binds the textures and issues one (possibly instanced) draw call.
func (p *Primitive) Draw() {
	if p.released {
		return
	}
	if p.caps.Instanced && len(p.instances) == 0 {
		return
	}
	for i, t := range p.Textures {
		BindOrNone(p.ctx, t, uint32(i))
	}
	defer p.buf.Bind()()
	if p.caps.Instanced {
		p.buf.draw(len(p.instances))
	} else {
		p.buf.draw(0)
	}
}

func (p *Primitive) Capabilities() scene.Capabilities { return p.caps }
func (p *Primitive) Buffer() *Buffer                  { return p.buf }
func (p *Primitive) InstanceCount() int               { return len(p.instances) }

// Release frees the vertex and instance buffers once.
func (p *Primitive) Release() {
	if p.released {
		return
	}
	p.buf.Release()
	if p.instanceVBO != 0 {
		p.ctx.GL.DeleteBuffer(p.instanceVBO)
		p.instanceVBO = 0
	}
	p.released = true
}
