// Package gputest provides an in-memory gpu.Functions that keeps track of
// created objects, bind points, uniform writes and draw calls.
package gputest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"hexview/internal/gpu"
)

// FailMarker makes CompileShader fail for any source that contains it.
const FailMarker = "#error"

// Texture is the recorded state of a texture object.
type Texture struct {
	Width, Height int32
	Internal      gpu.PixelFormat
	Format        gpu.PixelFormat
	Pixels        []byte
	Sampler       gpu.SamplerState
	Mipmapped     bool
	Deleted       bool
}

// Buffer is the recorded state of a buffer object.
type Buffer struct {
	Target  gpu.BufferTarget
	Floats  []float32
	Indices []uint32
	Deleted bool
}

// Attrib is one configured vertex attribute of a vertex array.
type Attrib struct {
	Slot       uint32
	Components int32
	Stride     int32
	Offset     int
	Divisor    uint32
	Enabled    bool
	Buffer     gpu.BufferID
}

// VertexArray is the recorded state of a vertex array object.
type VertexArray struct {
	Attribs      map[uint32]*Attrib
	ElementArray gpu.BufferID
	Deleted      bool
}

// Renderbuffer is the recorded state of a renderbuffer.
type Renderbuffer struct {
	Width, Height int32
	Format        gpu.PixelFormat
	Deleted       bool
}

// Framebuffer is the recorded state of a framebuffer object.
type Framebuffer struct {
	Colors      map[gpu.Attachment]gpu.TextureID
	Depth       gpu.RenderbufferID
	DrawBuffers int
	Deleted     bool
}

// Program is the recorded state of a linked program.
type Program struct {
	Vertex, Fragment string
	Locations        map[string]gpu.UniformLocation
	Values           map[string]any
	Deleted          bool
}

// Draw is one recorded draw call together with the state it was issued in.
type Draw struct {
	Mode        gpu.DrawMode
	Count       int32
	Instances   int32
	Indexed     bool
	Program     gpu.ProgramID
	VertexArray gpu.VertexArrayID
	Framebuffer gpu.FramebufferID
	Textures    map[uint32]gpu.TextureID
}

// UniformWrite is one accepted uniform update.
type UniformWrite struct {
	Program gpu.ProgramID
	Name    string
	Value   any
}

// Recorder implements gpu.Functions in memory.
type Recorder struct {
	// RejectUniform, when set, hides uniforms from UniformLocation.
	RejectUniform func(name string) bool
	// FailLink forces LinkProgram to fail.
	FailLink bool
	// Incomplete makes every framebuffer object report an incomplete
	// attachment.
	Incomplete bool

	Textures      map[gpu.TextureID]*Texture
	Buffers       map[gpu.BufferID]*Buffer
	VertexArrays  map[gpu.VertexArrayID]*VertexArray
	Renderbuffers map[gpu.RenderbufferID]*Renderbuffer
	Framebuffers  map[gpu.FramebufferID]*Framebuffer
	Programs      map[gpu.ProgramID]*Program
	Shaders       map[gpu.ShaderID]string

	// FramebufferBinds lists every BindFramebuffer call in order.
	FramebufferBinds []gpu.FramebufferID
	Draws            []Draw
	Writes           []UniformWrite
	// Calls is a terse log of every call, e.g. "DeleteTexture(4)".
	Calls []string

	BoundFramebuffer gpu.FramebufferID
	BoundVertexArray gpu.VertexArrayID
	BoundArrayBuffer gpu.BufferID
	BoundTextures    map[uint32]gpu.TextureID
	ActiveUnit       uint32
	CurrentProgram   gpu.ProgramID
	ViewportSize     [4]int32
	Enabled          map[gpu.Capability]bool
	LastClearColor   mgl32.Vec4

	next      uint32
	locations map[gpu.UniformLocation]uniformRef
	nextLoc   gpu.UniformLocation
}

type uniformRef struct {
	program gpu.ProgramID
	name    string
}

var _ gpu.Functions = (*Recorder)(nil)

// New returns an empty recorder with nothing bound.
func New() *Recorder {
	return &Recorder{
		Textures:      make(map[gpu.TextureID]*Texture),
		Buffers:       make(map[gpu.BufferID]*Buffer),
		VertexArrays:  make(map[gpu.VertexArrayID]*VertexArray),
		Renderbuffers: make(map[gpu.RenderbufferID]*Renderbuffer),
		Framebuffers:  make(map[gpu.FramebufferID]*Framebuffer),
		Programs:      make(map[gpu.ProgramID]*Program),
		Shaders:       make(map[gpu.ShaderID]string),
		BoundTextures: make(map[uint32]gpu.TextureID),
		Enabled:       make(map[gpu.Capability]bool),
		locations:     make(map[gpu.UniformLocation]uniformRef),
	}
}

func (r *Recorder) id() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) log(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// Count returns how many recorded calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Uniform returns the last value written to name in program p.
func (r *Recorder) Uniform(p gpu.ProgramID, name string) (any, bool) {
	prog, ok := r.Programs[p]
	if !ok {
		return nil, false
	}
	v, ok := prog.Values[name]
	return v, ok
}

// LiveObjects counts objects that were created and not yet deleted.
func (r *Recorder) LiveObjects() int {
	n := 0
	for _, t := range r.Textures {
		if !t.Deleted {
			n++
		}
	}
	for _, b := range r.Buffers {
		if !b.Deleted {
			n++
		}
	}
	for _, v := range r.VertexArrays {
		if !v.Deleted {
			n++
		}
	}
	for _, rb := range r.Renderbuffers {
		if !rb.Deleted {
			n++
		}
	}
	for _, f := range r.Framebuffers {
		if !f.Deleted {
			n++
		}
	}
	for _, p := range r.Programs {
		if !p.Deleted {
			n++
		}
	}
	return n
}

func (r *Recorder) CreateVertexArray() gpu.VertexArrayID {
	id := gpu.VertexArrayID(r.id())
	r.VertexArrays[id] = &VertexArray{Attribs: make(map[uint32]*Attrib)}
	r.log("CreateVertexArray(%d)", id)
	return id
}

func (r *Recorder) BindVertexArray(id gpu.VertexArrayID) {
	r.BoundVertexArray = id
	r.log("BindVertexArray(%d)", id)
}

func (r *Recorder) DeleteVertexArray(id gpu.VertexArrayID) {
	if va, ok := r.VertexArrays[id]; ok {
		va.Deleted = true
	}
	r.log("DeleteVertexArray(%d)", id)
}

func (r *Recorder) CreateBuffer() gpu.BufferID {
	id := gpu.BufferID(r.id())
	r.Buffers[id] = &Buffer{}
	r.log("CreateBuffer(%d)", id)
	return id
}

func (r *Recorder) BindBuffer(target gpu.BufferTarget, id gpu.BufferID) {
	if b, ok := r.Buffers[id]; ok {
		b.Target = target
	}
	switch target {
	case gpu.ArrayBuffer:
		r.BoundArrayBuffer = id
	case gpu.ElementArrayBuffer:
		if va, ok := r.VertexArrays[r.BoundVertexArray]; ok {
			va.ElementArray = id
		}
	}
	r.log("BindBuffer(%d, %d)", target, id)
}

func (r *Recorder) BufferFloats(target gpu.BufferTarget, data []float32) {
	if b, ok := r.Buffers[r.BoundArrayBuffer]; ok && target == gpu.ArrayBuffer {
		b.Floats = append([]float32(nil), data...)
	}
	r.log("BufferFloats(%d, %d)", target, len(data))
}

func (r *Recorder) BufferIndices(data []uint32) {
	if va, ok := r.VertexArrays[r.BoundVertexArray]; ok {
		if b, ok := r.Buffers[va.ElementArray]; ok {
			b.Indices = append([]uint32(nil), data...)
		}
	}
	r.log("BufferIndices(%d)", len(data))
}

func (r *Recorder) DeleteBuffer(id gpu.BufferID) {
	if b, ok := r.Buffers[id]; ok {
		b.Deleted = true
	}
	r.log("DeleteBuffer(%d)", id)
}

func (r *Recorder) attrib(slot uint32) *Attrib {
	va, ok := r.VertexArrays[r.BoundVertexArray]
	if !ok {
		return &Attrib{}
	}
	a, ok := va.Attribs[slot]
	if !ok {
		a = &Attrib{Slot: slot}
		va.Attribs[slot] = a
	}
	return a
}

func (r *Recorder) EnableVertexAttrib(slot uint32) {
	r.attrib(slot).Enabled = true
	r.log("EnableVertexAttrib(%d)", slot)
}

func (r *Recorder) VertexAttribPointer(slot uint32, components, stride int32, offset int) {
	a := r.attrib(slot)
	a.Components = components
	a.Stride = stride
	a.Offset = offset
	a.Buffer = r.BoundArrayBuffer
	r.log("VertexAttribPointer(%d, %d, %d, %d)", slot, components, stride, offset)
}

func (r *Recorder) VertexAttribDivisor(slot, divisor uint32) {
	r.attrib(slot).Divisor = divisor
	r.log("VertexAttribDivisor(%d, %d)", slot, divisor)
}

func (r *Recorder) CreateTexture() gpu.TextureID {
	id := gpu.TextureID(r.id())
	r.Textures[id] = &Texture{}
	r.log("CreateTexture(%d)", id)
	return id
}

func (r *Recorder) ActiveTexture(unit uint32) {
	r.ActiveUnit = unit
	r.log("ActiveTexture(%d)", unit)
}

func (r *Recorder) BindTexture(id gpu.TextureID) {
	r.BoundTextures[r.ActiveUnit] = id
	r.log("BindTexture(%d)", id)
}

func (r *Recorder) bound() *Texture {
	if t, ok := r.Textures[r.BoundTextures[r.ActiveUnit]]; ok {
		return t
	}
	return &Texture{}
}

func (r *Recorder) TexImage2D(img gpu.TextureImage) {
	t := r.bound()
	t.Width, t.Height = img.Width, img.Height
	t.Internal, t.Format = img.Internal, img.Format
	t.Pixels = append([]byte(nil), img.Pixels...)
	r.log("TexImage2D(%dx%d)", img.Width, img.Height)
}

func (r *Recorder) SetSampler(s gpu.SamplerState) {
	r.bound().Sampler = s
	r.log("SetSampler(%v)", s)
}

func (r *Recorder) GenerateMipmap() {
	r.bound().Mipmapped = true
	r.log("GenerateMipmap()")
}

func (r *Recorder) DeleteTexture(id gpu.TextureID) {
	if t, ok := r.Textures[id]; ok {
		t.Deleted = true
	}
	r.log("DeleteTexture(%d)", id)
}

func (r *Recorder) CreateFramebuffer() gpu.FramebufferID {
	id := gpu.FramebufferID(r.id())
	r.Framebuffers[id] = &Framebuffer{Colors: make(map[gpu.Attachment]gpu.TextureID)}
	r.log("CreateFramebuffer(%d)", id)
	return id
}

func (r *Recorder) BindFramebuffer(id gpu.FramebufferID) {
	r.BoundFramebuffer = id
	r.FramebufferBinds = append(r.FramebufferBinds, id)
	r.log("BindFramebuffer(%d)", id)
}

func (r *Recorder) FramebufferTexture(a gpu.Attachment, id gpu.TextureID) {
	if fb, ok := r.Framebuffers[r.BoundFramebuffer]; ok {
		fb.Colors[a] = id
	}
	r.log("FramebufferTexture(%d, %d)", a, id)
}

func (r *Recorder) CreateRenderbuffer() gpu.RenderbufferID {
	id := gpu.RenderbufferID(r.id())
	r.Renderbuffers[id] = &Renderbuffer{}
	r.log("CreateRenderbuffer(%d)", id)
	return id
}

func (r *Recorder) RenderbufferStorage(id gpu.RenderbufferID, f gpu.PixelFormat, w, h int32) {
	if rb, ok := r.Renderbuffers[id]; ok {
		rb.Format, rb.Width, rb.Height = f, w, h
	}
	r.log("RenderbufferStorage(%d, %dx%d)", id, w, h)
}

func (r *Recorder) FramebufferRenderbuffer(a gpu.Attachment, id gpu.RenderbufferID) {
	if fb, ok := r.Framebuffers[r.BoundFramebuffer]; ok {
		fb.Depth = id
	}
	r.log("FramebufferRenderbuffer(%d, %d)", a, id)
}

func (r *Recorder) DrawBuffers(n int) {
	if fb, ok := r.Framebuffers[r.BoundFramebuffer]; ok {
		fb.DrawBuffers = n
	}
	r.log("DrawBuffers(%d)", n)
}

// CheckFramebufferStatus reports a framebuffer as complete only when it has
// at least one live attachment and all attachments share one size.
func (r *Recorder) CheckFramebufferStatus() gpu.FramebufferStatus {
	r.log("CheckFramebufferStatus()")
	if r.BoundFramebuffer == gpu.DefaultFramebuffer {
		return gpu.FramebufferComplete
	}
	fb, ok := r.Framebuffers[r.BoundFramebuffer]
	if !ok || fb.Deleted {
		return gpu.FramebufferUndefined
	}
	if r.Incomplete {
		return gpu.FramebufferIncompleteAttachment
	}
	var sizes [][2]int32
	for _, id := range fb.Colors {
		t, ok := r.Textures[id]
		if !ok || t.Deleted || t.Width == 0 {
			return gpu.FramebufferIncompleteAttachment
		}
		sizes = append(sizes, [2]int32{t.Width, t.Height})
	}
	if fb.Depth != 0 {
		rb, ok := r.Renderbuffers[fb.Depth]
		if !ok || rb.Deleted || rb.Width == 0 {
			return gpu.FramebufferIncompleteAttachment
		}
		sizes = append(sizes, [2]int32{rb.Width, rb.Height})
	}
	if len(sizes) == 0 {
		return gpu.FramebufferIncompleteMissingAttachment
	}
	for _, s := range sizes[1:] {
		if s != sizes[0] {
			return gpu.FramebufferIncompleteDimensions
		}
	}
	return gpu.FramebufferComplete
}

func (r *Recorder) DeleteFramebuffer(id gpu.FramebufferID) {
	if fb, ok := r.Framebuffers[id]; ok {
		fb.Deleted = true
	}
	r.log("DeleteFramebuffer(%d)", id)
}

func (r *Recorder) DeleteRenderbuffer(id gpu.RenderbufferID) {
	if rb, ok := r.Renderbuffers[id]; ok {
		rb.Deleted = true
	}
	r.log("DeleteRenderbuffer(%d)", id)
}

func (r *Recorder) CompileShader(stage gpu.ShaderStage, src string) (gpu.ShaderID, error) {
	r.log("CompileShader(%s)", stage)
	if strings.Contains(src, FailMarker) {
		return 0, fmt.Errorf("0:1(1): error: %s directive", FailMarker)
	}
	id := gpu.ShaderID(r.id())
	r.Shaders[id] = src
	return id, nil
}

func (r *Recorder) DeleteShader(id gpu.ShaderID) {
	delete(r.Shaders, id)
	r.log("DeleteShader(%d)", id)
}

func (r *Recorder) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	r.log("LinkProgram(%d, %d)", vs, fs)
	if r.FailLink {
		return 0, errors.New("error: linking failed")
	}
	id := gpu.ProgramID(r.id())
	r.Programs[id] = &Program{
		Vertex:    r.Shaders[vs],
		Fragment:  r.Shaders[fs],
		Locations: make(map[string]gpu.UniformLocation),
		Values:    make(map[string]any),
	}
	return id, nil
}

func (r *Recorder) UseProgram(id gpu.ProgramID) {
	r.CurrentProgram = id
	r.log("UseProgram(%d)", id)
}

func (r *Recorder) DeleteProgram(id gpu.ProgramID) {
	if p, ok := r.Programs[id]; ok {
		p.Deleted = true
	}
	r.log("DeleteProgram(%d)", id)
}

func (r *Recorder) UniformLocation(p gpu.ProgramID, name string) gpu.UniformLocation {
	prog, ok := r.Programs[p]
	if !ok || prog.Deleted {
		return gpu.NoUniform
	}
	if r.RejectUniform != nil && r.RejectUniform(name) {
		return gpu.NoUniform
	}
	if loc, ok := prog.Locations[name]; ok {
		return loc
	}
	loc := r.nextLoc
	r.nextLoc++
	prog.Locations[name] = loc
	r.locations[loc] = uniformRef{program: p, name: name}
	return loc
}

func (r *Recorder) set(loc gpu.UniformLocation, v any) {
	ref, ok := r.locations[loc]
	if !ok {
		return
	}
	// Uniform writes land in the current program, like glUniform*.
	if ref.program != r.CurrentProgram {
		return
	}
	r.Programs[ref.program].Values[ref.name] = v
	r.Writes = append(r.Writes, UniformWrite{Program: ref.program, Name: ref.name, Value: v})
}

// WritesTo returns every value written to name in program p, in order.
func (r *Recorder) WritesTo(p gpu.ProgramID, name string) []any {
	var out []any
	for _, w := range r.Writes {
		if w.Program == p && w.Name == name {
			out = append(out, w.Value)
		}
	}
	return out
}

func (r *Recorder) Uniform1i(l gpu.UniformLocation, v int32)        { r.set(l, v) }
func (r *Recorder) Uniform1f(l gpu.UniformLocation, v float32)      { r.set(l, v) }
func (r *Recorder) Uniform2f(l gpu.UniformLocation, v mgl32.Vec2)   { r.set(l, v) }
func (r *Recorder) Uniform3f(l gpu.UniformLocation, v mgl32.Vec3)   { r.set(l, v) }
func (r *Recorder) Uniform4f(l gpu.UniformLocation, v mgl32.Vec4)   { r.set(l, v) }
func (r *Recorder) UniformMat2(l gpu.UniformLocation, v mgl32.Mat2) { r.set(l, v) }
func (r *Recorder) UniformMat3(l gpu.UniformLocation, v mgl32.Mat3) { r.set(l, v) }
func (r *Recorder) UniformMat4(l gpu.UniformLocation, v mgl32.Mat4) { r.set(l, v) }

func (r *Recorder) Viewport(x, y, w, h int32) {
	r.ViewportSize = [4]int32{x, y, w, h}
	r.log("Viewport(%d, %d, %d, %d)", x, y, w, h)
}

func (r *Recorder) ClearColor(c mgl32.Vec4) { r.LastClearColor = c }

func (r *Recorder) Clear(m gpu.ClearMask) { r.log("Clear(%d)", m) }

func (r *Recorder) Enable(c gpu.Capability) {
	r.Enabled[c] = true
	r.log("Enable(%d)", c)
}

func (r *Recorder) Disable(c gpu.Capability) {
	r.Enabled[c] = false
	r.log("Disable(%d)", c)
}

func (r *Recorder) BlendFunc(src, dst gpu.BlendFactor) { r.log("BlendFunc(%d, %d)", src, dst) }

func (r *Recorder) draw(mode gpu.DrawMode, count, instances int32, indexed bool) {
	units := make(map[uint32]gpu.TextureID, len(r.BoundTextures))
	for u, t := range r.BoundTextures {
		units[u] = t
	}
	r.Draws = append(r.Draws, Draw{
		Mode:        mode,
		Count:       count,
		Instances:   instances,
		Indexed:     indexed,
		Program:     r.CurrentProgram,
		VertexArray: r.BoundVertexArray,
		Framebuffer: r.BoundFramebuffer,
		Textures:    units,
	})
}

func (r *Recorder) DrawArrays(mode gpu.DrawMode, first, count int32) {
	r.draw(mode, count, 1, false)
	r.log("DrawArrays(%d, %d)", first, count)
}

func (r *Recorder) DrawElements(mode gpu.DrawMode, count int32) {
	r.draw(mode, count, 1, true)
	r.log("DrawElements(%d)", count)
}

func (r *Recorder) DrawArraysInstanced(mode gpu.DrawMode, first, count, instances int32) {
	r.draw(mode, count, instances, false)
	r.log("DrawArraysInstanced(%d, %d, %d)", first, count, instances)
}

func (r *Recorder) DrawElementsInstanced(mode gpu.DrawMode, count, instances int32) {
	r.draw(mode, count, instances, true)
	r.log("DrawElementsInstanced(%d, %d)", count, instances)
}
