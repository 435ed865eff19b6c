package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"hexview/internal/gpu"
)

// Functions implements gpu.Functions on top of the OpenGL 4.1 core profile.
// The GL context must be current on the calling thread.
type Functions struct{}

var _ gpu.Functions = Functions{}

// Init loads the GL function pointers for the current context and returns
// the driver version string.
func Init() (string, error) {
	if err := gl.Init(); err != nil {
		return "", fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	// Drop flags raised during context creation.
	ClearErrors()
	// Decoded images are tightly packed, including 1 and 3 channel rows.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	return gl.GoStr(gl.GetString(gl.VERSION)), nil
}

func (Functions) CreateVertexArray() gpu.VertexArrayID {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return gpu.VertexArrayID(id)
}

func (Functions) BindVertexArray(id gpu.VertexArrayID) { gl.BindVertexArray(uint32(id)) }

func (Functions) DeleteVertexArray(id gpu.VertexArrayID) {
	v := uint32(id)
	gl.DeleteVertexArrays(1, &v)
}

func (Functions) CreateBuffer() gpu.BufferID {
	var id uint32
	gl.GenBuffers(1, &id)
	return gpu.BufferID(id)
}

func (Functions) BindBuffer(target gpu.BufferTarget, id gpu.BufferID) {
	gl.BindBuffer(bufferTarget(target), uint32(id))
}

func (Functions) BufferFloats(target gpu.BufferTarget, data []float32) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, gl.STATIC_DRAW)
		return
	}
	gl.BufferData(bufferTarget(target), len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (Functions) BufferIndices(data []uint32) {
	if len(data) == 0 {
		return
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
}

func (Functions) DeleteBuffer(id gpu.BufferID) {
	v := uint32(id)
	gl.DeleteBuffers(1, &v)
}

func (Functions) EnableVertexAttrib(slot uint32) { gl.EnableVertexAttribArray(slot) }

func (Functions) VertexAttribPointer(slot uint32, components, stride int32, offset int) {
	gl.VertexAttribPointer(slot, components, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

func (Functions) VertexAttribDivisor(slot, divisor uint32) { gl.VertexAttribDivisor(slot, divisor) }

func (Functions) CreateTexture() gpu.TextureID {
	var id uint32
	gl.GenTextures(1, &id)
	return gpu.TextureID(id)
}

func (Functions) ActiveTexture(unit uint32) { gl.ActiveTexture(gl.TEXTURE0 + unit) }

func (Functions) BindTexture(id gpu.TextureID) { gl.BindTexture(gl.TEXTURE_2D, uint32(id)) }

func (Functions) TexImage2D(img gpu.TextureImage) {
	var pixels unsafe.Pointer
	if len(img.Pixels) > 0 {
		pixels = gl.Ptr(img.Pixels)
	}
	format, xtype := clientFormat(img.Format)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(internalFormat(img.Internal)),
		img.Width, img.Height, 0, format, xtype, pixels)
}

func (Functions) SetSampler(s gpu.SamplerState) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(s.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(s.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter(s.Min))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter(s.Mag))
}

func (Functions) GenerateMipmap() { gl.GenerateMipmap(gl.TEXTURE_2D) }

func (Functions) DeleteTexture(id gpu.TextureID) {
	v := uint32(id)
	gl.DeleteTextures(1, &v)
}

func (Functions) CreateFramebuffer() gpu.FramebufferID {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return gpu.FramebufferID(id)
}

func (Functions) BindFramebuffer(id gpu.FramebufferID) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(id))
}

func (Functions) FramebufferTexture(a gpu.Attachment, id gpu.TextureID) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment(a), gl.TEXTURE_2D, uint32(id), 0)
}

func (Functions) CreateRenderbuffer() gpu.RenderbufferID {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return gpu.RenderbufferID(id)
}

func (Functions) RenderbufferStorage(id gpu.RenderbufferID, f gpu.PixelFormat, w, h int32) {
	gl.BindRenderbuffer(gl.RENDERBUFFER, uint32(id))
	gl.RenderbufferStorage(gl.RENDERBUFFER, internalFormat(f), w, h)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
}

func (Functions) FramebufferRenderbuffer(a gpu.Attachment, id gpu.RenderbufferID) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment(a), gl.RENDERBUFFER, uint32(id))
}

func (Functions) DrawBuffers(count int) {
	bufs := make([]uint32, count)
	for i := range bufs {
		bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	if count == 0 {
		gl.DrawBuffer(gl.NONE)
		return
	}
	gl.DrawBuffers(int32(count), &bufs[0])
}

func (Functions) CheckFramebufferStatus() gpu.FramebufferStatus {
	switch gl.CheckFramebufferStatus(gl.FRAMEBUFFER) {
	case gl.FRAMEBUFFER_COMPLETE:
		return gpu.FramebufferComplete
	case gl.FRAMEBUFFER_INCOMPLETE_ATTACHMENT:
		return gpu.FramebufferIncompleteAttachment
	case gl.FRAMEBUFFER_INCOMPLETE_MISSING_ATTACHMENT:
		return gpu.FramebufferIncompleteMissingAttachment
	case gl.FRAMEBUFFER_UNSUPPORTED:
		return gpu.FramebufferUnsupported
	case gl.FRAMEBUFFER_UNDEFINED:
		return gpu.FramebufferUndefined
	}
	return gpu.FramebufferIncompleteDimensions
}

func (Functions) DeleteFramebuffer(id gpu.FramebufferID) {
	v := uint32(id)
	gl.DeleteFramebuffers(1, &v)
}

func (Functions) DeleteRenderbuffer(id gpu.RenderbufferID) {
	v := uint32(id)
	gl.DeleteRenderbuffers(1, &v)
}

func (Functions) CompileShader(stage gpu.ShaderStage, src string) (gpu.ShaderID, error) {
	shader := gl.CreateShader(shaderType(stage))
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", strings.TrimRight(log, "\x00"))
	}
	return gpu.ShaderID(shader), nil
}

func (Functions) DeleteShader(id gpu.ShaderID) { gl.DeleteShader(uint32(id)) }

func (Functions) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	prog := gl.CreateProgram()
	gl.AttachShader(prog, uint32(vs))
	gl.AttachShader(prog, uint32(fs))
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", strings.TrimRight(log, "\x00"))
	}
	return gpu.ProgramID(prog), nil
}

func (Functions) UseProgram(id gpu.ProgramID) { gl.UseProgram(uint32(id)) }

func (Functions) DeleteProgram(id gpu.ProgramID) { gl.DeleteProgram(uint32(id)) }

func (Functions) UniformLocation(p gpu.ProgramID, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (Functions) Uniform1i(l gpu.UniformLocation, v int32)   { gl.Uniform1i(int32(l), v) }
func (Functions) Uniform1f(l gpu.UniformLocation, v float32) { gl.Uniform1f(int32(l), v) }

func (Functions) Uniform2f(l gpu.UniformLocation, v mgl32.Vec2) {
	gl.Uniform2f(int32(l), v[0], v[1])
}

func (Functions) Uniform3f(l gpu.UniformLocation, v mgl32.Vec3) {
	gl.Uniform3f(int32(l), v[0], v[1], v[2])
}

func (Functions) Uniform4f(l gpu.UniformLocation, v mgl32.Vec4) {
	gl.Uniform4f(int32(l), v[0], v[1], v[2], v[3])
}

func (Functions) UniformMat2(l gpu.UniformLocation, m mgl32.Mat2) {
	gl.UniformMatrix2fv(int32(l), 1, false, &m[0])
}

func (Functions) UniformMat3(l gpu.UniformLocation, m mgl32.Mat3) {
	gl.UniformMatrix3fv(int32(l), 1, false, &m[0])
}

func (Functions) UniformMat4(l gpu.UniformLocation, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(l), 1, false, &m[0])
}

func (Functions) Viewport(x, y, w, h int32) { gl.Viewport(x, y, w, h) }

func (Functions) ClearColor(c mgl32.Vec4) { gl.ClearColor(c[0], c[1], c[2], c[3]) }

func (Functions) Clear(m gpu.ClearMask) {
	var bits uint32
	if m&gpu.ClearColor != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if m&gpu.ClearDepth != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if m&gpu.ClearStencil != 0 {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (Functions) Enable(c gpu.Capability)  { gl.Enable(capability(c)) }
func (Functions) Disable(c gpu.Capability) { gl.Disable(capability(c)) }

func (Functions) BlendFunc(src, dst gpu.BlendFactor) {
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

func (Functions) DrawArrays(mode gpu.DrawMode, first, count int32) {
	gl.DrawArrays(drawMode(mode), first, count)
}

func (Functions) DrawElements(mode gpu.DrawMode, count int32) {
	gl.DrawElements(drawMode(mode), count, gl.UNSIGNED_INT, nil)
}

func (Functions) DrawArraysInstanced(mode gpu.DrawMode, first, count, instances int32) {
	gl.DrawArraysInstanced(drawMode(mode), first, count, instances)
}

func (Functions) DrawElementsInstanced(mode gpu.DrawMode, count, instances int32) {
	gl.DrawElementsInstanced(drawMode(mode), count, gl.UNSIGNED_INT, nil, instances)
}
