// Package gpu defines the typed object handles and the call surface every
// rendering component goes through. Nothing in here talks to a driver; the
// OpenGL implementation lives in internal/opengl and an in-memory one for
// tests in internal/gpu/gputest.
package gpu

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Object handles. Each resource kind has its own type so that, for example,
// a texture can never be handed to DeleteBuffer.
type (
	BufferID       uint32
	VertexArrayID  uint32
	TextureID      uint32
	FramebufferID  uint32
	RenderbufferID uint32
	ShaderID       uint32
	ProgramID      uint32
)

// DefaultFramebuffer is the window-system provided framebuffer.
const DefaultFramebuffer FramebufferID = 0

// UniformLocation is a resolved uniform slot. NoUniform means the linked
// program has no active uniform with the requested name.
type UniformLocation int32

const NoUniform UniformLocation = -1

// Valid reports whether the location refers to an active uniform.
func (l UniformLocation) Valid() bool { return l >= 0 }

type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

type ShaderStage int

const (
	VertexShader ShaderStage = iota
	FragmentShader
)

func (s ShaderStage) String() string {
	switch s {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	}
	return fmt.Sprintf("ShaderStage(%d)", int(s))
}

// PixelFormat covers both the internal storage format and the client-side
// layout of uploaded pixels.
type PixelFormat int

const (
	FormatRed PixelFormat = iota
	FormatRGB
	FormatRGBA
	FormatRGBA16F
	FormatDepth24Stencil8
)

// FormatForChannels maps a decoded image's channel count to its format.
func FormatForChannels(channels int) (PixelFormat, error) {
	switch channels {
	case 1:
		return FormatRed, nil
	case 3:
		return FormatRGB, nil
	case 4:
		return FormatRGBA, nil
	}
	return 0, fmt.Errorf("unsupported channel count %d", channels)
}

type WrapMode int

const (
	Repeat WrapMode = iota
	ClampToEdge
	MirroredRepeat
)

func (w WrapMode) String() string {
	switch w {
	case Repeat:
		return "repeat"
	case ClampToEdge:
		return "clamp-to-edge"
	case MirroredRepeat:
		return "mirrored-repeat"
	}
	return fmt.Sprintf("WrapMode(%d)", int(w))
}

type Filter int

const (
	Nearest Filter = iota
	Linear
	LinearMipmapLinear
)

// SamplerState is applied to the currently bound 2D texture.
type SamplerState struct {
	WrapS, WrapT WrapMode
	Min, Mag     Filter
}

// TextureImage describes a 2D level-0 upload. Pixels may be nil to only
// allocate storage (render targets).
type TextureImage struct {
	Width, Height int32
	Internal      PixelFormat
	Format        PixelFormat
	Pixels        []byte
}

type Attachment int

const (
	ColorAttachment0 Attachment = iota
	ColorAttachment1
	ColorAttachment2
	ColorAttachment3
	DepthStencilAttachment Attachment = 100
)

// ColorAttachment returns the i-th color attachment point.
func ColorAttachment(i int) Attachment { return ColorAttachment0 + Attachment(i) }

type FramebufferStatus int

const (
	FramebufferComplete FramebufferStatus = iota
	FramebufferIncompleteAttachment
	FramebufferIncompleteMissingAttachment
	FramebufferIncompleteDimensions
	FramebufferUnsupported
	FramebufferUndefined
)

func (s FramebufferStatus) String() string {
	switch s {
	case FramebufferComplete:
		return "complete"
	case FramebufferIncompleteAttachment:
		return "incomplete attachment"
	case FramebufferIncompleteMissingAttachment:
		return "missing attachment"
	case FramebufferIncompleteDimensions:
		return "mismatched dimensions"
	case FramebufferUnsupported:
		return "unsupported"
	case FramebufferUndefined:
		return "undefined"
	}
	return fmt.Sprintf("FramebufferStatus(%d)", int(s))
}

// ErrFramebufferIncomplete is wrapped by every completeness check failure.
var ErrFramebufferIncomplete = errors.New("framebuffer incomplete")

type ClearMask int

const (
	ClearColor ClearMask = 1 << iota
	ClearDepth
	ClearStencil
)

type Capability int

const (
	DepthTest Capability = iota
	Blend
	CullFace
)

type BlendFactor int

const (
	One BlendFactor = iota
	SrcAlpha
	OneMinusSrcAlpha
)

type DrawMode int

const (
	Triangles DrawMode = iota
	TriangleStrip
	Lines
)

// Functions is the complete set of GPU calls the renderer issues. All
// bind-point state is global to the implementation, exactly as in OpenGL;
// callers must (re)bind what they use.
type Functions interface {
	// Vertex arrays and buffers.
	CreateVertexArray() VertexArrayID
	BindVertexArray(VertexArrayID)
	DeleteVertexArray(VertexArrayID)
	CreateBuffer() BufferID
	BindBuffer(BufferTarget, BufferID)
	BufferFloats(BufferTarget, []float32)
	BufferIndices([]uint32)
	DeleteBuffer(BufferID)
	EnableVertexAttrib(slot uint32)
	VertexAttribPointer(slot uint32, components, stride int32, offset int)
	VertexAttribDivisor(slot, divisor uint32)

	// Textures.
	CreateTexture() TextureID
	ActiveTexture(unit uint32)
	BindTexture(TextureID)
	TexImage2D(TextureImage)
	SetSampler(SamplerState)
	GenerateMipmap()
	DeleteTexture(TextureID)

	// Framebuffers.
	CreateFramebuffer() FramebufferID
	BindFramebuffer(FramebufferID)
	FramebufferTexture(Attachment, TextureID)
	CreateRenderbuffer() RenderbufferID
	RenderbufferStorage(RenderbufferID, PixelFormat, int32, int32)
	FramebufferRenderbuffer(Attachment, RenderbufferID)
	DrawBuffers(count int)
	CheckFramebufferStatus() FramebufferStatus
	DeleteFramebuffer(FramebufferID)
	DeleteRenderbuffer(RenderbufferID)

	// Programs. CompileShader and LinkProgram report the driver info log
	// through the returned error.
	CompileShader(ShaderStage, string) (ShaderID, error)
	DeleteShader(ShaderID)
	LinkProgram(vertex, fragment ShaderID) (ProgramID, error)
	UseProgram(ProgramID)
	DeleteProgram(ProgramID)
	UniformLocation(ProgramID, string) UniformLocation
	Uniform1i(UniformLocation, int32)
	Uniform1f(UniformLocation, float32)
	Uniform2f(UniformLocation, mgl32.Vec2)
	Uniform3f(UniformLocation, mgl32.Vec3)
	Uniform4f(UniformLocation, mgl32.Vec4)
	UniformMat2(UniformLocation, mgl32.Mat2)
	UniformMat3(UniformLocation, mgl32.Mat3)
	UniformMat4(UniformLocation, mgl32.Mat4)

	// Fixed-function state and draws.
	Viewport(x, y, width, height int32)
	ClearColor(mgl32.Vec4)
	Clear(ClearMask)
	Enable(Capability)
	Disable(Capability)
	BlendFunc(src, dst BlendFactor)
	DrawArrays(mode DrawMode, first, count int32)
	DrawElements(mode DrawMode, count int32)
	DrawArraysInstanced(mode DrawMode, first, count, instances int32)
	DrawElementsInstanced(mode DrawMode, count, instances int32)
}
