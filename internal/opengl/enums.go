package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"hexview/internal/gpu"
)

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func shaderType(s gpu.ShaderStage) uint32 {
	if s == gpu.FragmentShader {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func internalFormat(f gpu.PixelFormat) uint32 {
	switch f {
	case gpu.FormatRed:
		return gl.RED
	case gpu.FormatRGB:
		return gl.RGB
	case gpu.FormatRGBA16F:
		return gl.RGBA16F
	case gpu.FormatDepth24Stencil8:
		return gl.DEPTH24_STENCIL8
	}
	return gl.RGBA
}

// clientFormat returns the pixel layout and component type of uploads.
func clientFormat(f gpu.PixelFormat) (format, xtype uint32) {
	switch f {
	case gpu.FormatRed:
		return gl.RED, gl.UNSIGNED_BYTE
	case gpu.FormatRGB:
		return gl.RGB, gl.UNSIGNED_BYTE
	case gpu.FormatRGBA16F:
		return gl.RGBA, gl.FLOAT
	case gpu.FormatDepth24Stencil8:
		return gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8
	}
	return gl.RGBA, gl.UNSIGNED_BYTE
}

func wrapMode(w gpu.WrapMode) int32 {
	switch w {
	case gpu.ClampToEdge:
		return gl.CLAMP_TO_EDGE
	case gpu.MirroredRepeat:
		return gl.MIRRORED_REPEAT
	}
	return gl.REPEAT
}

func filter(f gpu.Filter) int32 {
	switch f {
	case gpu.Nearest:
		return gl.NEAREST
	case gpu.LinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.LINEAR
}

func attachment(a gpu.Attachment) uint32 {
	if a == gpu.DepthStencilAttachment {
		return gl.DEPTH_STENCIL_ATTACHMENT
	}
	return gl.COLOR_ATTACHMENT0 + uint32(a-gpu.ColorAttachment0)
}

func capability(c gpu.Capability) uint32 {
	switch c {
	case gpu.Blend:
		return gl.BLEND
	case gpu.CullFace:
		return gl.CULL_FACE
	}
	return gl.DEPTH_TEST
}

func blendFactor(b gpu.BlendFactor) uint32 {
	switch b {
	case gpu.SrcAlpha:
		return gl.SRC_ALPHA
	case gpu.OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	}
	return gl.ONE
}

func drawMode(m gpu.DrawMode) uint32 {
	switch m {
	case gpu.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.Lines:
		return gl.LINES
	}
	return gl.TRIANGLES
}
