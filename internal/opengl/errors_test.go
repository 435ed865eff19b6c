package opengl

import (
	"testing"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
)

// queue returns a glGetError stand-in that pops codes, then GL_NO_ERROR.
func queue(codes ...uint32) func() uint32 {
	return func() uint32 {
		if len(codes) == 0 {
			return gl.NO_ERROR
		}
		c := codes[0]
		codes = codes[1:]
		return c
	}
}

func TestDrain(t *testing.T) {
	next := queue(gl.INVALID_ENUM, gl.OUT_OF_MEMORY)
	assert.Equal(t, []uint32{gl.INVALID_ENUM, gl.OUT_OF_MEMORY}, drain(next))
	assert.Empty(t, drain(next), "queue stays empty once drained")
}

func TestDrainStopsOnLostContext(t *testing.T) {
	forever := func() uint32 { return gl.INVALID_OPERATION }
	assert.Len(t, drain(forever), maxPendingErrors)
}

func TestErrorFrom(t *testing.T) {
	assert.NoError(t, errorFrom(nil, "init"))

	err := errorFrom(drain(queue(gl.INVALID_VALUE, 0x9999)), "resize")
	assert.EqualError(t, err, "opengl error after resize: GL_INVALID_VALUE, GL_ERROR(0x9999)")
}

func TestErrorString(t *testing.T) {
	for code, want := range map[uint32]string{
		gl.NO_ERROR:                      "GL_NO_ERROR",
		gl.INVALID_ENUM:                  "GL_INVALID_ENUM",
		gl.INVALID_FRAMEBUFFER_OPERATION: "GL_INVALID_FRAMEBUFFER_OPERATION",
	} {
		assert.Equal(t, want, ErrorString(code))
	}
}
