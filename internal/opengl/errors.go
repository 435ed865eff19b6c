package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// maxPendingErrors bounds a drain; a lost context can report errors forever.
const maxPendingErrors = 32

// drain pops error codes from next until it reports GL_NO_ERROR.
func drain(next func() uint32) []uint32 {
	var codes []uint32
	for code := next(); code != gl.NO_ERROR && len(codes) < maxPendingErrors; code = next() {
		codes = append(codes, code)
	}
	return codes
}

// ClearErrors discards every pending GL error flag and returns how many
// there were.
func ClearErrors() int {
	return len(drain(gl.GetError))
}

// CheckError drains the GL error queue. It returns nil when no error was
// pending, otherwise one error naming every flag that was set and the call
// it is attributed to.
func CheckError(call string) error {
	return errorFrom(drain(gl.GetError), call)
}

func errorFrom(codes []uint32, call string) error {
	if len(codes) == 0 {
		return nil
	}
	names := make([]string, len(codes))
	for i, code := range codes {
		names[i] = ErrorString(code)
	}
	return fmt.Errorf("opengl error after %s: %s", call, strings.Join(names, ", "))
}

// ErrorString names a glGetError code.
func ErrorString(code uint32) string {
	switch code {
	case gl.NO_ERROR:
		return "GL_NO_ERROR"
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	}
	return fmt.Sprintf("GL_ERROR(0x%X)", code)
}
