package renderer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"hexview/internal/gpu"
)

// ErrInvalidProgram is wrapped by every compile, link and source read
// failure.
var ErrInvalidProgram = errors.New("invalid shader program")

// Program is a linked vertex + fragment shader program.
//
// Construction never fails hard: a program whose sources do not compile is
// returned together with the error and stays invalid. Using an invalid
// program and setting its uniforms are no-ops, so a broken shader only
// blanks the geometry it draws.
type Program struct {
	ctx   *Context
	name  string
	id    gpu.ProgramID
	valid bool

	// Source files, set when loaded with LoadProgram.
	vertexPath   string
	fragmentPath string

	released bool
}

// NewProgram compiles and links the given GLSL sources.
func NewProgram(ctx *Context, name, vertexSrc, fragmentSrc string) (*Program, error) {
	p := &Program{ctx: ctx, name: name}
	id, err := p.build(vertexSrc, fragmentSrc)
	if err != nil {
		ctx.Log.Error("Failed to build shader program", zap.String("program", name), zap.Error(err))
		return p, err
	}
	p.id, p.valid = id, true
	return p, nil
}

// LoadProgram reads vertexFile and fragmentFile from the shader root and
// builds them like NewProgram.
func LoadProgram(ctx *Context, root, vertexFile, fragmentFile string) (*Program, error) {
	name := vertexFile + "+" + fragmentFile
	p := &Program{
		ctx:          ctx,
		name:         name,
		vertexPath:   filepath.Join(root, vertexFile),
		fragmentPath: filepath.Join(root, fragmentFile),
	}
	vs, fs, err := p.readSources()
	if err != nil {
		ctx.Log.Error("Failed to read shader sources", zap.String("program", name), zap.Error(err))
		return p, err
	}
	id, err := p.build(vs, fs)
	if err != nil {
		ctx.Log.Error("Failed to build shader program", zap.String("program", name), zap.Error(err))
		return p, err
	}
	p.id, p.valid = id, true
	return p, nil
}

func (p *Program) readSources() (vs, fs string, err error) {
	vb, err := os.ReadFile(p.vertexPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	}
	fb, err := os.ReadFile(p.fragmentPath)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	}
	return string(vb), string(fb), nil
}

func (p *Program) build(vertexSrc, fragmentSrc string) (gpu.ProgramID, error) {
	gl := p.ctx.GL
	vs, err := gl.CompileShader(gpu.VertexShader, vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %s shader: %w", ErrInvalidProgram, p.name, gpu.VertexShader, err)
	}
	defer gl.DeleteShader(vs)

	fs, err := gl.CompileShader(gpu.FragmentShader, fragmentSrc)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %s shader: %w", ErrInvalidProgram, p.name, gpu.FragmentShader, err)
	}
	defer gl.DeleteShader(fs)

	id, err := gl.LinkProgram(vs, fs)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidProgram, p.name, err)
	}
	return id, nil
}

// Reload swaps in a program built from new sources. When they fail to build
// the current program stays in place and the error is returned.
func (p *Program) Reload(vertexSrc, fragmentSrc string) error {
	if p.released {
		return ErrReleased
	}
	id, err := p.build(vertexSrc, fragmentSrc)
	if err != nil {
		p.ctx.Log.Warn("Shader reload failed, keeping previous program",
			zap.String("program", p.name), zap.Error(err))
		return err
	}
	if p.valid {
		p.ctx.GL.DeleteProgram(p.id)
	}
	p.id, p.valid = id, true
	p.ctx.Log.Info("Shader program reloaded", zap.String("program", p.name))
	return nil
}

// ReloadFiles re-reads the source files of a program made by LoadProgram.
func (p *Program) ReloadFiles() error {
	if p.vertexPath == "" {
		return fmt.Errorf("program %s was not loaded from files", p.name)
	}
	vs, fs, err := p.readSources()
	if err != nil {
		p.ctx.Log.Warn("Shader reload failed, keeping previous program",
			zap.String("program", p.name), zap.Error(err))
		return err
	}
	return p.Reload(vs, fs)
}

// Files returns the source paths of a program made by LoadProgram.
func (p *Program) Files() []string {
	if p.vertexPath == "" {
		return nil
	}
	return []string{p.vertexPath, p.fragmentPath}
}

func (p *Program) Name() string      { return p.name }
func (p *Program) ID() gpu.ProgramID { return p.id }
func (p *Program) Valid() bool       { return p.valid }

// Use makes p the current program. Uniform setters write to the current
// program, so call Use first.
func (p *Program) Use() {
	if !p.valid {
		return
	}
	p.ctx.GL.UseProgram(p.id)
}

// location resolves name on every call; ok is false for unknown uniforms
// and invalid programs.
func (p *Program) location(name string) (gpu.UniformLocation, bool) {
	if !p.valid {
		return gpu.NoUniform, false
	}
	loc := p.ctx.GL.UniformLocation(p.id, name)
	return loc, loc.Valid()
}

// The setters report whether the uniform exists. A missing uniform is not
// an error: the GLSL compiler drops uniforms a shader never reads.

func (p *Program) SetBool(name string, v bool) bool {
	var i int32
	if v {
		i = 1
	}
	return p.SetInt(name, i)
}

func (p *Program) SetInt(name string, v int32) bool {
	loc, ok := p.location(name)
	if ok {
		p.ctx.GL.Uniform1i(loc, v)
	}
	return ok
}

func (p *Program) SetFloat(name string, v float32) bool {
	loc, ok := p.location(name)
	if ok {
		p.ctx.GL.Uniform1f(loc, v)
	}
	return ok
}

func (p *Program) SetVec2(name string, v mgl32.Vec2) bool {
	loc, ok := p.location(name)
	if ok {
		p.ctx.GL.Uniform2f(loc, v)
	}
	return ok
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) bool {
	loc, ok := p.location(name)
	if ok {
		p.ctx.GL.Uniform3f(loc, v)
	}
	return ok
}

func (p *Program) SetVec4(name string, v mgl32.Vec4) bool {
	loc, ok := p.location(name)
	if ok {
		p.ctx.GL.Uniform4f(loc, v)
	}
	return ok
}

func (p *Program) SetMat2(name string, m mgl32.Mat2) bool {
	loc, ok := p.location(name)
	if ok {
		p.ctx.GL.UniformMat2(loc, m)
	}
	return ok
}

func (p *Program) SetMat3(name string, m mgl32.Mat3) bool {
	loc, ok := p.location(name)
	if ok {
		p.ctx.GL.UniformMat3(loc, m)
	}
	return ok
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) bool {
	loc, ok := p.location(name)
	if ok {
		p.ctx.GL.UniformMat4(loc, m)
	}
	return ok
}

// Release deletes the GPU program once.
func (p *Program) Release() {
	if p.released {
		return
	}
	if p.valid {
		p.ctx.GL.DeleteProgram(p.id)
	}
	p.id, p.valid, p.released = 0, false, true
}
