package renderer

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"hexview/scene"
)

// MaterialTexture is a texture bound to a mesh under a sampler kind
// (scene.TextureDiffuse, scene.TextureSpecular, ...).
type MaterialTexture struct {
	Kind string
	Tex  *Texture
}

// Mesh is an indexed tangent-space mesh with its material textures.
type Mesh struct {
	Name     string
	Textures []MaterialTexture

	ctx *Context
	buf *Buffer
}

func NewMesh(ctx *Context, data scene.MeshData, textures []MaterialTexture) (*Mesh, error) {
	buf, err := NewBuffer(ctx, data.Interleave(), data.Indices, scene.LayoutTangentSpace)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", data.Name, err)
	}
	return &Mesh{Name: data.Name, Textures: textures, ctx: ctx, buf: buf}, nil
}

// SamplerNames returns the uniform each texture is bound to, in unit order:
// "texture_" + kind + N, with N counting from 1 per kind.
func (m *Mesh) SamplerNames() []string {
	counts := make(map[string]int)
	names := make([]string, len(m.Textures))
	for i, mt := range m.Textures {
		counts[mt.Kind]++
		names[i] = "texture_" + mt.Kind + strconv.Itoa(counts[mt.Kind])
	}
	return names
}

// Draw binds every texture to its own unit, points the matching sampler
// uniform of p at it and draws the mesh. p must be in use.
func (m *Mesh) Draw(p *Program) {
	if m.buf.Released() {
		return
	}
	for i, name := range m.SamplerNames() {
		p.SetInt(name, int32(i))
		BindOrNone(m.ctx, m.Textures[i].Tex, uint32(i))
	}
	m.buf.Draw()
	m.ctx.GL.ActiveTexture(0)
}

func (m *Mesh) Buffer() *Buffer { return m.buf }

// Release frees the mesh geometry. Textures belong to their cache.
func (m *Mesh) Release() { m.buf.Release() }

// Model is a set of meshes imported from one file.
type Model struct {
	Path   string
	Meshes []*Mesh
	Bounds scene.AABB
}

// LoadModel imports a glTF or OBJ file and uploads it, loading textures
// through cache.
func LoadModel(ctx *Context, path string, cache *TextureCache) (*Model, error) {
	data, err := scene.LoadModelFile(path)
	if err != nil {
		ctx.Log.Error("Failed to load model", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	return NewModel(ctx, data, cache)
}

// NewModel uploads every mesh of data. Textures that fail to load are
// logged and skipped; the mesh still draws.
func NewModel(ctx *Context, data *scene.ModelData, cache *TextureCache) (*Model, error) {
	model := &Model{Path: data.Path, Bounds: data.Bounds()}
	for _, md := range data.Meshes {
		var textures []MaterialTexture
		for _, ref := range md.Textures {
			tex, err := cache.Get(ref)
			if err != nil {
				continue
			}
			textures = append(textures, MaterialTexture{Kind: ref.Kind, Tex: tex})
		}
		mesh, err := NewMesh(ctx, md, textures)
		if err != nil {
			model.Release()
			return nil, err
		}
		model.Meshes = append(model.Meshes, mesh)
	}
	ctx.Log.Info("Model loaded",
		zap.String("path", data.Path), zap.Int("meshes", len(model.Meshes)), zap.Int("textures", cache.Len()))
	return model, nil
}

func (m *Model) Draw(p *Program) {
	for _, mesh := range m.Meshes {
		mesh.Draw(p)
	}
}

func (m *Model) Release() {
	for _, mesh := range m.Meshes {
		mesh.Release()
	}
}
