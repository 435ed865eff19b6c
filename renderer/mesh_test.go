package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexview/scene"
)

func quadMesh(name string) scene.MeshData {
	v := func(x, y float32) scene.Vertex {
		return scene.Vertex{
			Position:  mgl32.Vec3{x, y, 0},
			Normal:    mgl32.Vec3{0, 0, 1},
			UV:        mgl32.Vec2{x, y},
			Tangent:   mgl32.Vec3{1, 0, 0},
			Bitangent: mgl32.Vec3{0, 1, 0},
		}
	}
	return scene.NewMeshData(name, []scene.Vertex{v(0, 0), v(1, 0), v(1, 1), v(0, 1)}, []uint32{0, 1, 2, 0, 2, 3})
}

func TestMeshSamplerNames(t *testing.T) {
	ctx, rec := newTestContext(t)
	tex := func() *Texture {
		tx, err := NewTextureFromImage(ctx, solidImage(3, 1, 1), TextureOptions{})
		require.NoError(t, err)
		return tx
	}
	textures := []MaterialTexture{
		{Kind: scene.TextureDiffuse, Tex: tex()},
		{Kind: scene.TextureDiffuse, Tex: tex()},
		{Kind: scene.TextureSpecular, Tex: tex()},
		{Kind: scene.TextureNormal, Tex: tex()},
		{Kind: scene.TextureHeight, Tex: tex()},
	}
	mesh, err := NewMesh(ctx, quadMesh("quad"), textures)
	require.NoError(t, err)

	names := mesh.SamplerNames()
	assert.Equal(t, []string{
		"texture_diffuse1", "texture_diffuse2", "texture_specular1", "texture_normal1", "texture_height1",
	}, names)

	p, err := NewProgram(ctx, "model", testVS, testFS)
	require.NoError(t, err)
	p.Use()
	mesh.Draw(p)

	for i, name := range names {
		v, ok := rec.Uniform(p.ID(), name)
		require.True(t, ok, name)
		assert.Equal(t, int32(i), v, name)
	}
	require.Len(t, rec.Draws, 1)
	d := rec.Draws[0]
	assert.True(t, d.Indexed)
	assert.Equal(t, int32(6), d.Count)
	for i, mt := range textures {
		assert.Equal(t, mt.Tex.ID(), d.Textures[uint32(i)])
	}
	assert.Equal(t, uint32(0), rec.ActiveUnit, "active unit restored after draw")

	va := rec.VertexArrays[mesh.Buffer().vao]
	assert.Len(t, va.Attribs, 5)
	assert.Equal(t, int32(56), va.Attribs[0].Stride)
}

func TestMeshRelease(t *testing.T) {
	ctx, rec := newTestContext(t)
	mesh, err := NewMesh(ctx, quadMesh("quad"), nil)
	require.NoError(t, err)
	mesh.Release()
	mesh.Release()
	assert.Zero(t, rec.LiveObjects())

	p, _ := NewProgram(ctx, "model", testVS, testFS)
	p.Use()
	mesh.Draw(p)
	assert.Empty(t, rec.Draws)
}

func TestNewModelSkipsMissingTextures(t *testing.T) {
	ctx, rec := newTestContext(t)
	dir := t.TempDir()
	diffuse := filepath.Join(dir, "albedo.png")
	writePNG(t, diffuse, 2, 2)

	body := quadMesh("body")
	body.Textures = []scene.TextureRef{
		{Kind: scene.TextureDiffuse, Path: diffuse},
		{Kind: scene.TextureNormal, Path: filepath.Join(dir, "missing_normal.png")},
	}
	wheel := quadMesh("wheel")
	wheel.Vertices[2].Position = mgl32.Vec3{3, 2, 1}
	wheel.Bounds = scene.NewMeshData("", wheel.Vertices, nil).Bounds
	wheel.Textures = []scene.TextureRef{{Kind: scene.TextureDiffuse, Path: diffuse}}

	cache := NewTextureCache(ctx, TextureOptions{})
	model, err := NewModel(ctx, &scene.ModelData{Path: "car.gltf", Meshes: []scene.MeshData{body, wheel}}, cache)
	require.NoError(t, err)

	require.Len(t, model.Meshes, 2)
	require.Len(t, model.Meshes[0].Textures, 1)
	assert.Equal(t, scene.TextureDiffuse, model.Meshes[0].Textures[0].Kind)
	assert.Same(t, model.Meshes[0].Textures[0].Tex, model.Meshes[1].Textures[0].Tex)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, mgl32.Vec3{3, 2, 1}, model.Bounds.Max)

	p, err := NewProgram(ctx, "model", testVS, testFS)
	require.NoError(t, err)
	p.Use()
	model.Draw(p)
	assert.Len(t, rec.Draws, 2)

	model.Release()
	cache.Release()
	p.Release()
	assert.Zero(t, rec.LiveObjects())
}

func TestNewModelRejectsBrokenMesh(t *testing.T) {
	ctx, rec := newTestContext(t)
	good := quadMesh("good")
	bad := quadMesh("bad")
	bad.Indices = []uint32{0, 1, 9}

	_, err := NewModel(ctx, &scene.ModelData{Meshes: []scene.MeshData{good, bad}}, NewTextureCache(ctx, TextureOptions{}))
	assert.ErrorContains(t, err, "bad")
	assert.Zero(t, rec.LiveObjects(), "meshes uploaded before the failure are released")
}

func TestLoadModelMissingFile(t *testing.T) {
	ctx, _ := newTestContext(t)
	_, err := LoadModel(ctx, filepath.Join(t.TempDir(), "none.gltf"), NewTextureCache(ctx, TextureOptions{}))
	assert.Error(t, err)
}

func TestLoadModelOBJ(t *testing.T) {
	ctx, _ := newTestContext(t)
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tri.png"), 4, 4)
	files := map[string]string{
		"tri.mtl": "newmtl m\nmap_Kd tri.png\nmap_Bump missing.png\n",
		"tri.obj": "mtllib tri.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nvt 1 0\nvt 0 1\nusemtl m\nf 1/1 2/2 3/3\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	cache := NewTextureCache(ctx, TextureOptions{})
	model, err := LoadModel(ctx, filepath.Join(dir, "tri.obj"), cache)
	require.NoError(t, err)
	require.Len(t, model.Meshes, 1)
	assert.Equal(t, []string{"texture_diffuse1"}, model.Meshes[0].SamplerNames(), "missing normal map is skipped")
	assert.Equal(t, 3, model.Meshes[0].Buffer().IndexCount())
	assert.Equal(t, 1, cache.Len())
}
