package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hexview/internal/gpu"
	"hexview/scene"
)

func grid(n int) []mgl32.Mat4 {
	out := make([]mgl32.Mat4, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, mgl32.Translate3D(float32(i), 0, 0))
	}
	return out
}

func TestIndexedPrimitiveDraw(t *testing.T) {
	ctx, rec := newTestContext(t)
	caps := scene.Capabilities{Indexed: true}
	p, err := NewPrimitive(ctx, hexagon(t, caps), caps, nil)
	require.NoError(t, err)

	p.Draw()
	require.Len(t, rec.Draws, 1)
	d := rec.Draws[0]
	assert.True(t, d.Indexed)
	assert.Equal(t, int32(18), d.Count)
	assert.Equal(t, int32(1), d.Instances)
	assert.Equal(t, gpu.Triangles, d.Mode)
	assert.Equal(t, gpu.VertexArrayID(0), rec.BoundVertexArray)
}

func TestTangentPrimitive(t *testing.T) {
	ctx, rec := newTestContext(t)
	caps := scene.Capabilities{TangentBasis: true}
	p, err := NewPrimitive(ctx, hexagon(t, caps), caps, nil)
	require.NoError(t, err)

	va := rec.VertexArrays[p.Buffer().vao]
	require.Contains(t, va.Attribs, uint32(3))
	require.Contains(t, va.Attribs, uint32(4))
	assert.Equal(t, int32(56), va.Attribs[3].Stride)
	assert.Equal(t, 32, va.Attribs[3].Offset)
	assert.Equal(t, 44, va.Attribs[4].Offset)

	p.Draw()
	require.Len(t, rec.Draws, 1)
	assert.False(t, rec.Draws[0].Indexed)
	assert.Equal(t, int32(18), rec.Draws[0].Count)
	assert.Equal(t, 1, rec.Count("DrawArrays(0, 18)"))
}

func TestInstancedPrimitive(t *testing.T) {
	ctx, rec := newTestContext(t)
	caps := scene.Capabilities{Indexed: true, Instanced: true}
	models := grid(3)
	p, err := NewPrimitive(ctx, hexagon(t, caps), caps, models)
	require.NoError(t, err)
	assert.Equal(t, 3, p.InstanceCount())

	va := rec.VertexArrays[p.Buffer().vao]
	for i := 0; i < 4; i++ {
		slot := uint32(scene.InstanceSlotFirst + i)
		a := va.Attribs[slot]
		require.NotNil(t, a, "slot %d", slot)
		assert.True(t, a.Enabled)
		assert.Equal(t, int32(4), a.Components)
		assert.Equal(t, int32(64), a.Stride)
		assert.Equal(t, i*16, a.Offset)
		assert.Equal(t, uint32(1), a.Divisor)
		assert.Equal(t, p.instanceVBO, a.Buffer)
	}
	floats := rec.Buffers[p.instanceVBO].Floats
	require.Len(t, floats, 3*16)
	assert.Equal(t, models[2][:], floats[32:48])

	models[0] = mgl32.Scale3D(9, 9, 9)
	assert.Equal(t, mgl32.Ident4(), p.instances[0], "instances must be copied")

	p.Draw()
	require.Len(t, rec.Draws, 1)
	assert.True(t, rec.Draws[0].Indexed)
	assert.Equal(t, int32(3), rec.Draws[0].Instances)
	assert.Equal(t, int32(18), rec.Draws[0].Count)

	require.NoError(t, p.SetInstances(grid(5)))
	assert.Equal(t, 5, p.InstanceCount())
	assert.Len(t, rec.Buffers[p.instanceVBO].Floats, 5*16)

	require.NoError(t, p.SetInstances(nil))
	p.Draw()
	assert.Len(t, rec.Draws, 1, "no instances, no draw")
}

func TestInstancedArraysPrimitive(t *testing.T) {
	ctx, rec := newTestContext(t)
	caps := scene.Capabilities{Instanced: true}
	p, err := NewPrimitive(ctx, hexagon(t, caps), caps, grid(2))
	require.NoError(t, err)

	p.Draw()
	require.Len(t, rec.Draws, 1)
	assert.False(t, rec.Draws[0].Indexed)
	assert.Equal(t, int32(18), rec.Draws[0].Count)
	assert.Equal(t, int32(2), rec.Draws[0].Instances)
}

func TestPrimitiveCapabilityErrors(t *testing.T) {
	ctx, rec := newTestContext(t)
	indexed := hexagon(t, scene.Capabilities{Indexed: true})
	flat := hexagon(t, scene.Capabilities{})

	_, err := NewPrimitive(ctx, flat, scene.Capabilities{Indexed: true}, nil)
	assert.Error(t, err)
	_, err = NewPrimitive(ctx, indexed, scene.Capabilities{}, nil)
	assert.Error(t, err)
	_, err = NewPrimitive(ctx, flat, scene.Capabilities{TangentBasis: true, Instanced: true}, nil)
	assert.ErrorIs(t, err, scene.ErrCapabilityConflict)

	clash := flat
	clash.Layout = append(scene.VertexLayout{}, flat.Layout...)
	clash.Layout = append(clash.Layout, scene.Attribute{Name: "color", Slot: 3, Components: 3})
	clash.Vertices = make([]float32, 18*clash.Layout.Floats())
	_, err = NewPrimitive(ctx, clash, scene.Capabilities{Instanced: true}, grid(1))
	assert.ErrorIs(t, err, scene.ErrInvalidLayout)

	p, err := NewPrimitive(ctx, flat, scene.Capabilities{}, nil)
	require.NoError(t, err)
	assert.Error(t, p.SetInstances(grid(1)))

	p.Release()
	assert.Zero(t, rec.LiveObjects())
}

func TestPrimitiveBindsTextures(t *testing.T) {
	ctx, rec := newTestContext(t)
	caps := scene.Capabilities{TangentBasis: true}
	p, err := NewPrimitive(ctx, hexagon(t, caps), caps, nil)
	require.NoError(t, err)
	diffuse, err := NewTextureFromImage(ctx, solidImage(3, 2, 2), TextureOptions{})
	require.NoError(t, err)
	p.Textures = []*Texture{diffuse, nil}

	rec.BoundTextures[1] = 77
	p.Draw()
	require.Len(t, rec.Draws, 1)
	assert.Equal(t, diffuse.ID(), rec.Draws[0].Textures[0])
	assert.Equal(t, gpu.TextureID(0), rec.Draws[0].Textures[1])
}

func TestPrimitiveReleaseOnce(t *testing.T) {
	ctx, rec := newTestContext(t)
	caps := scene.Capabilities{Indexed: true, Instanced: true}
	p, err := NewPrimitive(ctx, hexagon(t, caps), caps, grid(4))
	require.NoError(t, err)
	tex, err := NewTextureFromImage(ctx, solidImage(4, 1, 1), TextureOptions{})
	require.NoError(t, err)
	p.Textures = []*Texture{tex}

	p.Release()
	p.Release()
	assert.Equal(t, 3, rec.Count("DeleteBuffer"))
	assert.Equal(t, 1, rec.Count("DeleteVertexArray"))
	assert.Equal(t, 1, rec.LiveObjects(), "shared texture outlives the primitive")
	assert.ErrorIs(t, p.SetInstances(grid(1)), ErrReleased)

	p.Draw()
	assert.Empty(t, rec.Draws)
}
