package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"hexview/internal/gpu"
	"hexview/internal/gpu/gputest"
	"hexview/scene"
)

func newTestContext(t *testing.T) (*Context, *gputest.Recorder) {
	t.Helper()
	rec := gputest.New()
	return NewContext(rec, zaptest.NewLogger(t)), rec
}

func hexagon(t *testing.T, caps scene.Capabilities) scene.Geometry {
	t.Helper()
	g, err := scene.BuildHexagon(scene.DefaultHexagonPositions, scene.DefaultHexagonUVs, caps)
	require.NoError(t, err)
	return g
}

func TestNewBufferConfiguresLayout(t *testing.T) {
	ctx, rec := newTestContext(t)
	g := hexagon(t, scene.Capabilities{Indexed: true})

	b, err := NewBuffer(ctx, g.Vertices, g.Indices, g.Layout)
	require.NoError(t, err)

	assert.Equal(t, 7, b.VertexCount())
	assert.Equal(t, 18, b.IndexCount())
	assert.True(t, b.Indexed())
	assert.Equal(t, gpu.VertexArrayID(0), rec.BoundVertexArray, "vertex array left bound")

	va := rec.VertexArrays[b.vao]
	require.NotNil(t, va)
	assert.Equal(t, b.ebo, va.ElementArray)
	assert.Equal(t, scene.HexagonFanIndices, rec.Buffers[b.ebo].Indices)
	assert.Equal(t, g.Vertices, rec.Buffers[b.vbo].Floats)

	want := map[uint32]gputest.Attrib{
		0: {Slot: 0, Components: 3, Stride: 32, Offset: 0, Enabled: true, Buffer: b.vbo},
		1: {Slot: 1, Components: 3, Stride: 32, Offset: 12, Enabled: true, Buffer: b.vbo},
		2: {Slot: 2, Components: 2, Stride: 32, Offset: 24, Enabled: true, Buffer: b.vbo},
	}
	require.Len(t, va.Attribs, len(want))
	for slot, w := range want {
		assert.Equal(t, w, *va.Attribs[slot], "slot %d", slot)
	}
}

func TestNewBufferWithoutIndices(t *testing.T) {
	ctx, rec := newTestContext(t)
	g := hexagon(t, scene.Capabilities{TangentBasis: true})

	b, err := NewBuffer(ctx, g.Vertices, nil, g.Layout)
	require.NoError(t, err)
	assert.False(t, b.Indexed())
	assert.Equal(t, 18, b.VertexCount())
	assert.Equal(t, gpu.BufferID(0), b.ebo)
	assert.Len(t, rec.VertexArrays[b.vao].Attribs, 5)
	assert.Equal(t, int32(56), rec.VertexArrays[b.vao].Attribs[4].Stride)
	assert.Equal(t, 44, rec.VertexArrays[b.vao].Attribs[4].Offset)

	b.Draw()
	require.Len(t, rec.Draws, 1)
	assert.False(t, rec.Draws[0].Indexed)
	assert.Equal(t, int32(18), rec.Draws[0].Count)
	assert.Equal(t, b.vao, rec.Draws[0].VertexArray)
}

func TestNewBufferRejectsBadInput(t *testing.T) {
	ctx, rec := newTestContext(t)

	_, err := NewBuffer(ctx, make([]float32, 10), nil, scene.LayoutPositionNormalUV)
	assert.Error(t, err, "partial vertex")

	_, err = NewBuffer(ctx, nil, nil, scene.LayoutPositionNormalUV)
	assert.Error(t, err, "empty")

	_, err = NewBuffer(ctx, make([]float32, 8), []uint32{0, 1, 0}, scene.LayoutPositionNormalUV)
	assert.Error(t, err, "index out of range")

	_, err = NewBuffer(ctx, make([]float32, 8), nil, scene.VertexLayout{})
	assert.ErrorIs(t, err, scene.ErrInvalidLayout)

	assert.Zero(t, rec.LiveObjects(), "rejected input must not allocate")
}

func TestBufferBindIsScoped(t *testing.T) {
	ctx, rec := newTestContext(t)
	b, err := NewBuffer(ctx, make([]float32, 3*3), nil, scene.LayoutPosition)
	require.NoError(t, err)

	unbind := b.Bind()
	assert.Equal(t, b.vao, rec.BoundVertexArray)
	unbind()
	assert.Equal(t, gpu.VertexArrayID(0), rec.BoundVertexArray)
}

func TestBufferReleaseOnce(t *testing.T) {
	ctx, rec := newTestContext(t)
	g := hexagon(t, scene.Capabilities{Indexed: true})
	b, err := NewBuffer(ctx, g.Vertices, g.Indices, g.Layout)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.LiveObjects())

	b.Release()
	b.Release()

	assert.True(t, b.Released())
	assert.Zero(t, rec.LiveObjects())
	assert.Equal(t, 1, rec.Count("DeleteVertexArray"))
	assert.Equal(t, 2, rec.Count("DeleteBuffer"))

	b.Draw()
	assert.Empty(t, rec.Draws, "released buffer must not draw")
}
