package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestSolveTangentBasisRoundTrip(t *testing.T) {
	e1 := mgl32.Vec3{1, 0.5, -0.25}
	e2 := mgl32.Vec3{0.2, 1.5, 0.75}
	duv1 := mgl32.Vec2{0.8, 0.1}
	duv2 := mgl32.Vec2{-0.3, 0.9}

	tan, bit, ok := SolveTangentBasis(e1, e2, duv1, duv2)
	assert.True(t, ok)

	got1 := tan.Mul(duv1[0]).Add(bit.Mul(duv1[1]))
	got2 := tan.Mul(duv2[0]).Add(bit.Mul(duv2[1]))
	assert.True(t, got1.ApproxEqualThreshold(e1, 1e-5), "e1: expected %v, got %v", e1, got1)
	assert.True(t, got2.ApproxEqualThreshold(e2, 1e-5), "e2: expected %v, got %v", e2, got2)
}

func TestSolveTangentBasisAxisAligned(t *testing.T) {
	tan, bit, ok := SolveTangentBasis(
		mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0},
		mgl32.Vec2{1, 0}, mgl32.Vec2{0, 1})
	assert.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, tan)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, bit)
}

func TestSolveTangentBasisDegenerate(t *testing.T) {
	tan, bit, ok := SolveTangentBasis(
		mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0},
		mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{1, 1})
	assert.False(t, ok)
	assert.Equal(t, mgl32.Vec3{}, tan)
	assert.Equal(t, mgl32.Vec3{}, bit)
}

func TestComputeTangentsQuad(t *testing.T) {
	n := mgl32.Vec3{0, 0, 1}
	m := NewMeshData("quad", []Vertex{
		{Position: mgl32.Vec3{-1, -1, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, -1, 0}, Normal: n, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{1, 1, 0}, Normal: n, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-1, 1, 0}, Normal: n, UV: mgl32.Vec2{0, 1}},
	}, []uint32{0, 1, 2, 2, 3, 0})

	ComputeTangents(&m)

	for i, v := range m.Vertices {
		assert.True(t, v.Tangent.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5), "vertex %d tangent %v", i, v.Tangent)
		assert.True(t, v.Bitangent.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5), "vertex %d bitangent %v", i, v.Bitangent)
	}
	assert.Equal(t, AABB{Min: mgl32.Vec3{-1, -1, 0}, Max: mgl32.Vec3{1, 1, 0}}, m.Bounds)
	assert.Len(t, m.Interleave(), 4*14)
}

func TestComputeTangentsDegenerateUVFallsBack(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	m := NewMeshData("flat", []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: n},
		{Position: mgl32.Vec3{0, 0, 1}, Normal: n},
	}, nil)

	ComputeTangents(&m)

	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Tangent.Len(), 1e-5)
		assert.InDelta(t, 0, v.Tangent.Dot(n), 1e-5)
		assert.InDelta(t, 0, v.Bitangent.Dot(n), 1e-5)
	}
}
