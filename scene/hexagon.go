package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrCapabilityConflict is returned for capability sets that cannot be
// satisfied together.
var ErrCapabilityConflict = errors.New("conflicting primitive capabilities")

// Capabilities select how a primitive's geometry is laid out and drawn.
type Capabilities struct {
	// Indexed draws the shared-vertex fan through an element buffer.
	Indexed bool
	// TangentBasis expands every triangle and adds tangent and bitangent
	// attributes (slots 3 and 4) for normal and parallax mapping.
	TangentBasis bool
	// Instanced draws many copies with a per-instance model matrix in
	// slots 3 to 6.
	Instanced bool
}

func (c Capabilities) Validate() error {
	if c.TangentBasis && c.Instanced {
		return fmt.Errorf("%w: tangent basis and instancing both use attribute slots 3 and 4", ErrCapabilityConflict)
	}
	if c.TangentBasis && c.Indexed {
		return fmt.Errorf("%w: tangent basis is per triangle and cannot share vertices", ErrCapabilityConflict)
	}
	return nil
}

// Layout returns the vertex layout geometry built with c uses.
func (c Capabilities) Layout() VertexLayout {
	if c.TangentBasis {
		return LayoutTangentSpace
	}
	return LayoutPositionNormalUV
}

// Geometry is interleaved vertex data ready for upload.
type Geometry struct {
	Vertices []float32
	Indices  []uint32
	Layout   VertexLayout
}

// VertexCount is the number of vertices in Vertices.
func (g Geometry) VertexCount() int {
	if n := g.Layout.Floats(); n > 0 {
		return len(g.Vertices) / n
	}
	return 0
}

// Unit hexagon in the XY plane: the center followed by the six ring
// vertices counter-clockwise.
var (
	DefaultHexagonPositions = []float32{
		0, 0, 0,
		0.5, 0, 0,
		0.25, 0.5, 0,
		-0.25, 0.5, 0,
		-0.5, 0, 0,
		-0.25, -0.5, 0,
		0.25, -0.5, 0,
	}
	DefaultHexagonUVs = []float32{
		0.5, 0.5,
		1, 0.5,
		1, 1,
		0, 1,
		0, 0.5,
		0, 0,
		1, 0,
	}
)

// HexagonFanIndices triangulates the center-plus-ring vertex order.
var HexagonFanIndices = []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4, 0, 4, 5, 0, 5, 6, 0, 6, 1}

const hexagonVertices = 7

// BuildHexagon interleaves a hexagon given as 7 positions (center first) and
// 7 texture coordinates. With Indexed it produces the 7-vertex fan and
// HexagonFanIndices; otherwise the 18 fan vertices are written out, with
// tangent and bitangent appended per triangle when TangentBasis is set.
func BuildHexagon(positions, uvs []float32, caps Capabilities) (Geometry, error) {
	if err := caps.Validate(); err != nil {
		return Geometry{}, err
	}
	if len(positions) != hexagonVertices*3 {
		return Geometry{}, fmt.Errorf("hexagon needs %d position floats, got %d", hexagonVertices*3, len(positions))
	}
	if len(uvs) != hexagonVertices*2 {
		return Geometry{}, fmt.Errorf("hexagon needs %d uv floats, got %d", hexagonVertices*2, len(uvs))
	}

	pos := make([]mgl32.Vec3, hexagonVertices)
	uv := make([]mgl32.Vec2, hexagonVertices)
	for i := range pos {
		pos[i] = mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
		uv[i] = mgl32.Vec2{uvs[i*2], uvs[i*2+1]}
	}
	normal := ringNormal(pos[1:])

	layout := caps.Layout()
	if caps.Indexed {
		verts := make([]float32, 0, hexagonVertices*layout.Floats())
		for i := range pos {
			verts = appendVertex(verts, pos[i], normal, uv[i])
		}
		return Geometry{
			Vertices: verts,
			Indices:  append([]uint32(nil), HexagonFanIndices...),
			Layout:   layout,
		}, nil
	}

	verts := make([]float32, 0, len(HexagonFanIndices)*layout.Floats())
	for tri := 0; tri < len(HexagonFanIndices); tri += 3 {
		i0, i1, i2 := HexagonFanIndices[tri], HexagonFanIndices[tri+1], HexagonFanIndices[tri+2]
		e1, e2 := pos[i1].Sub(pos[i0]), pos[i2].Sub(pos[i0])
		n := normal
		if fn := e1.Cross(e2); fn.Len() > 1e-8 {
			n = fn.Normalize()
		}
		var t, b mgl32.Vec3
		if caps.TangentBasis {
			var ok bool
			t, b, ok = SolveTangentBasis(e1, e2, uv[i1].Sub(uv[i0]), uv[i2].Sub(uv[i0]))
			if !ok {
				t, b = orthonormalPair(n)
			}
		}
		for _, i := range [3]uint32{i0, i1, i2} {
			verts = appendVertex(verts, pos[i], n, uv[i])
			if caps.TangentBasis {
				verts = append(verts, t[0], t[1], t[2], b[0], b[1], b[2])
			}
		}
	}
	return Geometry{Vertices: verts, Layout: layout}, nil
}

func appendVertex(dst []float32, p, n mgl32.Vec3, uv mgl32.Vec2) []float32 {
	return append(dst, p[0], p[1], p[2], n[0], n[1], n[2], uv[0], uv[1])
}

// ringNormal is the Newell normal of a closed polygon, +Z when degenerate.
func ringNormal(ring []mgl32.Vec3) mgl32.Vec3 {
	var n mgl32.Vec3
	for i := range ring {
		a, b := ring[i], ring[(i+1)%len(ring)]
		n[0] += (a[1] - b[1]) * (a[2] + b[2])
		n[1] += (a[2] - b[2]) * (a[0] + b[0])
		n[2] += (a[0] - b[0]) * (a[1] + b[1])
	}
	if n.Len() < 1e-8 {
		return mgl32.Vec3{0, 0, 1}
	}
	return n.Normalize()
}
