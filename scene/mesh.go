package scene

import "github.com/go-gl/mathgl/mgl32"

// Vertex is the CPU-side form of one LayoutTangentSpace vertex.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	UV        mgl32.Vec2
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// Texture kinds. A mesh's sampler uniforms are named "texture_" + kind + N.
const (
	TextureDiffuse  = "diffuse"
	TextureSpecular = "specular"
	TextureNormal   = "normal"
	TextureHeight   = "height"
)

// TextureRef points a mesh at an image, either a file path or image data
// embedded in the model.
type TextureRef struct {
	Kind  string
	Path  string
	Image *ImageData
}

// Key identifies the referenced image for de-duplication.
func (r TextureRef) Key() string { return r.Path }

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

func (b AABB) Center() mgl32.Vec3 { return b.Min.Add(b.Max).Mul(0.5) }

func (b AABB) Extend(o AABB) AABB {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], o.Min[i])
		b.Max[i] = max(b.Max[i], o.Max[i])
	}
	return b
}

// MeshData is an indexed triangle mesh with its material textures.
type MeshData struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Textures []TextureRef
	Bounds   AABB
}

// NewMeshData builds a MeshData and computes its bounds.
func NewMeshData(name string, vertices []Vertex, indices []uint32) MeshData {
	m := MeshData{Name: name, Vertices: vertices, Indices: indices}
	if len(vertices) > 0 {
		m.Bounds = computeBounds(vertices)
	}
	return m
}

// Interleave flattens the vertices for LayoutTangentSpace.
func (m *MeshData) Interleave() []float32 {
	out := make([]float32, 0, len(m.Vertices)*LayoutTangentSpace.Floats())
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
			v.Tangent[0], v.Tangent[1], v.Tangent[2],
			v.Bitangent[0], v.Bitangent[1], v.Bitangent[2])
	}
	return out
}

func computeBounds(vertices []Vertex) AABB {
	b := AABB{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		b = b.Extend(AABB{Min: v.Position, Max: v.Position})
	}
	return b
}

// ModelData is every mesh of an imported model, flattened into model space.
type ModelData struct {
	Path   string
	Meshes []MeshData
}

// Bounds covers every mesh of the model.
func (m *ModelData) Bounds() AABB {
	if len(m.Meshes) == 0 {
		return AABB{}
	}
	b := m.Meshes[0].Bounds
	for _, mesh := range m.Meshes[1:] {
		b = b.Extend(mesh.Bounds)
	}
	return b
}
