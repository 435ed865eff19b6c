package scene

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF opens a .glb or .gltf file and flattens every mesh primitive
// reachable from the default scene into model space. Base color, normal and
// metallic-roughness textures map to the diffuse, normal and specular kinds.
// Tangents are computed from the UV mapping.
func LoadGLTF(path string) (*ModelData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	l := &gltfLoader{doc: doc, path: path, dir: filepath.Dir(path)}
	l.loadTextures()

	model := &ModelData{Path: path}
	for _, root := range l.roots() {
		l.walk(model, root, mgl32.Ident4())
	}
	if len(model.Meshes) == 0 {
		return nil, fmt.Errorf("gltf %q: no drawable meshes", path)
	}
	return model, nil
}

type gltfLoader struct {
	doc  *gltf.Document
	path string
	dir  string
	// refs[i] is the image behind doc.Textures[i]; nil when unusable.
	refs []*TextureRef
}

func (l *gltfLoader) loadTextures() {
	l.refs = make([]*TextureRef, len(l.doc.Textures))
	for i, gt := range l.doc.Textures {
		if gt.Source == nil || *gt.Source >= len(l.doc.Images) {
			continue
		}
		img := l.doc.Images[*gt.Source]
		key := fmt.Sprintf("%s#image%d", l.path, *gt.Source)

		var raw []byte
		var err error
		switch {
		case img.BufferView != nil:
			raw, err = modeler.ReadBufferView(l.doc, l.doc.BufferViews[*img.BufferView])
		case img.IsEmbeddedResource():
			raw, err = img.MarshalData()
		case img.URI != "":
			l.refs[i] = &TextureRef{Path: filepath.Join(l.dir, img.URI)}
			continue
		default:
			continue
		}
		if err != nil {
			continue
		}
		data, err := DecodeImage(bytes.NewReader(raw), false)
		if err != nil {
			continue
		}
		l.refs[i] = &TextureRef{Path: key, Image: data}
	}
}

func (l *gltfLoader) texture(kind string, index int) (TextureRef, bool) {
	if index < 0 || index >= len(l.refs) || l.refs[index] == nil {
		return TextureRef{}, false
	}
	ref := *l.refs[index]
	ref.Kind = kind
	return ref, true
}

func (l *gltfLoader) materialTextures(index *int) []TextureRef {
	if index == nil || *index >= len(l.doc.Materials) {
		return nil
	}
	gm := l.doc.Materials[*index]
	var refs []TextureRef
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorTexture != nil {
			if r, ok := l.texture(TextureDiffuse, pbr.BaseColorTexture.Index); ok {
				refs = append(refs, r)
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			if r, ok := l.texture(TextureSpecular, pbr.MetallicRoughnessTexture.Index); ok {
				refs = append(refs, r)
			}
		}
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		if r, ok := l.texture(TextureNormal, *gm.NormalTexture.Index); ok {
			refs = append(refs, r)
		}
	}
	return refs
}

// roots returns the default scene's root nodes, or every parentless node
// when the file names no scene.
func (l *gltfLoader) roots() []int {
	doc := l.doc
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (l *gltfLoader) walk(model *ModelData, index int, parent mgl32.Mat4) {
	if index < 0 || index >= len(l.doc.Nodes) {
		return
	}
	gn := l.doc.Nodes[index]
	world := parent.Mul4(localTransform(gn))

	if gn.Mesh != nil && *gn.Mesh < len(l.doc.Meshes) {
		gm := l.doc.Meshes[*gn.Mesh]
		for pi, prim := range gm.Primitives {
			name := fmt.Sprintf("%s_p%d", gm.Name, pi)
			if gm.Name == "" {
				name = fmt.Sprintf("node%d_p%d", index, pi)
			}
			m, err := l.primitive(name, prim, world)
			if err != nil {
				continue
			}
			m.Textures = l.materialTextures(prim.Material)
			model.Meshes = append(model.Meshes, m)
		}
	}
	for _, c := range gn.Children {
		l.walk(model, c, world)
	}
}

func localTransform(gn *gltf.Node) mgl32.Mat4 {
	if gn.Matrix != gltf.DefaultMatrix && gn.Matrix != [16]float64{} {
		var m mgl32.Mat4
		for i, v := range gn.Matrix {
			m[i] = float32(v)
		}
		return m
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // x, y, z, w
	s := gn.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func (l *gltfLoader) primitive(name string, prim *gltf.Primitive, world mgl32.Mat4) (MeshData, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return MeshData{}, fmt.Errorf("%s: unsupported primitive mode %v", name, prim.Mode)
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return MeshData{}, fmt.Errorf("%s: no POSITION attribute", name)
	}
	positions, err := modeler.ReadPosition(l.doc, l.doc.Accessors[posIdx], nil)
	if err != nil {
		return MeshData{}, fmt.Errorf("%s: positions: %w", name, err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(l.doc, l.doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(l.doc, l.doc.Accessors[idx], nil)
	}

	normalMat := world.Mat3().Inv().Transpose()
	verts := make([]Vertex, len(positions))
	for i, p := range positions {
		v := Vertex{
			Position: mgl32.TransformCoordinate(mgl32.Vec3{p[0], p[1], p[2]}, world),
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			n := normalMat.Mul3x1(mgl32.Vec3(normals[i]))
			if n.Len() > 0 {
				v.Normal = n.Normalize()
			}
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(l.doc, l.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return MeshData{}, fmt.Errorf("%s: indices: %w", name, err)
		}
	} else {
		indices = make([]uint32, len(verts))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	m := NewMeshData(name, verts, indices)
	ComputeTangents(&m)
	return m, nil
}
