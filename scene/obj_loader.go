package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// objCorner is one face corner as 0-based position, UV and normal indices;
// -1 means absent.
type objCorner struct{ v, vt, vn int }

type objGroup struct {
	name     string
	material string
	corners  []objCorner // three per triangle
}

// LoadOBJ parses a Wavefront .obj file into one mesh per object or group.
// Materials from mtllib files contribute their texture maps; colors are
// ignored. Missing normals are generated from the faces.
func LoadOBJ(path string) (*ModelData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	model, err := ParseOBJ(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}
	model.Path = path
	return model, nil
}

// ParseOBJ reads OBJ data from r. dir resolves mtllib and texture paths.
func ParseOBJ(r io.Reader, dir string) (*ModelData, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		groups    []objGroup
	)
	materials := map[string][]TextureRef{}
	cur := &objGroup{name: "default"}

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v", "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if fields[0] == "v" {
				positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})
			} else {
				normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})
			}
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], v[1]})
		case "o", "g":
			if len(cur.corners) > 0 {
				groups = append(groups, *cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objGroup{name: name, material: cur.material}
		case "usemtl":
			if len(fields) > 1 {
				cur.material = fields[1]
			}
		case "mtllib":
			for _, lib := range fields[1:] {
				// A missing library leaves its materials untextured.
				if loaded, err := loadMTL(filepath.Join(dir, lib), dir); err == nil {
					for k, v := range loaded {
						materials[k] = v
					}
				}
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face with %d vertices", line, len(fields)-1)
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				corners = append(corners, c)
			}
			for i := 1; i+1 < len(corners); i++ {
				cur.corners = append(cur.corners, corners[0], corners[i], corners[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(cur.corners) > 0 {
		groups = append(groups, *cur)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no faces")
	}

	model := &ModelData{}
	for _, g := range groups {
		mesh := buildOBJMesh(g, positions, normals, uvs)
		mesh.Textures = materials[g.material]
		model.Meshes = append(model.Meshes, mesh)
	}
	return model, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices
// count back from the end of the lists read so far.
func parseCorner(tok string, nv, nvt, nvn int) (objCorner, error) {
	c := objCorner{v: -1, vt: -1, vn: -1}
	parts := strings.Split(tok, "/")
	dst := []*int{&c.v, &c.vt, &c.vn}
	sizes := []int{nv, nvt, nvn}
	for i, p := range parts {
		if i > 2 {
			break
		}
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return c, fmt.Errorf("face vertex %q: %w", tok, err)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n += sizes[i]
		default:
			return c, fmt.Errorf("face vertex %q: zero index", tok)
		}
		if n < 0 || n >= sizes[i] {
			return c, fmt.Errorf("face vertex %q: index out of range", tok)
		}
		*dst[i] = n
	}
	if c.v < 0 {
		return c, fmt.Errorf("face vertex %q: no position", tok)
	}
	return c, nil
}

// buildOBJMesh de-duplicates the group's corners into an indexed mesh.
func buildOBJMesh(g objGroup, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) MeshData {
	seen := map[objCorner]uint32{}
	var vertices []Vertex
	indices := make([]uint32, 0, len(g.corners))
	missingNormals := false

	for _, c := range g.corners {
		idx, ok := seen[c]
		if !ok {
			v := Vertex{Position: positions[c.v]}
			if c.vt >= 0 {
				v.UV = uvs[c.vt]
			}
			if c.vn >= 0 {
				v.Normal = normals[c.vn]
			} else {
				missingNormals = true
			}
			idx = uint32(len(vertices))
			vertices = append(vertices, v)
			seen[c] = idx
		}
		indices = append(indices, idx)
	}

	if missingNormals {
		faceNormals(vertices, indices)
	}
	m := NewMeshData(g.name, vertices, indices)
	ComputeTangents(&m)
	return m
}

// faceNormals sets every vertex normal to the area-weighted sum of its
// triangles' normals.
func faceNormals(vertices []Vertex, indices []uint32) {
	sum := make([]mgl32.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		sum[i0] = sum[i0].Add(n)
		sum[i1] = sum[i1].Add(n)
		sum[i2] = sum[i2].Add(n)
	}
	for i := range vertices {
		if sum[i].Len() > 1e-12 {
			vertices[i].Normal = sum[i].Normalize()
		} else {
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
		}
	}
}

// mtlKinds maps MTL texture statements to texture kinds. map_Bump and bump
// are treated as normal maps.
var mtlKinds = map[string]string{
	"map_Kd":   TextureDiffuse,
	"map_Ks":   TextureSpecular,
	"map_Bump": TextureNormal,
	"map_bump": TextureNormal,
	"bump":     TextureNormal,
	"norm":     TextureNormal,
	"disp":     TextureHeight,
	"map_disp": TextureHeight,
}

// loadMTL returns the texture references of every material in the file.
func loadMTL(path, dir string) (map[string][]TextureRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string][]TextureRef{}
	cur := ""
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == "newmtl" {
			cur = fields[1]
			mats[cur] = nil
			continue
		}
		kind, ok := mtlKinds[fields[0]]
		if !ok || cur == "" {
			continue
		}
		// Options such as -bm 0.5 precede the file name.
		file := fields[len(fields)-1]
		mats[cur] = append(mats[cur], TextureRef{Kind: kind, Path: filepath.Join(dir, file)})
	}
	return mats, scanner.Err()
}

// LoadModelFile imports a model by file extension: .obj, .gltf or .glb.
func LoadModelFile(path string) (*ModelData, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	}
	return nil, fmt.Errorf("unsupported model format %q", path)
}
