package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SolveTangentBasis returns the tangent and bitangent of a triangle with
// position edges e1, e2 and matching UV deltas duv1, duv2, such that
// e = tangent*du + bitangent*dv for both edges. The vectors are not
// normalized. ok is false when the UV triangle has no area; both vectors
// are zero in that case.
func SolveTangentBasis(e1, e2 mgl32.Vec3, duv1, duv2 mgl32.Vec2) (tangent, bitangent mgl32.Vec3, ok bool) {
	det := duv1[0]*duv2[1] - duv2[0]*duv1[1]
	if math32.Abs(det) < 1e-12 {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	f := 1 / det
	tangent = e1.Mul(duv2[1]).Sub(e2.Mul(duv1[1])).Mul(f)
	bitangent = e2.Mul(duv1[0]).Sub(e1.Mul(duv2[0])).Mul(f)
	return tangent, bitangent, true
}

// orthonormalPair returns some unit tangent and bitangent perpendicular to n.
func orthonormalPair(n mgl32.Vec3) (t, b mgl32.Vec3) {
	if math32.Abs(n[0]) < 0.9 {
		t = mgl32.Vec3{1, 0, 0}.Sub(n.Mul(n[0]))
	} else {
		t = mgl32.Vec3{0, 1, 0}.Sub(n.Mul(n[1]))
	}
	t = t.Normalize()
	return t, n.Cross(t)
}

// ComputeTangents fills Tangent and Bitangent of every vertex from its
// triangles' UV mapping, then Gram-Schmidt orthonormalizes them against the
// vertex normal. Triangles with a degenerate UV area contribute nothing.
func ComputeTangents(m *MeshData) {
	for i := range m.Vertices {
		m.Vertices[i].Tangent = mgl32.Vec3{}
		m.Vertices[i].Bitangent = mgl32.Vec3{}
	}

	accum := func(i0, i1, i2 uint32) {
		v0, v1, v2 := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]
		t, b, ok := SolveTangentBasis(
			v1.Position.Sub(v0.Position), v2.Position.Sub(v0.Position),
			v1.UV.Sub(v0.UV), v2.UV.Sub(v0.UV))
		if !ok {
			return
		}
		for _, i := range [3]uint32{i0, i1, i2} {
			m.Vertices[i].Tangent = m.Vertices[i].Tangent.Add(t)
			m.Vertices[i].Bitangent = m.Vertices[i].Bitangent.Add(b)
		}
	}

	n := uint32(len(m.Vertices))
	if len(m.Indices) > 0 {
		for i := 0; i+2 < len(m.Indices); i += 3 {
			a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
			if a >= n || b >= n || c >= n {
				continue
			}
			accum(a, b, c)
		}
	} else {
		for i := uint32(0); i+2 < n; i += 3 {
			accum(i, i+1, i+2)
		}
	}

	for i := range m.Vertices {
		v := &m.Vertices[i]
		nrm := v.Normal
		// T = normalize(T - N*(N.T))
		t := v.Tangent.Sub(nrm.Mul(nrm.Dot(v.Tangent)))
		if t.Len() < 1e-4 {
			v.Tangent, v.Bitangent = orthonormalPair(nrm)
			continue
		}
		v.Tangent = t.Normalize()
		if v.Bitangent.Len() < 1e-4 {
			v.Bitangent = nrm.Cross(v.Tangent)
		}
		v.Bitangent = v.Bitangent.Normalize()
	}
}
