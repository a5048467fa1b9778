package importer

import "github.com/MrShreyas/car/pkg/math"

// postProcess runs the selected steps on every mesh: UV flip first, then
// normal generation, then tangent frames from the final UVs.
func postProcess(s *Scene, opts Options) {
	for _, m := range s.Meshes {
		if opts.FlipUVs {
			FlipUVs(m)
		}
		if opts.GenSmoothNormals && !m.HasNormals() {
			GenSmoothNormals(m)
		}
		if opts.CalcTangentSpace && !m.HasTangents() && m.HasNormals() && m.HasTexCoords() {
			CalcTangents(m)
		}
	}
}

// FlipUVs mirrors texture coordinates vertically (v = 1 - v).
func FlipUVs(m *Mesh) {
	for i := range m.TexCoords {
		m.TexCoords[i][1] = 1 - m.TexCoords[i][1]
	}
}

// GenSmoothNormals computes area-weighted vertex normals. Vertices at the
// same position share a normal so UV seams stay smooth.
func GenSmoothNormals(m *Mesh) {
	const epsilon float32 = 1e-4

	keyOf := func(p [3]float32) [3]int32 {
		return [3]int32{int32(p[0] / epsilon), int32(p[1] / epsilon), int32(p[2] / epsilon)}
	}

	accum := make(map[[3]int32]math.Vec3)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		v0 := math.Vec3FromArray(m.Positions[i0])
		v1 := math.Vec3FromArray(m.Positions[i1])
		v2 := math.Vec3FromArray(m.Positions[i2])
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		for _, idx := range [3]uint32{i0, i1, i2} {
			k := keyOf(m.Positions[idx])
			accum[k] = accum[k].Add(n)
		}
	}

	m.Normals = make([][3]float32, len(m.Positions))
	for i, p := range m.Positions {
		n := accum[keyOf(p)]
		if n.Length() > 0 {
			m.Normals[i] = n.Normalize().Array()
		}
	}
}

// CalcTangents builds per-vertex tangent and bitangent vectors from UV
// gradients. Tangents are Gram-Schmidt orthogonalized against the normal.
// Vertices whose triangles all have degenerate UVs get an arbitrary
// tangent perpendicular to the normal.
func CalcTangents(m *Mesh) {
	tangents := make([]math.Vec3, len(m.Positions))
	bitangents := make([]math.Vec3, len(m.Positions))

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		p0 := math.Vec3FromArray(m.Positions[i0])
		e1 := math.Vec3FromArray(m.Positions[i1]).Sub(p0)
		e2 := math.Vec3FromArray(m.Positions[i2]).Sub(p0)

		uv0, uv1, uv2 := m.TexCoords[i0], m.TexCoords[i1], m.TexCoords[i2]
		du1, dv1 := uv1[0]-uv0[0], uv1[1]-uv0[1]
		du2, dv2 := uv2[0]-uv0[0], uv2[1]-uv0[1]

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			continue
		}
		r := 1 / denom
		t := e1.Scale(dv2 * r).Sub(e2.Scale(dv1 * r))
		b := e2.Scale(du1 * r).Sub(e1.Scale(du2 * r))

		for _, idx := range [3]uint32{i0, i1, i2} {
			tangents[idx] = tangents[idx].Add(t)
			bitangents[idx] = bitangents[idx].Add(b)
		}
	}

	m.Tangents = make([][3]float32, len(m.Positions))
	m.Bitangents = make([][3]float32, len(m.Positions))
	for i := range m.Positions {
		n := math.Vec3FromArray(m.Normals[i])
		t := tangents[i].Sub(n.Scale(n.Dot(tangents[i])))
		if t.Dot(t) < 1e-8 {
			if abs32(n.X) < 0.9 {
				t = math.Vec3{X: 1}.Sub(n.Scale(n.X))
			} else {
				t = math.Vec3{Y: 1}.Sub(n.Scale(n.Y))
			}
		}
		t = t.Normalize()

		b := bitangents[i]
		if b.Dot(b) < 1e-8 {
			b = n.Cross(t)
		}
		m.Tangents[i] = t.Array()
		m.Bitangents[i] = b.Normalize().Array()
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
