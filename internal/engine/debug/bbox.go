package debug

import "github.com/MrShreyas/car/pkg/math"

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// boxEdges lists corner index pairs; corner bit 0 picks max X, bit 1 max Y,
// bit 2 max Z.
var boxEdges = [12][2]int{
	// Bottom face
	{0, 1}, {1, 5}, {5, 4}, {4, 0},
	// Top face
	{2, 3}, {3, 7}, {7, 6}, {6, 2},
	// Vertical edges
	{0, 2}, {1, 3}, {5, 7}, {4, 6},
}

// BoundsWireframe returns line vertices [x, y, z] for the box min..max
// transformed by world, 24 vertices in all.
func BoundsWireframe(minB, maxB math.Vec3, world math.Mat4) []float32 {
	var corners [8][3]float32
	for i := range corners {
		c := minB
		if i&1 != 0 {
			c.X = maxB.X
		}
		if i&2 != 0 {
			c.Y = maxB.Y
		}
		if i&4 != 0 {
			c.Z = maxB.Z
		}
		corners[i] = world.TransformPoint(c.Array())
	}

	out := make([]float32, 0, BBoxWireframeVertexCount*3)
	for _, e := range boxEdges {
		a, b := corners[e[0]], corners[e[1]]
		out = append(out, a[0], a[1], a[2], b[0], b[1], b[2])
	}
	return out
}
