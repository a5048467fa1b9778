package math

// Mat3 is a 3x3 matrix in column-major order.
// Layout: [m0 m3 m6]
//
//	[m1 m4 m7]
//	[m2 m5 m8]
type Mat3 [9]float32

// Mat3Identity returns a 3x3 identity matrix.
func Mat3Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Mat3 returns the upper-left 3x3 linear part of the matrix.
func (m Mat4) Mat3() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Determinant returns the determinant of the matrix.
func (m Mat3) Determinant() float32 {
	return m[0]*(m[4]*m[8]-m[7]*m[5]) -
		m[3]*(m[1]*m[8]-m[7]*m[2]) +
		m[6]*(m[1]*m[5]-m[4]*m[2])
}

// Transpose returns the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Inverse returns the inverse of the matrix.
// Returns identity if the matrix is singular.
func (m Mat3) Inverse() Mat3 {
	det := m.Determinant()
	if det == 0 {
		return Mat3Identity()
	}
	inv := 1 / det

	return Mat3{
		(m[4]*m[8] - m[7]*m[5]) * inv,
		-(m[1]*m[8] - m[7]*m[2]) * inv,
		(m[1]*m[5] - m[4]*m[2]) * inv,
		-(m[3]*m[8] - m[6]*m[5]) * inv,
		(m[0]*m[8] - m[6]*m[2]) * inv,
		-(m[0]*m[5] - m[3]*m[2]) * inv,
		(m[3]*m[7] - m[6]*m[4]) * inv,
		-(m[0]*m[7] - m[6]*m[1]) * inv,
		(m[0]*m[4] - m[3]*m[1]) * inv,
	}
}

// MulVec3 multiplies the matrix by a column vector.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		Y: m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		Z: m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// NormalMatrix returns the inverse-transpose of the upper-left 3x3 part.
// Directions transformed by it stay perpendicular to surfaces under
// non-uniform scale.
func (m Mat4) NormalMatrix() Mat3 {
	return m.Mat3().Inverse().Transpose()
}

// WithoutTranslation returns the matrix with its translation column cleared.
func (m Mat4) WithoutTranslation() Mat4 {
	m[12], m[13], m[14] = 0, 0, 0
	return m
}
