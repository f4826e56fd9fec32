package types

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// A 4x4 matrix stored in row-major order; element (row, col) lives at
// index row*4 + col. Points are treated as column vectors so that M.Mul4(N)
// applies N first.
type Mat4 f32.Mat4

// Create a 4x4 identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Create a 4x4 translation matrix.
func Translate4(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, v[0],
		0, 1, 0, v[1],
		0, 0, 1, v[2],
		0, 0, 0, 1,
	}
}

// Create a 4x4 scale matrix.
func Scale4(v Vec3) Mat4 {
	return Mat4{
		v[0], 0, 0, 0,
		0, v[1], 0, 0,
		0, 0, v[2], 0,
		0, 0, 0, 1,
	}
}

// Create a 4x4 matrix that rotates by angle radians around the X axis.
func RotateX4(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
}

// Build a row-major matrix from a slice of 16 values.
func Mat4FromSlice(values []float32) (Mat4, error) {
	if len(values) != 16 {
		return Mat4{}, fmt.Errorf("expected 16 matrix values; got %d", len(values))
	}
	var m Mat4
	copy(m[:], values)
	return m, nil
}

// Get matrix element at row r, column c.
func (m Mat4) At(r, c int) float32 {
	return m[r*4+c]
}

// Multiply two 4x4 matrices.
func (m Mat4) Mul4(m2 Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[r*4+k] * m2[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// Multiply matrix with a 4 component column vector.
func (m Mat4) Mul4x1(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*v[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]*v[3],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]*v[3],
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]*v[3],
	}
}

// Get the translation component of an affine transformation.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// Transpose matrix.
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m.At(r, c)
		}
	}
	return out
}

// Compare two matrices using an epsilon value.
func (m Mat4) ApproxEqual(m2 Mat4, eps float32) bool {
	for i := range m {
		if math32.Abs(m[i]-m2[i]) > eps {
			return false
		}
	}
	return true
}

func (m Mat4) String() string {
	rows := make([]string, 4)
	for r := 0; r < 4; r++ {
		rows[r] = fmt.Sprintf("[%v %v %v %v]", m[r*4], m[r*4+1], m[r*4+2], m[r*4+3])
	}
	return strings.Join(rows, "\n")
}

// Get the matrix that converts a Z-up, Y-forward frame into a Y-up,
// -Z-forward frame: (x, y, z) -> (x, z, -y).
func ZUpToYUp4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, -1, 0, 0,
		0, 0, 0, 1,
	}
}

// Get the inverse of ZUpToYUp4: (x, y, z) -> (x, -z, y).
func YUpToZUp4() Mat4 {
	return ZUpToYUp4().Transpose()
}

// Build a camera-to-world matrix for a camera at eye looking at target. The
// camera looks down its local -Z axis with +Y pointing up.
func LookAt4(eye, target, up Vec3) Mat4 {
	fwd := target.Sub(eye).Normalize()
	right := fwd.Cross(up).Normalize()
	camUp := right.Cross(fwd)
	return Mat4{
		right[0], camUp[0], -fwd[0], eye[0],
		right[1], camUp[1], -fwd[1], eye[1],
		right[2], camUp[2], -fwd[2], eye[2],
		0, 0, 0, 1,
	}
}
