package vox

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Rotation is a signed 3x3 permutation matrix in row-major order.
type Rotation [3][3]int8

// IdentityRotation is the rotation stored as byte 0x04.
var IdentityRotation = Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

const (
	rotIndexMask = 0x03
	rotSignShift = 4
	rotReserved  = 0x80
)

// DecodeRotation unpacks a rotation byte. Bits 0-1 and 2-3 give the column of
// the non-zero entry of rows 0 and 1, row 2 takes the column left over, and
// bits 4, 5 and 6 negate rows 0, 1 and 2. Only the 24 proper cube rotations
// decode; reflections, index collisions and a set bit 7 are rejected.
func DecodeRotation(b byte) (Rotation, error) {
	var r Rotation
	first := int(b & rotIndexMask)
	second := int((b >> 2) & rotIndexMask)
	if first == second || first > 2 || second > 2 {
		return r, fmt.Errorf("%w: 0x%02x has row columns %d and %d", ErrInvalidRotation, b, first, second)
	}
	if b&rotReserved != 0 {
		return r, fmt.Errorf("%w: 0x%02x has reserved bit 7 set", ErrInvalidRotation, b)
	}
	cols := [3]int{first, second, 3 - first - second}
	for row, col := range cols {
		r[row][col] = 1
		if b&(1<<(rotSignShift+row)) != 0 {
			r[row][col] = -1
		}
	}
	if r.Det() != 1 {
		return Rotation{}, fmt.Errorf("%w: 0x%02x is a mirrored node transform", ErrInvalidRotation, b)
	}
	return r, nil
}

// Encode is the inverse of DecodeRotation.
func (r Rotation) Encode() (byte, error) {
	var b byte
	var used [3]bool
	var cols [3]int
	for row := 0; row < 3; row++ {
		col := -1
		for c := 0; c < 3; c++ {
			switch r[row][c] {
			case 0:
			case 1, -1:
				if col >= 0 {
					return 0, fmt.Errorf("%w: row %d has several entries", ErrInvalidRotation, row)
				}
				col = c
			default:
				return 0, fmt.Errorf("%w: entry %d at row %d", ErrInvalidRotation, r[row][c], row)
			}
		}
		if col < 0 || used[col] {
			return 0, fmt.Errorf("%w: row %d is not a permutation row", ErrInvalidRotation, row)
		}
		used[col] = true
		cols[row] = col
		if r[row][col] < 0 {
			b |= 1 << (rotSignShift + row)
		}
	}
	if r.Det() != 1 {
		return 0, fmt.Errorf("%w: matrix is a reflection", ErrInvalidRotation)
	}
	return b | byte(cols[0]) | byte(cols[1])<<2, nil
}

// Det returns the determinant, +1 for rotations and -1 for reflections.
func (r Rotation) Det() int {
	m := [3][3]int{}
	for i := range r {
		for j := range r[i] {
			m[i][j] = int(r[i][j])
		}
	}
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func (r Rotation) Mat3() mgl32.Mat3 {
	row := func(i int) mgl32.Vec3 {
		return mgl32.Vec3{float32(r[i][0]), float32(r[i][1]), float32(r[i][2])}
	}
	return mgl32.Mat3FromRows(row(0), row(1), row(2))
}

func (r Rotation) Mat4() mgl32.Mat4 { return r.Mat3().Mat4() }
