package vox

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotationRoundTrip(t *testing.T) {
	valid, invalid := 0, 0
	for code := 0; code < 256; code++ {
		r, err := DecodeRotation(byte(code))
		if err != nil {
			assert.ErrorIs(t, err, ErrInvalidRotation, "code 0x%02x", code)
			invalid++
			continue
		}
		valid++
		assert.Equal(t, 1, r.Det(), "code 0x%02x", code)
		back, err := r.Encode()
		require.NoError(t, err)
		assert.Equal(t, byte(code), back, "code 0x%02x", code)
	}
	assert.Equal(t, 24, valid)
	assert.Equal(t, 232, invalid)
}

func TestRotationIndexCollision(t *testing.T) {
	for _, code := range []byte{0x00, 0x05, 0x0a, 0x0f, 0x03, 0x0c} {
		_, err := DecodeRotation(code)
		assert.ErrorIs(t, err, ErrInvalidRotation, "code 0x%02x", code)
	}
}

func TestRotationMirroredNode(t *testing.T) {
	// row 0 negated without a second sign flip
	_, err := DecodeRotation(0x14)
	assert.ErrorIs(t, err, ErrInvalidRotation)
	assert.Contains(t, err.Error(), "mirrored node")

	_, err = Decode("mirror.vox", NewWriter().
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Transform(0, nil, 1, -1, Dict{"_r": "20"}).
		Shape(1, nil, 0).
		Bytes(), Options{})
	assert.ErrorIs(t, err, ErrInvalidRotation)
	assert.Contains(t, err.Error(), "mirrored node")
}

func TestRotationIdentity(t *testing.T) {
	r, err := DecodeRotation(0x04)
	require.NoError(t, err)
	assert.Equal(t, IdentityRotation, r)
	assert.True(t, r.Mat4().ApproxEqual(mgl32.Ident4()))
}

func TestRotationRowsAndSigns(t *testing.T) {
	// row 0 -> column 1, row 1 -> column 0, row 2 -> column 2 negated
	r, err := DecodeRotation(0x01 | 0x00<<2 | 1<<6)
	require.NoError(t, err)
	assert.Equal(t, Rotation{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}}, r)

	m := r.Mat3()
	got := m.Mul3x1(mgl32.Vec3{1, 2, 3})
	assert.Equal(t, mgl32.Vec3{2, 1, -3}, got)
}

func TestRotationEncodeRejectsNonPermutation(t *testing.T) {
	_, err := Rotation{{1, 1, 0}, {0, 1, 0}, {0, 0, 1}}.Encode()
	assert.ErrorIs(t, err, ErrInvalidRotation)
	_, err = Rotation{{-1, 0, 0}, {0, 1, 0}, {0, 0, 1}}.Encode()
	assert.ErrorIs(t, err, ErrInvalidRotation)
}

func TestRotationEuler(t *testing.T) {
	assert.Equal(t, [3]float32{0, 0, 0}, IdentityRotation.EulerXYZ())
	// 90 degrees about Z: x -> y
	rz := Rotation{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}
	assert.Equal(t, [3]float32{0, 0, 90}, rz.EulerXYZ())
}
