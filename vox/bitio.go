package vox

import (
	"encoding/binary"
	"io"
	"math"
)

func writeUVarint(dst []byte, x uint32) []byte {
	v := x
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	dst = append(dst, byte(v))
	return dst
}

func readUVarint(src []byte, pos *int) (uint32, error) {
	var x uint32
	var s uint32
	i := *pos
	for {
		if i >= len(src) {
			return 0, io.ErrUnexpectedEOF
		}
		b := src[i]
		i++
		if b < 0x80 {
			if s >= 32 {
				return 0, io.ErrUnexpectedEOF
			}
			x |= uint32(b) << s
			break
		}
		x |= uint32(b&0x7F) << s
		s += 7
		if s > 28 {
			return 0, io.ErrUnexpectedEOF
		}
	}
	*pos = i
	return x, nil
}

// zigzag maps small negative values to small unsigned ones.
func zigzag(v int32) uint32 { return uint32(v<<1) ^ uint32(v>>31) }

func unzigzag(u uint32) int32 { return int32(u>>1) ^ -int32(u&1) }

func writeFloat32(dst []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
}

func readFloat32(src []byte, pos *int) (float32, error) {
	if len(src)-*pos < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(src[*pos:])
	*pos += 4
	return math.Float32frombits(v), nil
}
