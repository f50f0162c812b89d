package vox

import (
	"fmt"
	"strconv"
)

// Palette holds RGBA colors in [0,1] indexed by voxel color index. Index 0
// means empty and stays transparent.
type Palette [256][4]float32

// DefaultPalette is used when a file carries no RGBA chunk: a 6x6x6 color
// cube followed by red, green, blue and gray ramps.
func DefaultPalette() Palette {
	cube := [6]uint8{0xff, 0xcc, 0x99, 0x66, 0x33, 0x00}
	ramp := [10]uint8{0xee, 0xdd, 0xbb, 0xaa, 0x88, 0x77, 0x55, 0x44, 0x22, 0x11}

	var p Palette
	i := 1
	for _, r := range cube {
		for _, g := range cube {
			for _, b := range cube {
				if r == 0 && g == 0 && b == 0 {
					continue
				}
				p[i] = rgba8(r, g, b, 0xff)
				i++
			}
		}
	}
	for ch := 0; ch < 3; ch++ {
		for _, v := range ramp {
			var c [3]uint8
			c[ch] = v
			p[i] = rgba8(c[0], c[1], c[2], 0xff)
			i++
		}
	}
	for _, v := range ramp {
		p[i] = rgba8(v, v, v, 0xff)
		i++
	}
	return p
}

func rgba8(r, g, b, a uint8) [4]float32 {
	return [4]float32{float32(r) / 255, float32(g) / 255, float32(b) / 255, float32(a) / 255}
}

// RGBA8 returns the color at index i quantized back to bytes.
func (p *Palette) RGBA8(i uint8) [4]uint8 {
	var out [4]uint8
	for ch, v := range p[i] {
		out[ch] = uint8(clamp01(v)*255 + 0.5)
	}
	return out
}

// decodeRGBA reads the 256 entry RGBA chunk. Entry k colors index k+1, the
// last entry has no index and is dropped.
func decodeRGBA(r *chunkReader) Palette {
	var p Palette
	raw := r.bytes(256 * 4)
	if raw == nil {
		return p
	}
	if r.remaining() != 0 {
		r.fail("palette has %d trailing bytes", r.remaining())
		return p
	}
	for k := 0; k < 255; k++ {
		e := raw[k*4 : k*4+4]
		p[k+1] = rgba8(e[0], e[1], e[2], e[3])
	}
	return p
}

// ParseHexColor parses #RRGGBB or #RRGGBBAA.
func ParseHexColor(hex string) ([4]float32, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return [4]float32{}, fmt.Errorf("invalid hex color %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return [4]float32{}, fmt.Errorf("invalid hex color length %q", hex)
	}
	if len(h) == 6 {
		h += "ff"
	}
	var c [4]uint8
	for i := range c {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return [4]float32{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		c[i] = uint8(v)
	}
	return rgba8(c[0], c[1], c[2], c[3]), nil
}

// PaletteFromHex builds a palette whose index i+1 takes colors[i]. Indices
// past the list keep the default palette.
func PaletteFromHex(colors []string) (Palette, error) {
	p := DefaultPalette()
	if len(colors) > 255 {
		return p, fmt.Errorf("palette has %d colors, at most 255 allowed", len(colors))
	}
	for i, hex := range colors {
		c, err := ParseHexColor(hex)
		if err != nil {
			return p, err
		}
		p[i+1] = c
	}
	return p, nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
