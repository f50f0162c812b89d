package vox

import "slices"

// MaxExtent bounds every axis of a model.
const MaxExtent = 256

// Voxel is one XYZI record.
type Voxel struct {
	X, Y, Z uint8
	Color   uint8
}

// VoxelGrid is a sparse, immutable map from coordinates to color indices.
// Absent cells are empty.
type VoxelGrid struct {
	size   [3]int
	cells  map[uint32]uint8
	keys   []uint32 // ascending Morton order
	colors []uint8  // distinct, ascending
}

// NewVoxelGrid builds a grid from XYZI records. Color 0 records are dropped
// and a repeated coordinate keeps its last color.
func NewVoxelGrid(size [3]int, voxels []Voxel) *VoxelGrid {
	g := &VoxelGrid{size: size, cells: make(map[uint32]uint8, len(voxels))}
	for _, v := range voxels {
		if v.Color == 0 {
			continue
		}
		g.cells[morton3D(uint32(v.X), uint32(v.Y), uint32(v.Z))] = v.Color
	}
	var seen [256]bool
	g.keys = make([]uint32, 0, len(g.cells))
	for k, c := range g.cells {
		g.keys = append(g.keys, k)
		seen[c] = true
	}
	slices.Sort(g.keys)
	for c := 1; c < len(seen); c++ {
		if seen[c] {
			g.colors = append(g.colors, uint8(c))
		}
	}
	return g
}

// At returns the color at (x, y, z), 0 when empty or out of range.
func (g *VoxelGrid) At(x, y, z int) uint8 {
	if x < 0 || y < 0 || z < 0 || x >= MaxExtent || y >= MaxExtent || z >= MaxExtent {
		return 0
	}
	return g.cells[morton3D(uint32(x), uint32(y), uint32(z))]
}

func (g *VoxelGrid) Size() [3]int { return g.size }

// Len is the number of occupied cells.
func (g *VoxelGrid) Len() int { return len(g.keys) }

// Colors lists the distinct color indices present.
func (g *VoxelGrid) Colors() []uint8 { return g.colors }

// Each visits occupied cells in Morton order.
func (g *VoxelGrid) Each(fn func(x, y, z int, color uint8)) {
	for _, k := range g.keys {
		x, y, z := mortonDecode3D(k)
		fn(int(x), int(y), int(z), g.cells[k])
	}
}
