package vox

// DefaultScale converts voxel units to scene units.
const DefaultScale = 0.1

// faceSpec describes one of the six voxel faces: the neighbor offset that
// culls it and its corners relative to the voxel's minimum corner, ordered
// counter-clockwise when seen from outside.
type faceSpec struct {
	normal  [3]int
	corners [4][3]int
}

var faces = [6]faceSpec{
	{[3]int{1, 0, 0}, [4][3]int{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{[3]int{-1, 0, 0}, [4][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{[3]int{0, 1, 0}, [4][3]int{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{[3]int{0, -1, 0}, [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{[3]int{0, 0, 1}, [4][3]int{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{[3]int{0, 0, -1}, [4][3]int{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

// FaceGroup is the boundary surface of one color. Quads index Positions and
// coincident corners share one position.
type FaceGroup struct {
	Color     uint8
	Positions [][3]float32
	Quads     [][4]uint32
}

// Mesh holds one FaceGroup per color present, in ascending color order.
type Mesh struct {
	Groups []FaceGroup
}

// QuadCount is the total number of quads over all groups.
func (m *Mesh) QuadCount() int {
	n := 0
	for _, g := range m.Groups {
		n += len(g.Quads)
	}
	return n
}

// Group returns the face group of a color, nil when absent.
func (m *Mesh) Group(color uint8) *FaceGroup {
	for i := range m.Groups {
		if m.Groups[i].Color == color {
			return &m.Groups[i]
		}
	}
	return nil
}

// Triangles splits every quad of g into two triangles with the same winding.
func (g *FaceGroup) Triangles() []uint32 {
	out := make([]uint32, 0, len(g.Quads)*6)
	for _, q := range g.Quads {
		out = append(out, q[0], q[1], q[2], q[0], q[2], q[3])
	}
	return out
}

// OriginOffset is the shift that centers a model of the given size, in whole
// voxels: -size/2 rounded toward zero.
func OriginOffset(size [3]int) [3]int {
	return [3]int{-(size[0] / 2), -(size[1] / 2), -(size[2] / 2)}
}

// BuildMesh emits a unit quad on every face of every voxel whose neighbor in
// that direction is empty. Neighbors of any color cull the face. Positions
// are shifted by OriginOffset and multiplied by scale. A grid without voxels
// yields nil.
func BuildMesh(g *VoxelGrid, scale float32) *Mesh {
	if g == nil || g.Len() == 0 {
		return nil
	}
	offset := OriginOffset(g.Size())

	type builder struct {
		group FaceGroup
		index map[[3]int]uint32
	}
	var byColor [256]*builder
	for _, c := range g.Colors() {
		byColor[c] = &builder{group: FaceGroup{Color: c}, index: make(map[[3]int]uint32)}
	}

	g.Each(func(x, y, z int, color uint8) {
		b := byColor[color]
		for _, f := range faces {
			if g.At(x+f.normal[0], y+f.normal[1], z+f.normal[2]) != 0 {
				continue
			}
			var q [4]uint32
			for i, c := range f.corners {
				p := [3]int{x + c[0], y + c[1], z + c[2]}
				idx, ok := b.index[p]
				if !ok {
					idx = uint32(len(b.group.Positions))
					b.index[p] = idx
					b.group.Positions = append(b.group.Positions, [3]float32{
						float32(p[0]+offset[0]) * scale,
						float32(p[1]+offset[1]) * scale,
						float32(p[2]+offset[2]) * scale,
					})
				}
				q[i] = idx
			}
			b.group.Quads = append(b.group.Quads, q)
		}
	})

	m := &Mesh{Groups: make([]FaceGroup, 0, len(g.Colors()))}
	for _, c := range g.Colors() {
		m.Groups = append(m.Groups, byColor[c].group)
	}
	return m
}
