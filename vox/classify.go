package vox

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ModelKind is the geometric family of a mesh, decided from the angles
// between faces sharing an edge.
type ModelKind uint8

const (
	KindVoxel    ModelKind = iota // flat or right angles only
	KindMC                        // marching cubes angles
	KindNonVoxel                  // anything else
)

func (k ModelKind) String() string {
	switch k {
	case KindVoxel:
		return "voxel"
	case KindMC:
		return "mc"
	default:
		return "non-voxel"
	}
}

type angleRange struct{ lo, hi float32 }

var (
	voxelAngles = []angleRange{{0, 1}, {89, 91}}
	mcAngles    = []angleRange{{0, 1}, {34, 36}, {44, 46}, {53, 55}, {70, 71}, {89, 91}}
)

func inRanges(a float32, rs []angleRange) bool {
	for _, r := range rs {
		if a >= r.lo && a <= r.hi {
			return true
		}
	}
	return false
}

// Classify measures the angle in degrees between the normals of every pair
// of quads sharing exactly one edge. A mesh is Voxel when every angle is flat
// or right, MC when every angle falls in the marching cubes set, NonVoxel
// otherwise. Edges shared by more than two quads are ignored.
func Classify(m *Mesh) ModelKind {
	if m == nil {
		return KindVoxel
	}
	type edgeKey [2][3]int32
	type edgeFaces struct {
		n     [2]mgl32.Vec3
		count int
	}
	quantize := func(p [3]float32) [3]int32 {
		return [3]int32{
			int32(math32.Round(p[0] * 1e4)),
			int32(math32.Round(p[1] * 1e4)),
			int32(math32.Round(p[2] * 1e4)),
		}
	}
	less := func(a, b [3]int32) bool {
		for i := range a {
			if a[i] != b[i] {
				return a[i] < b[i]
			}
		}
		return false
	}

	edges := make(map[edgeKey]*edgeFaces)
	for _, g := range m.Groups {
		for _, q := range g.Quads {
			p0 := mgl32.Vec3(g.Positions[q[0]])
			n := mgl32.Vec3(g.Positions[q[1]]).Sub(p0).Cross(mgl32.Vec3(g.Positions[q[2]]).Sub(p0)).Normalize()
			for i := range q {
				a, b := quantize(g.Positions[q[i]]), quantize(g.Positions[q[(i+1)%4]])
				if less(b, a) {
					a, b = b, a
				}
				e := edges[edgeKey{a, b}]
				if e == nil {
					e = &edgeFaces{}
					edges[edgeKey{a, b}] = e
				}
				if e.count < 2 {
					e.n[e.count] = n
				}
				e.count++
			}
		}
	}

	kind := KindVoxel
	for _, e := range edges {
		if e.count != 2 {
			continue
		}
		cos := math32.Max(-1, math32.Min(1, e.n[0].Dot(e.n[1])))
		a := mgl32.RadToDeg(math32.Acos(cos))
		switch {
		case inRanges(a, voxelAngles):
		case inRanges(a, mcAngles):
			kind = KindMC
		default:
			return KindNonVoxel
		}
	}
	return kind
}
