package vox

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshModel is one meshed shape occurrence, ready for a mesh consumer.
// Group colors index the Palette and Materials of the File it came from.
type MeshModel struct {
	Name    string
	ModelID int
	Size    [3]int
	// World places the mesh in the scene, translation already scaled.
	World   mgl32.Mat4
	Visible bool
	Kind    ModelKind
	Mesh    *Mesh
}

// Meshes traverses the scene and meshes every reached shape. Shapes whose
// model holds no voxels produce nothing.
func (f *File) Meshes(opts Options) ([]MeshModel, error) {
	scale := opts.scale()
	var out []MeshModel
	err := f.Scene.Traverse(f.Name, opts.ImportHidden, func(in Instance) error {
		model := &f.Scene.Models[in.ModelID]
		mesh := BuildMesh(model.Grid, scale)
		if mesh == nil {
			return nil
		}
		world := in.World
		world.SetCol(3, world.Col(3).Vec3().Mul(scale).Vec4(1))
		if opts.OriginsAtBottom {
			world = moveOriginToBottom(mesh, world)
		}
		out = append(out, MeshModel{
			Name:    in.Name,
			ModelID: in.ModelID,
			Size:    model.Size,
			World:   world,
			Visible: in.Visible,
			Kind:    Classify(mesh),
			Mesh:    mesh,
		})
		return nil
	})
	if err != nil {
		return nil, &FileError{File: f.Path, Err: err}
	}
	return out, nil
}

// Import decodes a file and meshes its scene in one step.
func Import(name string, data []byte, opts Options) (*File, []MeshModel, error) {
	f, err := Decode(name, data, opts)
	if err != nil {
		return nil, nil, err
	}
	models, err := f.Meshes(opts)
	if err != nil {
		return f, nil, err
	}
	return f, models, nil
}

// moveOriginToBottom lowers the origin to the mesh's minimum world Z while
// leaving every vertex where it was in world space.
func moveOriginToBottom(m *Mesh, world mgl32.Mat4) mgl32.Mat4 {
	minZ := math32.Inf(1)
	for _, g := range m.Groups {
		for _, p := range g.Positions {
			w := world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
			minZ = math32.Min(minZ, w.Z())
		}
	}
	dz := minZ - world.At(2, 3)
	if dz == 0 {
		return world
	}
	shift := world.Mat3().Transpose().Mul3x1(mgl32.Vec3{0, 0, dz})
	for gi := range m.Groups {
		pos := m.Groups[gi].Positions
		for i := range pos {
			pos[i] = [3]float32{pos[i][0] - shift[0], pos[i][1] - shift[1], pos[i][2] - shift[2]}
		}
	}
	world.Set(2, 3, minZ)
	return world
}
