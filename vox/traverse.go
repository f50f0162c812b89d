package vox

import (
	"fmt"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// Instance is one shape occurrence reached by a traversal.
type Instance struct {
	Name        string
	TransformID int32 // -1 for files without a scene graph
	ModelID     int
	World       mgl32.Mat4 // voxel units
	Visible     bool
}

// instanceNamer hands out display names. Transforms carrying the placeholder
// name get <base>_<n>, n counting from 1 within one file.
type instanceNamer struct {
	base string
	n    int
}

func (n *instanceNamer) name(t *Transform) string {
	if t != nil && t.Name != placeholderName {
		return t.Name
	}
	n.n++
	return n.base + "_" + strconv.Itoa(n.n)
}

// Traverse walks the scene depth first from transform 0 and calls fn for
// every shape that is visible, or for every shape when importHidden is set.
// World transforms accumulate parent times child. A scene without transforms
// yields one instance per model at the origin.
func (s *Scene) Traverse(base string, importHidden bool, fn func(Instance) error) error {
	if !s.resolved {
		if err := s.resolve(); err != nil {
			return err
		}
	}
	namer := &instanceNamer{base: base}

	root, ok := s.transforms.get(0)
	if !ok {
		for _, m := range s.Models {
			in := Instance{Name: namer.name(nil), TransformID: -1, ModelID: m.ID, World: mgl32.Ident4(), Visible: true}
			if err := fn(in); err != nil {
				return err
			}
		}
		return nil
	}

	var walk func(ti int, world mgl32.Mat4, visible bool) error
	walk = func(ti int, world mgl32.Mat4, visible bool) error {
		if !visible && !importHidden {
			return nil
		}
		t := &s.Transforms[ti]
		switch t.Kind {
		case NodeGroup:
			for _, ci := range s.Groups[t.Child].children {
				c := &s.Transforms[ci]
				if err := walk(ci, world.Mul4(c.Local()), visible && c.Visible); err != nil {
					return err
				}
			}
		case NodeShape:
			sh := &s.Shapes[t.Child]
			in := Instance{
				Name:        namer.name(t),
				TransformID: t.ID,
				ModelID:     int(sh.Models[0].ModelID),
				World:       world,
				Visible:     visible,
			}
			if err := fn(in); err != nil {
				return fmt.Errorf("shape %d: %w", sh.ID, err)
			}
		}
		return nil
	}
	r := &s.Transforms[root]
	return walk(root, r.Local(), r.Visible)
}
