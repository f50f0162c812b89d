package vox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// maxNodeID bounds node, layer and model IDs so the lookup tables stay small.
const maxNodeID = 1 << 20

// placeholderName is the name MagicaVoxel writes for unnamed transforms.
const placeholderName = "XYZ"

// NodeKind tags what a transform's child resolved to.
type NodeKind uint8

const (
	NodeUnresolved NodeKind = iota
	NodeGroup
	NodeShape
)

func (k NodeKind) String() string {
	switch k {
	case NodeGroup:
		return "group"
	case NodeShape:
		return "shape"
	default:
		return "unresolved"
	}
}

type Layer struct {
	ID     int32
	Name   string
	Hidden bool
}

// Transform is an nTRN node. Child, Kind and Visible are filled by the
// post-pass once every chunk is read.
type Transform struct {
	ID          int32
	Name        string
	Hidden      bool
	ChildID     int32
	LayerID     int32
	Translation [3]int32
	Rotation    Rotation
	Attrs       Dict

	Kind    NodeKind
	Child   int  // index into Scene.Groups or Scene.Shapes
	Visible bool // own visibility AND layer visibility
}

// Local is the transform in voxel units: translation after rotation.
func (t *Transform) Local() mgl32.Mat4 {
	m := t.Rotation.Mat4()
	m.SetCol(3, mgl32.Vec4{float32(t.Translation[0]), float32(t.Translation[1]), float32(t.Translation[2]), 1})
	return m
}

type Group struct {
	ID       int32
	Attrs    Dict
	Children []int32 // transform IDs

	children []int // resolved transform indices
}

type ShapeModel struct {
	ModelID int32
	Attrs   Dict
}

type Shape struct {
	ID     int32
	Attrs  Dict
	Models []ShapeModel
}

// Model is one SIZE/XYZI pair. Its ID is its arrival index.
type Model struct {
	ID   int
	Size [3]int
	Grid *VoxelGrid
}

// idTable maps an ID to its arena index plus one; zero means absent.
type idTable []int32

func (t *idTable) set(id int32, idx int) {
	if int(id) >= len(*t) {
		n := make(idTable, int(id)+1)
		copy(n, *t)
		*t = n
	}
	(*t)[id] = int32(idx) + 1
}

func (t idTable) get(id int32) (int, bool) {
	if id < 0 || int(id) >= len(t) || t[id] == 0 {
		return 0, false
	}
	return int(t[id]) - 1, true
}

// Scene holds the flat node tables of one file.
type Scene struct {
	Layers     []Layer
	Transforms []Transform
	Groups     []Group
	Shapes     []Shape
	Models     []Model

	layers, transforms, groups, shapes idTable
	resolved                           bool
}

func (s *Scene) Layer(id int32) (*Layer, bool) {
	i, ok := s.layers.get(id)
	if !ok {
		return nil, false
	}
	return &s.Layers[i], true
}

func (s *Scene) Transform(id int32) (*Transform, bool) {
	i, ok := s.transforms.get(id)
	if !ok {
		return nil, false
	}
	return &s.Transforms[i], true
}

func (s *Scene) Group(id int32) (*Group, bool) {
	i, ok := s.groups.get(id)
	if !ok {
		return nil, false
	}
	return &s.Groups[i], true
}

func (s *Scene) Shape(id int32) (*Shape, bool) {
	i, ok := s.shapes.get(id)
	if !ok {
		return nil, false
	}
	return &s.Shapes[i], true
}

// Root returns transform 0, absent in files written without a scene graph.
func (s *Scene) Root() (*Transform, bool) { return s.Transform(0) }

// nodeIDTaken reports whether id is already used by any node table.
func (s *Scene) nodeIDTaken(id int32) bool {
	_, t := s.transforms.get(id)
	_, g := s.groups.get(id)
	_, sh := s.shapes.get(id)
	return t || g || sh
}

// hidden reports the _hidden key. Its presence hides the node whatever the value.
func hidden(d Dict) bool {
	_, ok := d["_hidden"]
	return ok
}

func decodeLAYR(r *chunkReader, s *Scene) {
	id := r.nodeID("layer", false)
	attrs := r.dict()
	r.int32() // reserved
	if r.err != nil {
		return
	}
	if _, dup := s.layers.get(id); dup {
		r.fail("duplicate layer %d", id)
		return
	}
	name, ok := attrs["_name"]
	if !ok {
		name = "NoName" + strconv.Itoa(int(id))
	}
	s.layers.set(id, len(s.Layers))
	s.Layers = append(s.Layers, Layer{ID: id, Name: name, Hidden: hidden(attrs)})
}

func decodeNTRN(r *chunkReader, s *Scene) {
	t := Transform{Rotation: IdentityRotation}
	t.ID = r.nodeID("node", false)
	t.Attrs = r.dict()
	t.ChildID = r.nodeID("child", false)
	r.int32() // reserved, always -1
	t.LayerID = r.nodeID("layer", true)
	frames := r.length("frame count")
	if frames > r.remaining()/4 {
		r.fail("%d frames exceed %d remaining bytes", frames, r.remaining())
	}
	var first Dict
	for i := 0; i < frames && r.err == nil; i++ {
		d := r.dict()
		if i == 0 {
			first = d
		}
	}
	if r.err != nil {
		return
	}
	if s.nodeIDTaken(t.ID) {
		r.fail("duplicate node %d", t.ID)
		return
	}

	t.Name = placeholderName
	if n, ok := t.Attrs["_name"]; ok {
		t.Name = n
	}
	if t.ID == 0 {
		t.Name = "ROOT"
	}
	t.Hidden = hidden(t.Attrs)

	if v, ok := first["_t"]; ok {
		tr, err := parseTranslation(v)
		if err != nil {
			r.fail("node %d: %v", t.ID, err)
			return
		}
		t.Translation = tr
	}
	if v, ok := first["_r"]; ok {
		code, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			r.fail("node %d: rotation %q: %v", t.ID, v, err)
			return
		}
		rot, err := DecodeRotation(byte(code))
		if err != nil {
			r.err = fmt.Errorf("node %d: %w", t.ID, err)
			return
		}
		t.Rotation = rot
	}
	s.transforms.set(t.ID, len(s.Transforms))
	s.Transforms = append(s.Transforms, t)
}

func parseTranslation(v string) ([3]int32, error) {
	var out [3]int32
	f := strings.Fields(v)
	if len(f) != 3 {
		return out, fmt.Errorf("translation %q needs 3 components", v)
	}
	for i, s := range f {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return out, fmt.Errorf("translation %q: %w", v, err)
		}
		out[i] = int32(n)
	}
	return out, nil
}

func decodeNGRP(r *chunkReader, s *Scene) {
	g := Group{}
	g.ID = r.nodeID("node", false)
	g.Attrs = r.dict()
	n := r.length("child count")
	if n > r.remaining()/4 {
		r.fail("%d children exceed %d remaining bytes", n, r.remaining())
	}
	for i := 0; i < n && r.err == nil; i++ {
		g.Children = append(g.Children, r.nodeID("child", false))
	}
	if r.err != nil {
		return
	}
	if s.nodeIDTaken(g.ID) {
		r.fail("duplicate node %d", g.ID)
		return
	}
	s.groups.set(g.ID, len(s.Groups))
	s.Groups = append(s.Groups, g)
}

func decodeNSHP(r *chunkReader, s *Scene) {
	sh := Shape{}
	sh.ID = r.nodeID("node", false)
	sh.Attrs = r.dict()
	n := r.length("model count")
	if n > r.remaining()/8 {
		r.fail("%d models exceed %d remaining bytes", n, r.remaining())
	}
	for i := 0; i < n && r.err == nil; i++ {
		m := ShapeModel{ModelID: r.nodeID("model", false)}
		m.Attrs = r.dict()
		sh.Models = append(sh.Models, m)
	}
	if r.err != nil {
		return
	}
	if s.nodeIDTaken(sh.ID) {
		r.fail("duplicate node %d", sh.ID)
		return
	}
	s.shapes.set(sh.ID, len(s.Shapes))
	s.Shapes = append(s.Shapes, sh)
}

func decodeSIZE(r *chunkReader) [3]int {
	var size [3]int
	for i := range size {
		size[i] = int(r.int32())
		if r.err == nil && (size[i] < 1 || size[i] > MaxExtent) {
			r.fail("model extent %d out of range", size[i])
		}
	}
	return size
}

func decodeXYZI(r *chunkReader) []Voxel {
	n := r.length("voxel count")
	raw := r.bytes(n * 4)
	if raw == nil {
		return nil
	}
	voxels := make([]Voxel, n)
	for i := range voxels {
		v := raw[i*4 : i*4+4]
		voxels[i] = Voxel{X: v[0], Y: v[1], Z: v[2], Color: v[3]}
	}
	return voxels
}

// resolve is the post-pass run once every chunk is read: it types each
// transform by its child, computes overall visibility, checks every reference
// and rejects cycles reachable from the root.
func (s *Scene) resolve() error {
	for i := range s.Transforms {
		t := &s.Transforms[i]
		if gi, ok := s.groups.get(t.ChildID); ok {
			t.Kind, t.Child = NodeGroup, gi
		} else if si, ok := s.shapes.get(t.ChildID); ok {
			t.Kind, t.Child = NodeShape, si
		} else {
			return fmt.Errorf("%w: transform %d child %d", ErrMissingNode, t.ID, t.ChildID)
		}
		t.Visible = !t.Hidden
		if t.LayerID != -1 {
			l, ok := s.Layer(t.LayerID)
			if !ok {
				return fmt.Errorf("%w: transform %d layer %d", ErrMissingNode, t.ID, t.LayerID)
			}
			if l.Hidden {
				t.Visible = false
			}
		}
	}
	for i := range s.Groups {
		g := &s.Groups[i]
		g.children = make([]int, len(g.Children))
		for j, id := range g.Children {
			ti, ok := s.transforms.get(id)
			if !ok {
				return fmt.Errorf("%w: group %d child %d", ErrMissingNode, g.ID, id)
			}
			g.children[j] = ti
		}
	}
	for _, sh := range s.Shapes {
		if len(sh.Models) == 0 {
			return fmt.Errorf("%w: shape %d has no model", ErrMissingNode, sh.ID)
		}
		for _, m := range sh.Models {
			if int(m.ModelID) >= len(s.Models) {
				return fmt.Errorf("%w: shape %d model %d", ErrMissingNode, sh.ID, m.ModelID)
			}
		}
	}
	if len(s.Transforms) > 0 {
		root, ok := s.transforms.get(0)
		if !ok {
			return fmt.Errorf("%w: root transform 0", ErrMissingNode)
		}
		if err := s.checkAcyclic(root); err != nil {
			return err
		}
	}
	s.resolved = true
	return nil
}

func (s *Scene) checkAcyclic(root int) error {
	onPath := make([]bool, len(s.Transforms))
	done := make([]bool, len(s.Transforms))
	var visit func(ti int) error
	visit = func(ti int) error {
		t := &s.Transforms[ti]
		if onPath[ti] {
			return fmt.Errorf("%w: transform %d reached from itself", ErrSceneCycle, t.ID)
		}
		if done[ti] || t.Kind != NodeGroup {
			return nil
		}
		onPath[ti] = true
		for _, ci := range s.Groups[t.Child].children {
			if err := visit(ci); err != nil {
				return err
			}
		}
		onPath[ti] = false
		done[ti] = true
		return nil
	}
	return visit(root)
}
