package vox

import (
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/muesli/termenv"
)

// EulerXYZ returns the rotation as X, Y, Z angles in degrees for R = Rz*Ry*Rx.
func (r Rotation) EulerXYZ() [3]float32 {
	m := func(i, j int) float32 { return float32(r[i][j]) }
	var x, y, z float32
	if math32.Abs(m(2, 0)) < 1 {
		y = math32.Asin(-m(2, 0))
		x = math32.Atan2(m(2, 1), m(2, 2))
		z = math32.Atan2(m(1, 0), m(0, 0))
	} else {
		y = math32.Asin(-m(2, 0))
		z = math32.Atan2(-m(0, 1), m(1, 1))
	}
	deg := func(a float32) float32 {
		d := math32.Round(mgl32.RadToDeg(a))
		if d == 0 {
			return 0 // no negative zero
		}
		return d
	}
	return [3]float32{deg(x), deg(y), deg(z)}
}

type summaryWriter struct {
	sb      strings.Builder
	out     *termenv.Output
	scene   *Scene
	printed struct{ transforms, groups, shapes []bool }
}

func (s *summaryWriter) marker(visible bool) string {
	if visible {
		return s.out.String("●").Foreground(s.out.Color("2")).String()
	}
	return s.out.String("○").Foreground(s.out.Color("1")).Faint().String()
}

func (s *summaryWriter) line(depth int, format string, args ...any) {
	s.sb.WriteString(strings.Repeat(">", depth))
	if depth > 0 {
		s.sb.WriteByte(' ')
	}
	fmt.Fprintf(&s.sb, format, args...)
	s.sb.WriteByte('\n')
}

func (s *summaryWriter) transform(ti, depth int) {
	if s.printed.transforms[ti] {
		return
	}
	s.printed.transforms[ti] = true
	t := &s.scene.Transforms[ti]
	kind := "T"
	if t.ID == 0 {
		kind = "R"
	}
	rot := t.Rotation.EulerXYZ()
	s.line(depth, "%s %s %d %q layer %d pos (%d %d %d) rot (%g %g %g)",
		kind, s.marker(t.Visible), t.ID, t.Name, t.LayerID,
		t.Translation[0], t.Translation[1], t.Translation[2], rot[0], rot[1], rot[2])
	switch t.Kind {
	case NodeGroup:
		s.group(t.Child, depth+1)
	case NodeShape:
		s.shape(t.Child, depth+1)
	}
}

func (s *summaryWriter) group(gi, depth int) {
	if s.printed.groups[gi] {
		return
	}
	s.printed.groups[gi] = true
	g := &s.scene.Groups[gi]
	s.line(depth, "G %d children %v", g.ID, g.Children)
	for _, ci := range g.children {
		s.transform(ci, depth+1)
	}
}

func (s *summaryWriter) shape(si, depth int) {
	if s.printed.shapes[si] {
		return
	}
	s.printed.shapes[si] = true
	sh := &s.scene.Shapes[si]
	m := &s.scene.Models[sh.Models[0].ModelID]
	extra := ""
	if n := len(sh.Models) - 1; n > 0 {
		extra = fmt.Sprintf(" (+%d frames)", n)
	}
	s.line(depth, "S %d model %d size %dx%dx%d voxels %d colors %d%s",
		sh.ID, m.ID, m.Size[0], m.Size[1], m.Size[2], m.Grid.Len(), len(m.Grid.Colors()), extra)
}

// WriteSummary prints the layer table and the node hierarchy, one line per
// layer and node. '>' marks depth below the root; nodes unreachable from the
// root are listed at the end.
func (f *File) WriteSummary(w io.Writer, profile termenv.Profile) error {
	sc := &f.Scene
	s := &summaryWriter{out: termenv.NewOutput(w, termenv.WithProfile(profile)), scene: sc}
	s.printed.transforms = make([]bool, len(sc.Transforms))
	s.printed.groups = make([]bool, len(sc.Groups))
	s.printed.shapes = make([]bool, len(sc.Shapes))

	header := s.out.String(f.Name).Bold().String()
	fmt.Fprintf(&s.sb, "%s: vox %d, %d models, %d nodes, xxhash %016x\n",
		header, f.Version, len(sc.Models), len(sc.Transforms)+len(sc.Groups)+len(sc.Shapes), f.Sum)

	s.sb.WriteString("Layers:\n")
	for _, l := range sc.Layers {
		fmt.Fprintf(&s.sb, "  %s %d %q\n", s.marker(!l.Hidden), l.ID, l.Name)
	}

	s.sb.WriteString("Nodes:\n")
	if root, ok := sc.transforms.get(0); ok {
		s.transform(root, 0)
	}
	var orphans bool
	orphan := func() {
		if !orphans {
			s.sb.WriteString("Unreachable:\n")
			orphans = true
		}
	}
	for i := range sc.Transforms {
		if !s.printed.transforms[i] {
			orphan()
			s.transform(i, 0)
		}
	}
	for i := range sc.Groups {
		if !s.printed.groups[i] {
			orphan()
			s.group(i, 0)
		}
	}
	for i := range sc.Shapes {
		if !s.printed.shapes[i] {
			orphan()
			s.shape(i, 0)
		}
	}
	for _, warn := range f.Warnings {
		fmt.Fprintf(&s.sb, "warning: %s\n", warn)
	}
	_, err := io.WriteString(w, s.sb.String())
	return err
}
