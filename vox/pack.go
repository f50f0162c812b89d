package vox

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"
)

// PackCompression indicates the compression used for the pack content section.
type PackCompression uint8

const (
	PackCompNone PackCompression = 0
	PackCompZlib PackCompression = 1
	PackCompZstd PackCompression = 2
)

func (c PackCompression) String() string {
	switch c {
	case PackCompNone:
		return "none"
	case PackCompZlib:
		return "zlib"
	case PackCompZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression accepts the names printed by String.
func ParseCompression(s string) (PackCompression, error) {
	switch s {
	case "none", "":
		return PackCompNone, nil
	case "zlib":
		return PackCompZlib, nil
	case "zstd":
		return PackCompZstd, nil
	}
	return 0, fmt.Errorf("unknown compression %q", s)
}

const (
	packMagicStr = "VOXMPACK"
	packVersion1 = 1
	packHeadLen  = len(packMagicStr) + 2
)

// ErrPackCorrupt reports a pack that fails to decode or whose checksum differs.
var ErrPackCorrupt = errors.New("corrupt mesh pack")

// PackEntry is one imported file: its meshed models plus the palette and
// materials their colors index.
type PackEntry struct {
	Name      string
	Source    uint64 // xxhash64 of the source .vox
	Palette   Palette
	Materials MaterialTable
	Models    []MeshModel
}

// NewPackEntry bundles the meshes of f.
func NewPackEntry(f *File, models []MeshModel) PackEntry {
	return PackEntry{Name: f.Name, Source: f.Sum, Palette: f.Palette, Materials: f.Materials, Models: models}
}

// Pack is a set of meshed files. Positions are stored in voxel units, so
// Scale must match the scale the meshes were built with.
type Pack struct {
	Scale   float32
	Entries []PackEntry
}

func (p *Pack) scale() float32 {
	if p.Scale == 0 {
		return DefaultScale
	}
	return p.Scale
}

// Marshal encodes the pack. The content section ends with its own xxhash64
// and is compressed as a whole.
func (p *Pack) Marshal(comp PackCompression) ([]byte, error) {
	scale := p.scale()
	content := writeFloat32(nil, scale)
	content = writeUVarint(content, uint32(len(p.Entries)))
	for i := range p.Entries {
		var err error
		content, err = appendEntry(content, &p.Entries[i], scale)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", p.Entries[i].Name, err)
		}
	}
	content = binary.LittleEndian.AppendUint64(content, xxhash.Sum64(content))

	var finalContent []byte
	switch comp {
	case PackCompNone:
		finalContent = content
	case PackCompZlib:
		var buf bytes.Buffer
		zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if _, err := zw.Write(content); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		finalContent = buf.Bytes()
	case PackCompZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		finalContent = enc.EncodeAll(content, nil)
		_ = enc.Close()
	default:
		return nil, fmt.Errorf("unsupported compression: %d", comp)
	}

	out := make([]byte, 0, packHeadLen+len(finalContent))
	out = append(out, packMagicStr...)
	out = append(out, packVersion1, byte(comp))
	return append(out, finalContent...), nil
}

func appendString(dst []byte, s string) []byte {
	dst = writeUVarint(dst, uint32(len(s)))
	return append(dst, s...)
}

func appendEntry(dst []byte, e *PackEntry, scale float32) ([]byte, error) {
	dst = appendString(dst, e.Name)
	dst = binary.LittleEndian.AppendUint64(dst, e.Source)
	for i := 1; i < 256; i++ {
		c := e.Palette.RGBA8(uint8(i))
		dst = append(dst, c[:]...)
	}
	for i := 1; i < 256; i++ {
		m := &e.Materials[i]
		dst = append(dst, byte(m.Kind))
		for _, v := range [4]float32{m.Roughness, m.Metallic, m.Emission, m.Transmission} {
			dst = writeFloat32(dst, v)
		}
	}
	dst = writeUVarint(dst, uint32(len(e.Models)))
	for i := range e.Models {
		m := &e.Models[i]
		dst = appendString(dst, m.Name)
		dst = writeUVarint(dst, uint32(m.ModelID))
		for _, s := range m.Size {
			dst = writeUVarint(dst, uint32(s))
		}
		var flags byte
		if m.Visible {
			flags |= 1
		}
		dst = append(dst, flags, byte(m.Kind))
		for _, v := range m.World {
			dst = writeFloat32(dst, v)
		}
		var groups []FaceGroup
		if m.Mesh != nil {
			groups = m.Mesh.Groups
		}
		dst = writeUVarint(dst, uint32(len(groups)))
		for gi := range groups {
			g := &groups[gi]
			dst = append(dst, g.Color)
			dst = writeUVarint(dst, uint32(len(g.Positions)))
			for _, p := range g.Positions {
				for _, c := range p {
					dst = writeUVarint(dst, zigzag(int32(math32.Round(c/scale))))
				}
			}
			dst = writeUVarint(dst, uint32(len(g.Quads)))
			for _, q := range g.Quads {
				for _, idx := range q {
					if int(idx) >= len(g.Positions) {
						return nil, fmt.Errorf("model %q color %d: quad index %d out of range", m.Name, g.Color, idx)
					}
					dst = writeUVarint(dst, idx)
				}
			}
		}
	}
	return dst, nil
}

// UnmarshalPack parses a pack from bytes and returns it with the compression used.
func UnmarshalPack(data []byte) (*Pack, PackCompression, error) {
	if len(data) < packHeadLen || string(data[:len(packMagicStr)]) != packMagicStr {
		return nil, 0, fmt.Errorf("%w: bad magic", ErrPackCorrupt)
	}
	version := data[len(packMagicStr)]
	comp := PackCompression(data[len(packMagicStr)+1])
	if version != packVersion1 {
		return nil, 0, fmt.Errorf("unsupported pack version: %d", version)
	}
	content := data[packHeadLen:]
	switch comp {
	case PackCompNone:
	case PackCompZlib:
		zr, err := zlib.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrPackCorrupt, err)
		}
		defer zr.Close()
		b, err := io.ReadAll(zr)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrPackCorrupt, err)
		}
		content = b
	case PackCompZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, 0, err
		}
		defer dec.Close()
		b, err := dec.DecodeAll(content, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrPackCorrupt, err)
		}
		content = b
	default:
		return nil, 0, fmt.Errorf("unsupported compression: %d", comp)
	}

	if len(content) < 8 {
		return nil, 0, fmt.Errorf("%w: content too short", ErrPackCorrupt)
	}
	body, sum := content[:len(content)-8], binary.LittleEndian.Uint64(content[len(content)-8:])
	if xxhash.Sum64(body) != sum {
		return nil, 0, fmt.Errorf("%w: checksum mismatch", ErrPackCorrupt)
	}
	pr := &packReader{data: body}
	p, err := pr.pack()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrPackCorrupt, err)
	}
	return p, comp, nil
}

// packReader decodes the content section. The first failure sticks.
type packReader struct {
	data []byte
	pos  int
	err  error
}

func (r *packReader) uvarint() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := readUVarint(r.data, &r.pos)
	r.err = err
	return v
}

// count reads a length and rejects values larger than the bytes left, each
// element taking at least elem bytes.
func (r *packReader) count(elem int) int {
	n := int(r.uvarint())
	if r.err == nil && n > (len(r.data)-r.pos)/elem {
		r.err = fmt.Errorf("count %d at offset %d exceeds remaining data", n, r.pos)
		return 0
	}
	return n
}

func (r *packReader) float32() float32 {
	if r.err != nil {
		return 0
	}
	v, err := readFloat32(r.data, &r.pos)
	r.err = err
	return v
}

func (r *packReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data)-r.pos < n {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *packReader) string() string { return string(r.bytes(r.count(1))) }

func (r *packReader) pack() (*Pack, error) {
	p := &Pack{Scale: r.float32()}
	if r.err == nil && !(p.Scale > 0) {
		return nil, fmt.Errorf("invalid scale %v", p.Scale)
	}
	n := r.count(1)
	p.Entries = make([]PackEntry, n)
	for i := 0; i < n && r.err == nil; i++ {
		r.entry(&p.Entries[i], p.Scale)
	}
	if r.err == nil && r.pos != len(r.data) {
		r.err = fmt.Errorf("%d trailing bytes", len(r.data)-r.pos)
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func (r *packReader) entry(e *PackEntry, scale float32) {
	e.Name = r.string()
	if b := r.bytes(8); b != nil {
		e.Source = binary.LittleEndian.Uint64(b)
	}
	raw := r.bytes(255 * 4)
	for i := 0; raw != nil && i < 255; i++ {
		c := raw[i*4 : i*4+4]
		e.Palette[i+1] = rgba8(c[0], c[1], c[2], c[3])
	}
	e.Materials = DefaultMaterials()
	for i := 1; i < 256 && r.err == nil; i++ {
		m := &e.Materials[i]
		if b := r.bytes(1); b != nil {
			m.Kind = MaterialKind(b[0])
		}
		m.Roughness, m.Metallic, m.Emission, m.Transmission = r.float32(), r.float32(), r.float32(), r.float32()
	}
	n := r.count(1)
	e.Models = make([]MeshModel, n)
	for i := 0; i < n && r.err == nil; i++ {
		r.model(&e.Models[i], scale)
	}
}

func (r *packReader) model(m *MeshModel, scale float32) {
	m.Name = r.string()
	m.ModelID = int(r.uvarint())
	for i := range m.Size {
		m.Size[i] = int(r.uvarint())
	}
	if b := r.bytes(2); b != nil {
		m.Visible = b[0]&1 != 0
		m.Kind = ModelKind(b[1])
	}
	var world mgl32.Mat4
	for i := range world {
		world[i] = r.float32()
	}
	m.World = world
	ng := r.count(3)
	m.Mesh = &Mesh{Groups: make([]FaceGroup, ng)}
	for gi := 0; gi < ng && r.err == nil; gi++ {
		g := &m.Mesh.Groups[gi]
		if b := r.bytes(1); b != nil {
			g.Color = b[0]
		}
		np := r.count(3)
		g.Positions = make([][3]float32, np)
		for i := 0; i < np && r.err == nil; i++ {
			for c := range g.Positions[i] {
				g.Positions[i][c] = float32(unzigzag(r.uvarint())) * scale
			}
		}
		nq := r.count(4)
		g.Quads = make([][4]uint32, nq)
		for i := 0; i < nq && r.err == nil; i++ {
			for c := range g.Quads[i] {
				idx := r.uvarint()
				if r.err == nil && int(idx) >= np {
					r.err = fmt.Errorf("quad index %d out of range", idx)
				}
				g.Quads[i][c] = idx
			}
		}
	}
}
