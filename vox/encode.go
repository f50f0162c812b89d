package vox

import (
	"bytes"
	"encoding/binary"
	"os"
	"slices"
)

// Writer assembles a version 200 .vox file chunk by chunk. Chunks are
// written in call order as children of MAIN.
type Writer struct {
	version  int32
	children bytes.Buffer
}

func NewWriter() *Writer { return &Writer{version: supportedVersion} }

// SetVersion overrides the header version.
func (w *Writer) SetVersion(v int32) *Writer {
	w.version = v
	return w
}

// chunk appends one chunk without children.
func (w *Writer) chunk(tag string, content []byte) {
	w.children.WriteString(tag)
	_ = binary.Write(&w.children, binary.LittleEndian, int32(len(content)))
	_ = binary.Write(&w.children, binary.LittleEndian, int32(0))
	w.children.Write(content)
}

type contentBuf struct{ bytes.Buffer }

func (b *contentBuf) int32(v int32) { _ = binary.Write(b, binary.LittleEndian, v) }

func (b *contentBuf) string(s string) {
	b.int32(int32(len(s)))
	b.WriteString(s)
}

// dict writes pairs in key order so output is deterministic.
func (b *contentBuf) dict(d Dict) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	b.int32(int32(len(keys)))
	for _, k := range keys {
		b.string(k)
		b.string(d[k])
	}
}

// Model writes a SIZE and XYZI pair. Models are numbered in call order.
func (w *Writer) Model(size [3]int, voxels []Voxel) *Writer {
	var b contentBuf
	for _, s := range size {
		b.int32(int32(s))
	}
	w.chunk(tagSIZE, b.Bytes())

	b = contentBuf{}
	b.int32(int32(len(voxels)))
	for _, v := range voxels {
		b.Write([]byte{v.X, v.Y, v.Z, v.Color})
	}
	w.chunk(tagXYZI, b.Bytes())
	return w
}

// Transform writes an nTRN node with a single frame.
func (w *Writer) Transform(id int32, attrs Dict, child, layer int32, frame Dict) *Writer {
	var b contentBuf
	b.int32(id)
	b.dict(attrs)
	b.int32(child)
	b.int32(-1)
	b.int32(layer)
	b.int32(1)
	b.dict(frame)
	w.chunk(tagNTRN, b.Bytes())
	return w
}

func (w *Writer) Group(id int32, attrs Dict, children ...int32) *Writer {
	var b contentBuf
	b.int32(id)
	b.dict(attrs)
	b.int32(int32(len(children)))
	for _, c := range children {
		b.int32(c)
	}
	w.chunk(tagNGRP, b.Bytes())
	return w
}

func (w *Writer) Shape(id int32, attrs Dict, models ...int32) *Writer {
	var b contentBuf
	b.int32(id)
	b.dict(attrs)
	b.int32(int32(len(models)))
	for _, m := range models {
		b.int32(m)
		b.dict(nil)
	}
	w.chunk(tagNSHP, b.Bytes())
	return w
}

func (w *Writer) Layer(id int32, attrs Dict) *Writer {
	var b contentBuf
	b.int32(id)
	b.dict(attrs)
	b.int32(-1)
	w.chunk(tagLAYR, b.Bytes())
	return w
}

// Palette writes an RGBA chunk: colors 1..255 then an empty last entry.
func (w *Writer) Palette(p *Palette) *Writer {
	var b contentBuf
	for i := 1; i < 256; i++ {
		c := p.RGBA8(uint8(i))
		b.Write(c[:])
	}
	b.Write([]byte{0, 0, 0, 0})
	w.chunk(tagRGBA, b.Bytes())
	return w
}

func (w *Writer) Material(id int32, attrs Dict) *Writer {
	var b contentBuf
	b.int32(id)
	b.dict(attrs)
	w.chunk(tagMATL, b.Bytes())
	return w
}

// Raw appends an arbitrary chunk, for tags the importer skips.
func (w *Writer) Raw(tag string, content []byte) *Writer {
	w.chunk(tag, content)
	return w
}

// Bytes returns the complete file.
func (w *Writer) Bytes() []byte {
	var out bytes.Buffer
	out.WriteString(magicVOX)
	_ = binary.Write(&out, binary.LittleEndian, w.version)
	out.WriteString(tagMAIN)
	_ = binary.Write(&out, binary.LittleEndian, int32(0))
	_ = binary.Write(&out, binary.LittleEndian, int32(w.children.Len()))
	out.Write(w.children.Bytes())
	return out.Bytes()
}

func (w *Writer) Save(path string) error {
	return os.WriteFile(path, w.Bytes(), 0o644)
}
