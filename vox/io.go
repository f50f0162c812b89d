package vox

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
)

// File is one decoded .vox scene.
type File struct {
	Name       string // base name without extension, used for generated shape names
	Path       string // the name Decode was given, used to label errors
	Version    int32
	Palette    Palette
	HasPalette bool
	Materials  MaterialTable
	Scene      Scene
	// Warnings lists recoverable oddities: skipped chunks, stray ids.
	Warnings []string
	// Sum is the xxhash64 of the raw file.
	Sum uint64
}

// chunks MagicaVoxel writes that carry nothing the importer needs
var ignoredTags = map[string]bool{
	tagPACK: true,
	"rOBJ":  true,
	"rCAM":  true,
	"NOTE":  true,
	"IMAP":  true,
}

// BaseName strips directories and the extension from a file path.
func BaseName(path string) string {
	b := filepath.Base(path)
	return strings.TrimSuffix(b, filepath.Ext(b))
}

// Load reads and decodes the file at path.
func Load(path string, opts Options) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{File: path, Err: err}
	}
	return Decode(path, data, opts)
}

// Read decodes a whole .vox stream. name only labels errors and shapes.
func Read(name string, r io.Reader, opts Options) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &FileError{File: name, Err: err}
	}
	return Decode(name, data, opts)
}

// Decode parses a version 200 .vox file held in memory and resolves its
// scene graph. Every error is a *FileError naming the file.
func Decode(name string, data []byte, opts Options) (*File, error) {
	f := &File{
		Name:      BaseName(name),
		Path:      name,
		Materials: DefaultMaterials(),
		Sum:       xxhash.Sum64(data),
	}
	if err := f.decode(data, opts); err != nil {
		return nil, &FileError{File: name, Err: err}
	}
	if !f.HasPalette {
		if opts.FallbackPalette != nil {
			f.Palette = *opts.FallbackPalette
		} else {
			f.Palette = DefaultPalette()
		}
	}
	if err := f.Scene.resolve(); err != nil {
		return nil, &FileError{File: name, Err: err}
	}
	return f, nil
}

func (f *File) warn(format string, args ...any) {
	f.Warnings = append(f.Warnings, fmt.Sprintf(format, args...))
}

func (f *File) decode(data []byte, opts Options) error {
	if len(data) < 4 || string(data[:4]) != magicVOX {
		magic := string(data[:min(4, len(data))])
		return &VersionError{Magic: magic}
	}
	if len(data) < fileHeaderLen {
		return &FormatError{Offset: len(data), Msg: "truncated file header"}
	}
	f.Version = int32(binary.LittleEndian.Uint32(data[4:8]))
	if f.Version != supportedVersion {
		return &VersionError{Magic: magicVOX, Version: f.Version}
	}

	main, err := readChunkHeader(data, fileHeaderLen, len(data))
	if err != nil {
		return err
	}
	if main.Tag != tagMAIN {
		return &FormatError{Chunk: main.Tag, Offset: main.Offset, Msg: "first chunk is not MAIN"}
	}
	if end := main.end(); end < len(data) {
		f.warn("%d trailing bytes after MAIN", len(data)-end)
	}
	d := &decoder{file: f, data: data, opts: opts}
	return d.walk(main.contentStart()+int(main.Content), main.end())
}

// readChunkHeader reads the header at off and checks that the chunk and its
// children fit before limit.
func readChunkHeader(data []byte, off, limit int) (chunkHeader, error) {
	if limit-off < chunkHeaderLen {
		return chunkHeader{}, &FormatError{Offset: off, Msg: fmt.Sprintf("chunk header needs %d bytes, %d left", chunkHeaderLen, limit-off)}
	}
	h := chunkHeader{
		Tag:      string(data[off : off+4]),
		Content:  int32(binary.LittleEndian.Uint32(data[off+4:])),
		Children: int32(binary.LittleEndian.Uint32(data[off+8:])),
		Offset:   off,
	}
	if h.Content < 0 || h.Children < 0 {
		return h, &FormatError{Chunk: h.Tag, Offset: off, Msg: fmt.Sprintf("negative sizes %d/%d", h.Content, h.Children)}
	}
	if int64(off)+chunkHeaderLen+int64(h.Content)+int64(h.Children) > int64(limit) {
		return h, &FormatError{Chunk: h.Tag, Offset: off, Msg: fmt.Sprintf("sizes %d/%d exceed %d remaining bytes", h.Content, h.Children, limit-off-chunkHeaderLen)}
	}
	return h, nil
}

type decoder struct {
	file *File
	data []byte
	opts Options

	size    [3]int
	hasSize bool
}

// walk decodes the chunks laid out in [off, end), descending into children.
func (d *decoder) walk(off, end int) error {
	for off < end {
		h, err := readChunkHeader(d.data, off, end)
		if err != nil {
			return err
		}
		if err := d.chunk(h); err != nil {
			return err
		}
		if h.Children > 0 {
			if err := d.walk(h.contentStart()+int(h.Content), h.end()); err != nil {
				return err
			}
		}
		off = h.end()
	}
	return nil
}

func (d *decoder) chunk(h chunkHeader) error {
	f := d.file
	r := newChunkReader(d.data, h)
	switch h.Tag {
	case tagSIZE:
		d.size = decodeSIZE(r)
		d.hasSize = true
	case tagXYZI:
		if !d.hasSize {
			r.fail("voxel data without a preceding SIZE")
			break
		}
		voxels := decodeXYZI(r)
		if r.err != nil {
			break
		}
		id := len(f.Scene.Models)
		grid := NewVoxelGrid(d.size, voxels)
		if grid.Len() == 0 {
			f.warn("model %d has no voxels", id)
		}
		f.Scene.Models = append(f.Scene.Models, Model{ID: id, Size: d.size, Grid: grid})
		d.hasSize = false
	case tagRGBA:
		f.Palette = decodeRGBA(r)
		f.HasPalette = r.err == nil
	case tagMATL:
		decodeMATL(r, &f.Materials, d.opts.MaxMaterialMaps, f.warn)
	case tagLAYR:
		decodeLAYR(r, &f.Scene)
	case tagNTRN:
		decodeNTRN(r, &f.Scene)
	case tagNGRP:
		decodeNGRP(r, &f.Scene)
	case tagNSHP:
		decodeNSHP(r, &f.Scene)
	default:
		if !ignoredTags[h.Tag] {
			f.warn("unknown chunk %q at offset %d skipped", h.Tag, h.Offset)
		}
	}
	return r.err
}
