package vox

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Dict is a chunk dictionary: string keys to string values.
type Dict map[string]string

// chunkReader is a cursor over one chunk's content. Every read is bounded by
// end; the first failure sticks and later reads return zero values, so
// callers check err once after decoding a record.
type chunkReader struct {
	data []byte
	pos  int
	end  int
	tag  string
	err  error
}

func newChunkReader(data []byte, h chunkHeader) *chunkReader {
	start := h.contentStart()
	return &chunkReader{data: data, pos: start, end: start + int(h.Content), tag: h.Tag}
}

func (r *chunkReader) fail(format string, args ...any) {
	if r.err != nil {
		return
	}
	r.err = &FormatError{Chunk: r.tag, Offset: r.pos, Msg: fmt.Sprintf(format, args...)}
}

func (r *chunkReader) remaining() int { return r.end - r.pos }

func (r *chunkReader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.remaining() {
		r.fail("read of %d bytes exceeds %d remaining", n, r.remaining())
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *chunkReader) int32() int32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// length reads an int32 that must be a non negative size.
func (r *chunkReader) length(what string) int {
	n := r.int32()
	if n < 0 {
		r.fail("negative %s %d", what, n)
		return 0
	}
	return int(n)
}

func (r *chunkReader) string() string {
	n := r.length("string length")
	b := r.bytes(n)
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.fail("string is not valid UTF-8")
		return ""
	}
	return string(b)
}

func (r *chunkReader) dict() Dict {
	n := r.length("dictionary size")
	// each pair takes at least two length prefixes
	if n > r.remaining()/8 {
		r.fail("dictionary of %d pairs exceeds %d remaining bytes", n, r.remaining())
		return nil
	}
	d := make(Dict, n)
	for i := 0; i < n && r.err == nil; i++ {
		k := r.string()
		v := r.string()
		d[k] = v
	}
	if r.err != nil {
		return nil
	}
	return d
}

// nodeID reads a scene node, layer or model reference. -1 is accepted only
// where allowNone is set.
func (r *chunkReader) nodeID(what string, allowNone bool) int32 {
	id := r.int32()
	if r.err != nil {
		return 0
	}
	if id == -1 && allowNone {
		return id
	}
	if id < 0 || id > maxNodeID {
		r.fail("%s id %d out of range", what, id)
		return 0
	}
	return id
}
