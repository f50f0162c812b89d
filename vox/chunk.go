package vox

// Chunk tags of a version 200 file. Tags not listed here are skipped.
const (
	tagMAIN = "MAIN"
	tagPACK = "PACK"
	tagSIZE = "SIZE"
	tagXYZI = "XYZI"
	tagRGBA = "RGBA"
	tagMATL = "MATL"
	tagLAYR = "LAYR"
	tagNTRN = "nTRN"
	tagNGRP = "nGRP"
	tagNSHP = "nSHP"
)

const (
	magicVOX         = "VOX "
	supportedVersion = 200

	fileHeaderLen  = 8
	chunkHeaderLen = 12
)

// chunkHeader is the fixed 12 byte prefix of every chunk.
// Content holds the chunk's own payload, Children the nested chunks after it.
type chunkHeader struct {
	Tag      string
	Content  int32
	Children int32
	Offset   int // file offset of the tag
}

// contentStart is the file offset of the first content byte.
func (h chunkHeader) contentStart() int { return h.Offset + chunkHeaderLen }

// end is the file offset right after the chunk and all of its children.
func (h chunkHeader) end() int {
	return h.Offset + chunkHeaderLen + int(h.Content) + int(h.Children)
}
