package vox

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedVersion reports a magic or version mismatch. Batch callers
	// skip the file and continue.
	ErrUnsupportedVersion = errors.New("unsupported vox version")
	// ErrMalformedChunk reports length fields inconsistent with the buffer,
	// truncated content or undecodable values.
	ErrMalformedChunk = errors.New("malformed chunk")
	ErrInvalidRotation = errors.New("invalid rotation code")
	// ErrMissingNode reports a scene graph reference to an absent ID.
	ErrMissingNode = errors.New("missing referenced node")
	ErrSceneCycle  = errors.New("scene graph cycle")
)

// VersionError carries the header found in a file that is not a version 200 .vox.
type VersionError struct {
	Magic   string
	Version int32
}

func (e *VersionError) Error() string {
	if e.Magic != magicVOX {
		return fmt.Sprintf("not a vox file (magic %q)", e.Magic)
	}
	return fmt.Sprintf("vox version %d not supported (want %d)", e.Version, supportedVersion)
}

func (e *VersionError) Unwrap() error { return ErrUnsupportedVersion }

// FormatError locates a malformed chunk inside the file.
type FormatError struct {
	Chunk  string
	Offset int
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Chunk == "" {
		return fmt.Sprintf("malformed file at offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("malformed %s chunk at offset %d: %s", e.Chunk, e.Offset, e.Msg)
}

func (e *FormatError) Unwrap() error { return ErrMalformedChunk }

// FileError attaches the originating file name to any import error.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string { return e.File + ": " + e.Err.Error() }

func (e *FileError) Unwrap() error { return e.Err }
