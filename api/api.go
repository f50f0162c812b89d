package api

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/muesli/termenv"

	"github.com/voxelsplace/voxmesh/utils"
	"github.com/voxelsplace/voxmesh/vox"
)

// VOXToGLB takes .vox file bytes and returns .glb bytes.
func VOXToGLB(name string, voxBytes []byte, opts vox.Options) ([]byte, error) {
	f, models, err := vox.Import(name, voxBytes, opts)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("%s: no visible voxels", name)
	}
	doc, err := utils.BuildGLB([]vox.PackEntry{vox.NewPackEntry(f, models)})
	if err != nil {
		return nil, err
	}
	return utils.EncodeGLB(doc)
}

// VOXSummary returns the plain text layer and node listing of a .vox file.
func VOXSummary(name string, voxBytes []byte, opts vox.Options) (string, error) {
	f, err := vox.Decode(name, voxBytes, opts)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := f.WriteSummary(&out, termenv.Ascii); err != nil {
		return "", err
	}
	return out.String(), nil
}

// PackVOX meshes each named .vox blob into one mesh pack. Entries are
// sorted by name; any file that fails aborts the pack.
func PackVOX(files map[string][]byte, opts vox.Options, comp vox.PackCompression) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files")
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	pack := &vox.Pack{Scale: opts.Scale}
	for _, name := range names {
		f, models, err := vox.Import(name, files[name], opts)
		if err != nil {
			return nil, err
		}
		pack.Entries = append(pack.Entries, vox.NewPackEntry(f, models))
	}
	return pack.Marshal(comp)
}

// PackToGLB converts a mesh pack into .glb bytes.
func PackToGLB(packBytes []byte) ([]byte, error) {
	pack, _, err := vox.UnmarshalPack(packBytes)
	if err != nil {
		return nil, err
	}
	doc, err := utils.BuildGLB(pack.Entries)
	if err != nil {
		return nil, err
	}
	return utils.EncodeGLB(doc)
}
