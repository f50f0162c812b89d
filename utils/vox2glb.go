package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/voxmesh/vox"
)

// RunVOX2GLB converts one .vox file into a .glb.
func RunVOX2GLB(inPath, outPath string, opts vox.Options) error {
	f, err := vox.Load(inPath, opts)
	if err != nil {
		return err
	}
	for _, w := range f.Warnings {
		slog.Warn(w, "path", inPath)
	}
	models, err := f.Meshes(opts)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return fmt.Errorf("%s: no visible voxels", inPath)
	}
	doc, err := BuildGLB([]vox.PackEntry{vox.NewPackEntry(f, models)})
	if err != nil {
		return err
	}
	return writeGLB(doc, outPath)
}

// RunVOXBatch2GLB converts every input into outDir/<name>.glb in parallel.
// It fails only when no input converted.
func RunVOXBatch2GLB(ctx context.Context, outDir string, inputs []string, opts vox.Options, workers int) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no .vox files provided")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	results := ImportBatch(ctx, inputs, opts, workers)
	written := 0
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if len(r.Models) == 0 {
			slog.Warn("no visible voxels", "path", r.Path)
			continue
		}
		doc, err := BuildGLB([]vox.PackEntry{r.Entry()})
		if err != nil {
			slog.Error("glb build failed", "path", r.Path, "err", err)
			continue
		}
		out := filepath.Join(outDir, vox.BaseName(r.Path)+".glb")
		if err := writeGLB(doc, out); err != nil {
			return err
		}
		written++
	}
	slog.Info("batch converted", "written", written, "failed", Failed(results))
	if written == 0 {
		return fmt.Errorf("none of %d files converted", len(inputs))
	}
	return nil
}

func writeGLB(doc *gltf.Document, path string) error {
	data, err := EncodeGLB(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
