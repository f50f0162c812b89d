package utils

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/voxelsplace/voxmesh/vox"
)

// ImportResult is the outcome of importing one path.
type ImportResult struct {
	Path   string
	File   *vox.File
	Models []vox.MeshModel
	Err    error
}

// Entry bundles a successful result for the GLB and pack writers.
func (r *ImportResult) Entry() vox.PackEntry {
	return vox.NewPackEntry(r.File, r.Models)
}

// ImportBatch loads and meshes every path with at most workers files in
// flight. Results keep the input order and a failed file never stops the
// others. Unsupported versions are logged as skips.
func ImportBatch(ctx context.Context, paths []string, opts vox.Options, workers int) []ImportResult {
	results := make([]ImportResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = importOne(ctx, path, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func importOne(ctx context.Context, path string, opts vox.Options) ImportResult {
	res := ImportResult{Path: path}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	f, err := vox.Load(path, opts)
	if err == nil {
		res.File = f
		res.Models, err = f.Meshes(opts)
	}
	res.Err = err
	switch {
	case errors.Is(err, vox.ErrUnsupportedVersion):
		slog.Warn("skipping file", "path", path, "err", err)
	case err != nil:
		slog.Error("import failed", "path", path, "err", err)
	default:
		for _, w := range f.Warnings {
			slog.Warn(w, "path", path)
		}
		slog.Debug("imported", "path", path, "models", len(res.Models))
	}
	return res
}

// Failed counts the results carrying an error.
func Failed(results []ImportResult) int {
	n := 0
	for i := range results {
		if results[i].Err != nil {
			n++
		}
	}
	return n
}
