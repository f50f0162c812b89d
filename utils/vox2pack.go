package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/voxelsplace/voxmesh/vox"
)

// CreatePack imports the inputs in parallel and writes their meshes to a
// mesh pack. Failed inputs are logged and left out.
func CreatePack(ctx context.Context, inputFiles []string, outputFile string, opts vox.Options, workers int, comp vox.PackCompression) error {
	if len(inputFiles) == 0 {
		return fmt.Errorf("no .vox files provided")
	}
	results := ImportBatch(ctx, inputFiles, opts, workers)
	pack := &vox.Pack{Scale: opts.Scale}
	for i := range results {
		if results[i].Err == nil {
			pack.Entries = append(pack.Entries, results[i].Entry())
		}
	}
	if len(pack.Entries) == 0 {
		return fmt.Errorf("none of %d files imported", len(inputFiles))
	}

	start := time.Now()
	data, err := pack.Marshal(comp)
	if err != nil {
		return err
	}
	slog.Info("pack encoded", "entries", len(pack.Entries), "compression", comp, "bytes", len(data), "took", time.Since(start))
	return os.WriteFile(outputFile, data, 0o644)
}

// LoadPack reads and decodes a mesh pack.
func LoadPack(path string) (*vox.Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pack, comp, err := vox.UnmarshalPack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("pack decoded", "path", path, "entries", len(pack.Entries), "compression", comp)
	return pack, nil
}
