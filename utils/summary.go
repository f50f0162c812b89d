package utils

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/voxelsplace/voxmesh/vox"
)

// RunSummary prints the layer and node listing of each input. Every file is
// attempted; the first failure is returned afterwards.
func RunSummary(w io.Writer, inputs []string, opts vox.Options, profile termenv.Profile) error {
	var firstErr error
	for i, path := range inputs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f, err := vox.Load(path, opts)
		if err == nil {
			err = f.WriteSummary(w, profile)
		}
		if err != nil {
			fmt.Fprintln(w, "Error:", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
