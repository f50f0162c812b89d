package vox

// Options are the caller policies of an import.
type Options struct {
	// ImportHidden also meshes shapes hidden by their own flag or their layer.
	ImportHidden bool
	// MaxMaterialMaps forces emission and transmission to 1 wherever a
	// material sets them.
	MaxMaterialMaps bool
	// OriginsAtBottom moves each model's origin down to its lowest world Z.
	OriginsAtBottom bool
	// Scale multiplies voxel units; zero means DefaultScale.
	Scale float32
	// FallbackPalette replaces DefaultPalette for files without an RGBA chunk.
	FallbackPalette *Palette
}

func (o Options) scale() float32 {
	if o.Scale == 0 {
		return DefaultScale
	}
	return o.Scale
}
