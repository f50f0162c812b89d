package vox

import (
	"fmt"
	"strconv"
)

// DefaultRoughness is the roughness of every slot without a MATL record.
const DefaultRoughness = 0.5

type MaterialKind uint8

const (
	MaterialDiffuse MaterialKind = iota
	MaterialMetal
	MaterialGlass
	MaterialEmit
	MaterialBlend
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialMetal:
		return "metal"
	case MaterialGlass:
		return "glass"
	case MaterialEmit:
		return "emit"
	case MaterialBlend:
		return "blend"
	default:
		return "diffuse"
	}
}

// Material is the property vector of one color slot, every channel in [0,1].
type Material struct {
	Kind         MaterialKind
	Roughness    float32
	Metallic     float32
	Emission     float32
	Transmission float32
}

// MaterialTable is indexed by color index. Slot 0 is never referenced by a voxel.
type MaterialTable [256]Material

func DefaultMaterials() MaterialTable {
	var t MaterialTable
	for i := range t {
		t[i].Roughness = DefaultRoughness
	}
	return t
}

// materialKinds maps the _type values. Unlisted types read as diffuse.
var materialKinds = map[string]MaterialKind{
	"_metal": MaterialMetal,
	"_glass": MaterialGlass,
	"_emit":  MaterialEmit,
	"_blend": MaterialBlend,
}

// applyMATL updates slot id from a MATL dictionary. Keys a kind does not use
// are ignored and absent keys leave the slot's defaults untouched. With
// maxMaps, present emission and transmission keys force the channel to 1.
func (t *MaterialTable) applyMATL(id int32, d Dict, maxMaps bool) error {
	m := &t[id]
	m.Kind = materialKinds[d["_type"]]
	if m.Kind == MaterialDiffuse {
		return nil
	}

	get := func(keys ...string) (float32, bool, error) {
		for _, k := range keys {
			s, ok := d[k]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(s, 32)
			if err != nil {
				return 0, false, fmt.Errorf("material %d key %s: %w", id, k, err)
			}
			return clamp01(float32(v)), true, nil
		}
		return 0, false, nil
	}
	set := func(dst *float32, forced bool, keys ...string) error {
		v, ok, err := get(keys...)
		if err != nil || !ok {
			return err
		}
		if forced {
			v = 1
		}
		*dst = v
		return nil
	}

	if err := set(&m.Roughness, false, "_rough"); err != nil {
		return err
	}
	if m.Kind == MaterialMetal || m.Kind == MaterialBlend {
		if err := set(&m.Metallic, false, "_metal"); err != nil {
			return err
		}
	}
	if m.Kind == MaterialEmit {
		if err := set(&m.Emission, maxMaps, "_emit", "_flux"); err != nil {
			return err
		}
	}
	if (m.Kind == MaterialGlass || m.Kind == MaterialBlend) && d["_media_type"] != "_sss" {
		if err := set(&m.Transmission, maxMaps, "_alpha", "_trans"); err != nil {
			return err
		}
	}
	return nil
}

// decodeMATL reads one MATL chunk into the table. IDs outside 1..255 are
// reported through warn and skipped.
func decodeMATL(r *chunkReader, t *MaterialTable, maxMaps bool, warn func(string, ...any)) {
	id := r.int32()
	d := r.dict()
	if r.err != nil {
		return
	}
	if id < 1 || id > 255 {
		warn("material id %d ignored", id)
		return
	}
	if err := t.applyMATL(id, d, maxMaps); err != nil {
		r.fail("%v", err)
	}
}
