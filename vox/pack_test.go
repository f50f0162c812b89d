package vox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePack(t *testing.T) *Pack {
	t.Helper()
	f, models, err := Import("castle.vox", twoShapeScene().
		Material(1, Dict{"_type": "_glass", "_alpha": "0.5"}).
		Bytes(), Options{OriginsAtBottom: true})
	require.NoError(t, err)
	return &Pack{Entries: []PackEntry{NewPackEntry(f, models)}}
}

func TestPackRoundTrip(t *testing.T) {
	for _, comp := range []PackCompression{PackCompNone, PackCompZlib, PackCompZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			p := samplePack(t)
			data, err := p.Marshal(comp)
			require.NoError(t, err)

			got, gotComp, err := UnmarshalPack(data)
			require.NoError(t, err)
			assert.Equal(t, comp, gotComp)
			assert.Equal(t, float32(DefaultScale), got.Scale)
			require.Len(t, got.Entries, 1)

			want, e := &p.Entries[0], &got.Entries[0]
			assert.Equal(t, want.Name, e.Name)
			assert.Equal(t, want.Source, e.Source)
			assert.Equal(t, want.Palette.RGBA8(7), e.Palette.RGBA8(7))
			assert.Equal(t, want.Materials, e.Materials)
			require.Len(t, e.Models, len(want.Models))
			for i := range want.Models {
				wm, gm := want.Models[i], e.Models[i]
				assert.Equal(t, wm.Name, gm.Name)
				assert.Equal(t, wm.ModelID, gm.ModelID)
				assert.Equal(t, wm.Size, gm.Size)
				assert.Equal(t, wm.Visible, gm.Visible)
				assert.Equal(t, wm.Kind, gm.Kind)
				assert.Equal(t, wm.World, gm.World)
				require.Len(t, gm.Mesh.Groups, len(wm.Mesh.Groups))
				for gi, wg := range wm.Mesh.Groups {
					gg := gm.Mesh.Groups[gi]
					assert.Equal(t, wg.Color, gg.Color)
					assert.Equal(t, wg.Quads, gg.Quads)
					require.Len(t, gg.Positions, len(wg.Positions))
					for pi := range wg.Positions {
						for c := 0; c < 3; c++ {
							assert.InDelta(t, wg.Positions[pi][c], gg.Positions[pi][c], 1e-5)
						}
					}
				}
			}
		})
	}
}

func TestPackChecksum(t *testing.T) {
	data, err := samplePack(t).Marshal(PackCompNone)
	require.NoError(t, err)
	data[len(data)-20] ^= 0xff
	_, _, err = UnmarshalPack(data)
	assert.ErrorIs(t, err, ErrPackCorrupt)
}

func TestPackRejectsGarbage(t *testing.T) {
	_, _, err := UnmarshalPack([]byte("VOXMPAC"))
	assert.ErrorIs(t, err, ErrPackCorrupt)

	data, err := samplePack(t).Marshal(PackCompZstd)
	require.NoError(t, err)
	_, _, err = UnmarshalPack(data[:len(data)/2])
	assert.Error(t, err)

	data[len(packMagicStr)+1] = 9
	_, _, err = UnmarshalPack(data)
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []PackCompression{PackCompNone, PackCompZlib, PackCompZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("lz4")
	assert.Error(t, err)
}

func TestZigzag(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 63, -64, 1 << 20, -(1 << 30)} {
		assert.Equal(t, v, unzigzag(zigzag(v)))
	}
	assert.Equal(t, uint32(1), zigzag(-1))
	assert.Equal(t, uint32(2), zigzag(1))
}
