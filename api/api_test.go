package api

import (
	"bytes"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxmesh/vox"
)

func cube() []byte {
	return vox.NewWriter().
		Model([3]int{2, 2, 2}, []vox.Voxel{
			{X: 0, Y: 0, Z: 0, Color: 3}, {X: 1, Y: 0, Z: 0, Color: 3}, {X: 0, Y: 1, Z: 0, Color: 3}, {X: 1, Y: 1, Z: 0, Color: 3},
			{X: 0, Y: 0, Z: 1, Color: 4}, {X: 1, Y: 0, Z: 1, Color: 4}, {X: 0, Y: 1, Z: 1, Color: 4}, {X: 1, Y: 1, Z: 1, Color: 4},
		}).
		Bytes()
}

func decodeGLB(t *testing.T, data []byte) *gltf.Document {
	t.Helper()
	var doc gltf.Document
	require.NoError(t, gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc))
	return &doc
}

func TestVOXToGLB(t *testing.T) {
	out, err := VOXToGLB("cube.vox", cube(), vox.Options{})
	require.NoError(t, err)
	doc := decodeGLB(t, out)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "cube", doc.Nodes[0].Name)
	assert.Equal(t, "cube_1", doc.Nodes[1].Name)
	require.Len(t, doc.Meshes, 1)
	assert.Len(t, doc.Meshes[0].Primitives, 2, "one primitive per color")

	_, err = VOXToGLB("empty.vox", vox.NewWriter().Model([3]int{1, 1, 1}, nil).Bytes(), vox.Options{})
	assert.Error(t, err)

	_, err = VOXToGLB("bad.vox", []byte("RIFF"), vox.Options{})
	assert.ErrorIs(t, err, vox.ErrUnsupportedVersion)
}

func TestVOXSummary(t *testing.T) {
	s, err := VOXSummary("cube.vox", cube(), vox.Options{})
	require.NoError(t, err)
	assert.Contains(t, s, "cube: vox 200, 1 models")
}

func TestPackVOX(t *testing.T) {
	data, err := PackVOX(map[string][]byte{"b.vox": cube(), "a.vox": cube()}, vox.Options{}, vox.PackCompZlib)
	require.NoError(t, err)
	pack, comp, err := vox.UnmarshalPack(data)
	require.NoError(t, err)
	assert.Equal(t, vox.PackCompZlib, comp)
	require.Len(t, pack.Entries, 2)
	assert.Equal(t, "a", pack.Entries[0].Name)
	assert.Equal(t, "b", pack.Entries[1].Name)

	glb, err := PackToGLB(data)
	require.NoError(t, err)
	doc := decodeGLB(t, glb)
	assert.Len(t, doc.Scenes[0].Nodes, 2)

	_, err = PackVOX(nil, vox.Options{}, vox.PackCompNone)
	assert.Error(t, err)
	_, err = PackVOX(map[string][]byte{"x.vox": []byte("VOX ")}, vox.Options{}, vox.PackCompNone)
	assert.Error(t, err)
	_, err = PackToGLB([]byte("nope"))
	assert.ErrorIs(t, err, vox.ErrPackCorrupt)
}
