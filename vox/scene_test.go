package vox

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoShapeScene is root(0) -> group(1) -> transforms 2 and 3, each holding a
// shape (4 and 5) over models 0 and 1.
func twoShapeScene() *Writer {
	return NewWriter().
		Model([3]int{2, 1, 1}, []Voxel{{0, 0, 0, 1}, {1, 0, 0, 1}}).
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 2}}).
		Transform(0, nil, 1, -1, Dict{"_t": "10 0 0"}).
		Group(1, nil, 2, 3).
		Transform(2, Dict{"_name": "left"}, 4, 0, Dict{"_t": "0 5 0", "_r": "17"}).
		Transform(3, nil, 5, 0, Dict{"_t": "0 0 -3"}).
		Shape(4, nil, 0).
		Shape(5, nil, 1).
		Layer(0, Dict{"_name": "main"})
}

func TestSceneTwoShapes(t *testing.T) {
	f, err := Decode("dir/castle.vox", twoShapeScene().Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "castle", f.Name)
	assert.Len(t, f.Scene.Models, 2)
	assert.Empty(t, f.Warnings)

	root, ok := f.Scene.Root()
	require.True(t, ok)
	assert.Equal(t, "ROOT", root.Name)
	assert.Equal(t, NodeGroup, root.Kind)

	var got []Instance
	require.NoError(t, f.Scene.Traverse(f.Name, false, func(in Instance) error {
		got = append(got, in)
		return nil
	}))
	require.Len(t, got, 2)

	assert.Equal(t, "left", got[0].Name)
	assert.Equal(t, 0, got[0].ModelID)
	rot, err := DecodeRotation(17)
	require.NoError(t, err)
	want := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.Translate3D(0, 5, 0).Mul4(rot.Mat4()))
	assert.True(t, want.ApproxEqual(got[0].World))

	assert.Equal(t, "castle_1", got[1].Name)
	assert.Equal(t, 1, got[1].ModelID)
	assert.True(t, mgl32.Translate3D(10, 0, -3).ApproxEqual(got[1].World))
}

func TestSceneMeshesScaleWorld(t *testing.T) {
	f, models, err := Import("castle.vox", twoShapeScene().Bytes(), Options{})
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, 10, models[0].Mesh.QuadCount())
	assert.Equal(t, [3]int{2, 1, 1}, models[0].Size)
	assert.Equal(t, KindVoxel, models[0].Kind)
	assert.InDelta(t, 1.0, models[1].World.At(0, 3), 1e-6)
	assert.InDelta(t, -0.3, models[1].World.At(2, 3), 1e-6)
	assert.Equal(t, f.Name+"_1", models[1].Name)
}

func TestSceneHiddenLayer(t *testing.T) {
	data := NewWriter().
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 2}}).
		Transform(0, nil, 1, -1, nil).
		Group(1, nil, 2, 3).
		Transform(2, Dict{"_name": "shown"}, 4, 0, nil).
		Transform(3, Dict{"_name": "layered"}, 5, 1, nil).
		Shape(4, nil, 0).
		Shape(5, nil, 1).
		Layer(0, nil).
		Layer(1, Dict{"_name": "off", "_hidden": "1"}).
		Bytes()

	f, err := Decode("layers.vox", data, Options{})
	require.NoError(t, err)
	tr, ok := f.Scene.Transform(3)
	require.True(t, ok)
	assert.False(t, tr.Hidden)
	assert.False(t, tr.Visible)
	l, ok := f.Scene.Layer(0)
	require.True(t, ok)
	assert.Equal(t, "NoName0", l.Name)

	models, err := f.Meshes(Options{})
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "shown", models[0].Name)

	models, err = f.Meshes(Options{ImportHidden: true})
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.True(t, models[0].Visible)
	assert.Equal(t, "layered", models[1].Name)
	assert.False(t, models[1].Visible)
}

func TestSceneHiddenGroupHidesChildren(t *testing.T) {
	data := NewWriter().
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Transform(0, nil, 1, -1, nil).
		Group(1, nil, 2).
		Transform(2, Dict{"_hidden": "1"}, 3, -1, nil).
		Group(3, nil, 4).
		Transform(4, nil, 5, -1, nil).
		Shape(5, nil, 0).
		Bytes()
	f, err := Decode("h.vox", data, Options{})
	require.NoError(t, err)
	models, err := f.Meshes(Options{})
	require.NoError(t, err)
	assert.Empty(t, models)

	models, err = f.Meshes(Options{ImportHidden: true})
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.False(t, models[0].Visible, "visibility is ANDed down the tree")
}

func TestSceneForwardReferences(t *testing.T) {
	// nodes before the models and the group after its children
	data := NewWriter().
		Shape(3, nil, 0).
		Transform(2, nil, 3, -1, nil).
		Transform(0, nil, 1, -1, nil).
		Group(1, nil, 2).
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Bytes()
	_, models, err := Import("fwd.vox", data, Options{})
	require.NoError(t, err)
	assert.Len(t, models, 1)
}

func TestSceneWithoutGraph(t *testing.T) {
	data := NewWriter().
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Model([3]int{2, 2, 2}, nil).
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 3}}).
		Bytes()
	f, models, err := Import("plain.vox", data, Options{})
	require.NoError(t, err)
	assert.Len(t, f.Warnings, 1, "empty model is reported")
	require.Len(t, models, 2)
	assert.Equal(t, "plain_1", models[0].Name)
	assert.Equal(t, "plain_3", models[1].Name)
	assert.True(t, models[0].World.ApproxEqual(mgl32.Ident4()))
}

func TestSceneHighLayerIDStillHides(t *testing.T) {
	data := NewWriter().
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Transform(0, nil, 1, -1, nil).
		Group(1, nil, 2).
		Transform(2, nil, 3, 300, nil).
		Shape(3, nil, 0).
		Layer(300, Dict{"_name": "far", "_hidden": "1"}).
		Bytes()
	f, models, err := Import("far.vox", data, Options{})
	require.NoError(t, err)
	assert.Empty(t, models)
	assert.Empty(t, f.Warnings)
	l, ok := f.Scene.Layer(300)
	require.True(t, ok)
	assert.True(t, l.Hidden)
}

func TestSceneHiddenKeyPresence(t *testing.T) {
	data := NewWriter().
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 2}}).
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 3}}).
		Transform(0, nil, 1, -1, nil).
		Group(1, nil, 2, 3, 4).
		Transform(2, Dict{"_name": "plain"}, 5, 0, nil).
		Transform(3, Dict{"_name": "flagged", "_hidden": "0"}, 6, 0, nil).
		Transform(4, Dict{"_name": "on layer"}, 7, 1, nil).
		Shape(5, nil, 0).
		Shape(6, nil, 1).
		Shape(7, nil, 2).
		Layer(0, nil).
		Layer(1, Dict{"_hidden": "0"}).
		Bytes()
	f, models, err := Import("keys.vox", data, Options{})
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "plain", models[0].Name)
	l, ok := f.Scene.Layer(1)
	require.True(t, ok)
	assert.True(t, l.Hidden)
}

func TestMeshesErrorNamesPath(t *testing.T) {
	f, err := Decode("scenes/castle.vox", twoShapeScene().Bytes(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "castle", f.Name)
	assert.Equal(t, "scenes/castle.vox", f.Path)

	// break the graph after decoding so traversal resolves it again
	f.Scene.resolved = false
	f.Scene.Groups[0].Children = []int32{99}
	_, err = f.Meshes(Options{})
	assert.ErrorIs(t, err, ErrMissingNode)
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "scenes/castle.vox", fe.File)
}

func TestSceneErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{
			name: "missing child",
			data: NewWriter().Model([3]int{1, 1, 1}, nil).Transform(0, nil, 9, -1, nil).Bytes(),
			want: ErrMissingNode,
		},
		{
			name: "missing group child",
			data: NewWriter().Transform(0, nil, 1, -1, nil).Group(1, nil, 7).Bytes(),
			want: ErrMissingNode,
		},
		{
			name: "missing model",
			data: NewWriter().Transform(0, nil, 1, -1, nil).Shape(1, nil, 0).Bytes(),
			want: ErrMissingNode,
		},
		{
			name: "missing root",
			data: NewWriter().Model([3]int{1, 1, 1}, nil).Transform(2, nil, 1, -1, nil).Shape(1, nil, 0).Bytes(),
			want: ErrMissingNode,
		},
		{
			name: "missing layer",
			data: NewWriter().
				Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
				Transform(0, nil, 1, 7, nil).
				Shape(1, nil, 0).
				Bytes(),
			want: ErrMissingNode,
		},
		{
			name: "layer above 255 without a LAYR chunk",
			data: NewWriter().
				Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
				Transform(0, nil, 1, 300, nil).
				Shape(1, nil, 0).
				Layer(3, nil).
				Bytes(),
			want: ErrMissingNode,
		},
		{
			name: "cycle",
			data: NewWriter().Transform(0, nil, 1, -1, nil).Group(1, nil, 2).Transform(2, nil, 1, -1, nil).Bytes(),
			want: ErrSceneCycle,
		},
		{
			name: "bad rotation",
			data: NewWriter().Transform(0, nil, 1, -1, Dict{"_r": "0"}).Bytes(),
			want: ErrInvalidRotation,
		},
		{
			name: "bad translation",
			data: NewWriter().Transform(0, nil, 1, -1, Dict{"_t": "1 2"}).Bytes(),
			want: ErrMalformedChunk,
		},
		{
			name: "duplicate node",
			data: NewWriter().Transform(0, nil, 1, -1, nil).Group(0, nil).Bytes(),
			want: ErrMalformedChunk,
		},
		{
			name: "voxels without size",
			data: NewWriter().Raw(tagXYZI, []byte{0, 0, 0, 0}).Bytes(),
			want: ErrMalformedChunk,
		},
		{
			name: "size out of range",
			data: NewWriter().Model([3]int{0, 1, 300}, nil).Bytes(),
			want: ErrMalformedChunk,
		},
		{
			name: "wrong version",
			data: NewWriter().SetVersion(150).Bytes(),
			want: ErrUnsupportedVersion,
		},
		{
			name: "wrong magic",
			data: []byte("PNG\x00\x00\x00\x00\x00"),
			want: ErrUnsupportedVersion,
		},
		{
			name: "truncated",
			data: twoShapeScene().Bytes()[:100],
			want: ErrMalformedChunk,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode("bad.vox", tt.data, Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var fe *FileError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "bad.vox", fe.File)
		})
	}
}

func TestSceneVersionError(t *testing.T) {
	_, err := Decode("old.vox", NewWriter().SetVersion(150).Bytes(), Options{})
	var ve *VersionError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, int32(150), ve.Version)
	assert.Contains(t, err.Error(), "old.vox")
}

func TestSceneChunkSizesExceedParent(t *testing.T) {
	data := twoShapeScene().Bytes()
	// grow the first child's content size past the end of MAIN
	binary.LittleEndian.PutUint32(data[fileHeaderLen+chunkHeaderLen+4:], 1<<30)
	_, err := Decode("huge.vox", data, Options{})
	assert.ErrorIs(t, err, ErrMalformedChunk)
}

func TestSceneSkipsUnknownChunks(t *testing.T) {
	data := NewWriter().
		Raw("rOBJ", []byte{0, 0, 0, 0}).
		Raw("ZZZZ", []byte{1, 2, 3}).
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Bytes()
	f, models, err := Import("odd.vox", data, Options{})
	require.NoError(t, err)
	assert.Len(t, models, 1)
	require.Len(t, f.Warnings, 1)
	assert.Contains(t, f.Warnings[0], "ZZZZ")
}

func TestScenePaletteAndMaterials(t *testing.T) {
	pal := DefaultPalette()
	pal[1] = [4]float32{1, 0, 0, 1}
	data := NewWriter().
		Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).
		Palette(&pal).
		Material(1, Dict{"_type": "_emit", "_emit": "0.5"}).
		Material(256, Dict{"_type": "_metal"}).
		Bytes()

	f, err := Decode("mat.vox", data, Options{})
	require.NoError(t, err)
	assert.True(t, f.HasPalette)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, f.Palette[1])
	assert.InDelta(t, 0.5, f.Materials[1].Emission, 1e-6)
	assert.Len(t, f.Warnings, 1)

	f, err = Decode("mat.vox", data, Options{MaxMaterialMaps: true})
	require.NoError(t, err)
	assert.Equal(t, float32(1), f.Materials[1].Emission)
}

func TestSceneFallbackPalette(t *testing.T) {
	fallback, err := PaletteFromHex([]string{"#00ff00"})
	require.NoError(t, err)
	data := NewWriter().Model([3]int{1, 1, 1}, []Voxel{{0, 0, 0, 1}}).Bytes()

	f, err := Decode("p.vox", data, Options{FallbackPalette: &fallback})
	require.NoError(t, err)
	assert.False(t, f.HasPalette)
	assert.Equal(t, [4]float32{0, 1, 0, 1}, f.Palette[1])

	f, err = Decode("p.vox", data, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette(), f.Palette)
}

func TestSceneOriginsAtBottom(t *testing.T) {
	data := NewWriter().
		Model([3]int{2, 2, 4}, solidCube(2, 1)).
		Transform(0, nil, 1, -1, Dict{"_t": "0 0 10", "_r": "4"}).
		Shape(1, nil, 0).
		Bytes()
	f, err := Decode("b.vox", data, Options{})
	require.NoError(t, err)
	plain, err := f.Meshes(Options{})
	require.NoError(t, err)
	bottom, err := f.Meshes(Options{OriginsAtBottom: true})
	require.NoError(t, err)
	require.Len(t, plain, 1)
	require.Len(t, bottom, 1)

	// size z 4 puts the origin 2 voxels above the cube's base
	assert.InDelta(t, 1.0, plain[0].World.At(2, 3), 1e-5)
	assert.InDelta(t, 0.8, bottom[0].World.At(2, 3), 1e-5)

	world := func(m MeshModel, i int) mgl32.Vec3 {
		p := m.Mesh.Groups[0].Positions[i]
		return m.World.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1}).Vec3()
	}
	for i := range plain[0].Mesh.Groups[0].Positions {
		assert.True(t, world(plain[0], i).ApproxEqualThreshold(world(bottom[0], i), 1e-5))
	}
}

func TestReadFromReader(t *testing.T) {
	f, err := Read("stream.vox", bytes.NewReader(twoShapeScene().Bytes()), Options{})
	require.NoError(t, err)
	assert.Equal(t, int32(200), f.Version)
	assert.NotZero(t, f.Sum)
}
