package utils

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/voxelsplace/voxmesh/vox"
)

// NoiseSize is the edge length of generated noise models.
const NoiseSize = 16

// generateNoiseVoxels fills the given percentage of a NoiseSize cube with
// random palette indices in [1..63].
func generateNoiseVoxels(percentage float64, r *rand.Rand) []vox.Voxel {
	percentage = max(0, min(100, percentage))
	total := NoiseSize * NoiseSize * NoiseSize
	want := min(total, int(float64(total)*percentage/100+0.5))

	// partial Fisher-Yates over all cell indices
	idx := make([]int, total)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	voxels := make([]vox.Voxel, want)
	for k := 0; k < want; k++ {
		i := idx[k]
		voxels[k] = vox.Voxel{
			X:     uint8(i % NoiseSize),
			Y:     uint8(i / NoiseSize % NoiseSize),
			Z:     uint8(i / (NoiseSize * NoiseSize)),
			Color: uint8(1 + r.Intn(63)),
		}
	}
	return voxels
}

// noiseFile builds a one-model scene: root, group, transform, shape.
func noiseFile(voxels []vox.Voxel) *vox.Writer {
	return vox.NewWriter().
		Model([3]int{NoiseSize, NoiseSize, NoiseSize}, voxels).
		Transform(0, nil, 1, -1, nil).
		Group(1, nil, 2).
		Transform(2, vox.Dict{"_name": "noise"}, 3, 0, nil).
		Shape(3, nil, 0).
		Layer(0, vox.Dict{"_name": "noise"})
}

// RunGenerateNoiseVOX creates amount files named 0.vox..(amount-1).vox in
// outDir, each filled to the given percentage.
func RunGenerateNoiseVOX(percentage float64, amount int, outDir string) error {
	return RunGenerateNoiseVOXRange(percentage, percentage, amount, outDir)
}

// RunGenerateNoiseVOXRange samples each file's fill percentage uniformly in
// [percentageMin, percentageMax].
func RunGenerateNoiseVOXRange(percentageMin, percentageMax float64, amount int, outDir string) error {
	return generateNoise(percentageMin, percentageMax, amount, outDir, uint64(time.Now().UnixNano()))
}

func generateNoise(percentageMin, percentageMax float64, amount int, outDir string, baseSeed uint64) error {
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	lo, hi := max(0, min(percentageMin, percentageMax)), min(100, max(percentageMin, percentageMax))

	for i := 0; i < amount; i++ {
		// Weyl sequence per file
		const weyl = uint64(0x9e3779b97f4a7c15)
		seed := baseSeed ^ (uint64(i)+1)*weyl
		r := rand.New(rand.NewSource(int64(seed & 0x7fffffffffffffff)))

		perc := lo
		if hi > lo {
			perc += r.Float64() * (hi - lo)
		}

		path := filepath.Join(outDir, fmt.Sprintf("%d.vox", i))
		if err := noiseFile(generateNoiseVoxels(perc, r)).Save(path); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
	}
	return nil
}
