package utils

import "fmt"

// RunPack2GLB writes every entry of a mesh pack into one .glb, one parent
// node per entry.
func RunPack2GLB(inPath, outPath string) error {
	pack, err := LoadPack(inPath)
	if err != nil {
		return err
	}
	if len(pack.Entries) == 0 {
		return fmt.Errorf("%s: empty pack", inPath)
	}
	doc, err := BuildGLB(pack.Entries)
	if err != nil {
		return err
	}
	return writeGLB(doc, outPath)
}
