//go:build !(js && wasm)

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/muesli/termenv"

	"github.com/voxelsplace/voxmesh/config"
	"github.com/voxelsplace/voxmesh/utils"
)

func usage() {
	fmt.Println("Usage: voxmesh <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  vox2glb input.vox output.glb                          (mesh a .vox scene into a .glb)")
	fmt.Println("  voxbatch2glb output_dir input1.vox [input2.vox ...]   (convert many .vox files in parallel)")
	fmt.Println("  vox2pack output.voxmpack input1.vox [input2.vox ...]  (mesh many .vox files into one pack)")
	fmt.Println("  pack2glb input.voxmpack output.glb                    (convert a pack -> .glb, one node per entry)")
	fmt.Println("  summary input1.vox [input2.vox ...]                   (print layers and scene nodes)")
	fmt.Println("  gennoise <percentage> <amount> <output_dir>                         (generate N random .vox models with fixed fill %)")
	fmt.Println("  gennoise <percentageMin> <percentageMax> <amount> <output_dir>     (generate with per-file random fill in [min,max])")
	fmt.Println("Environment:")
	fmt.Println("  " + config.EnvPath + "  path of a TOML config file")
	fmt.Println("  VOXMESH_DEBUG   enable debug logging")
}

func fail(err error) {
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fail(err)
	}
	level, err := cfg.Level()
	if err != nil {
		fail(err)
	}
	if os.Getenv("VOXMESH_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts, err := cfg.Options()
	if err != nil {
		fail(err)
	}
	ctx := context.Background()

	switch os.Args[1] {
	case "vox2glb":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunVOX2GLB(os.Args[2], os.Args[3], opts); err != nil {
			fail(err)
		}
	case "voxbatch2glb":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunVOXBatch2GLB(ctx, os.Args[2], os.Args[3:], opts, cfg.Workers); err != nil {
			fail(err)
		}
	case "vox2pack":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		comp, err := cfg.PackCompression()
		if err != nil {
			fail(err)
		}
		if err := utils.CreatePack(ctx, os.Args[3:], os.Args[2], opts, cfg.Workers, comp); err != nil {
			fail(err)
		}
	case "pack2glb":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunPack2GLB(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "summary":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		profile := termenv.NewOutput(os.Stdout).EnvColorProfile()
		if err := utils.RunSummary(os.Stdout, os.Args[2:], opts, profile); err != nil {
			os.Exit(1)
		}
		return
	case "gennoise":
		// Two forms:
		// 1) gennoise <percentage> <amount> <output_dir>
		// 2) gennoise <percentageMin> <percentageMax> <amount> <output_dir>
		if len(os.Args) == 5 {
			var perc float64
			var amt int
			if _, err := fmt.Sscan(os.Args[2], &perc); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[3], &amt); err != nil {
				fail(err)
			}
			if err := utils.RunGenerateNoiseVOX(perc, amt, os.Args[4]); err != nil {
				fail(err)
			}
		} else if len(os.Args) == 6 {
			var minP, maxP float64
			var amt int
			if _, err := fmt.Sscan(os.Args[2], &minP); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[3], &maxP); err != nil {
				fail(err)
			}
			if _, err := fmt.Sscan(os.Args[4], &amt); err != nil {
				fail(err)
			}
			if err := utils.RunGenerateNoiseVOXRange(minP, maxP, amt, os.Args[5]); err != nil {
				fail(err)
			}
		} else {
			usage()
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(1)
	}

	fmt.Println("Operation completed!")
}
