package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/voxelsplace/voxmesh/vox"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "VOXMESH_CONFIG"

// Config holds the tool settings read from a TOML file.
type Config struct {
	ImportHidden    bool     `toml:"import_hidden"`
	MaxMaterialMaps bool     `toml:"max_material_maps"`
	OriginsAtBottom bool     `toml:"origins_at_bottom"`
	Scale           float32  `toml:"scale"`
	Workers         int      `toml:"workers"`
	Compression     string   `toml:"compression"`
	FallbackPalette []string `toml:"fallback_palette"`
	LogLevel        string   `toml:"log_level"`
}

func Default() Config {
	return Config{
		Scale:       vox.DefaultScale,
		Workers:     runtime.GOMAXPROCS(0),
		Compression: vox.PackCompZstd.String(),
		LogLevel:    "info",
	}
}

// Parse decodes TOML over the defaults. Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if c.Scale <= 0 {
		return Config{}, fmt.Errorf("config: scale must be positive, got %v", c.Scale)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// FromEnv loads the file named by VOXMESH_CONFIG, or the defaults when unset.
func FromEnv() (Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Options converts the import settings.
func (c Config) Options() (vox.Options, error) {
	opts := vox.Options{
		ImportHidden:    c.ImportHidden,
		MaxMaterialMaps: c.MaxMaterialMaps,
		OriginsAtBottom: c.OriginsAtBottom,
		Scale:           c.Scale,
	}
	if len(c.FallbackPalette) > 0 {
		p, err := vox.PaletteFromHex(c.FallbackPalette)
		if err != nil {
			return vox.Options{}, fmt.Errorf("config: fallback_palette: %w", err)
		}
		opts.FallbackPalette = &p
	}
	return opts, nil
}

func (c Config) PackCompression() (vox.PackCompression, error) {
	comp, err := vox.ParseCompression(c.Compression)
	if err != nil {
		return 0, fmt.Errorf("config: %w", err)
	}
	return comp, nil
}

// Level maps log_level to a slog level.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log_level %q", c.LogLevel)
}
