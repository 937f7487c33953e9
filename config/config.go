// Package config handles javelin.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file javelin looks for.
const FileName = "javelin.toml"

// Config represents a javelin.toml file. Zero values mean "use the
// default"; CLI flags override anything set here.
type Config struct {
	Output Output `toml:"output"`
	Batch  Batch  `toml:"batch"`
	Cache  Cache  `toml:"cache"`
}

// Output configures the listing renderer.
type Output struct {
	Color       string `toml:"color"` // auto, always, never
	LineNumbers bool   `toml:"line-numbers"`
}

// Batch configures concurrent analysis.
type Batch struct {
	Workers int `toml:"workers"` // 0 picks 2x NumCPU
}

// Cache configures the persistent analysis store. An empty path
// disables caching.
type Cache struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Output: Output{Color: "auto", LineNumbers: true},
	}
}

// Load parses a javelin.toml file. Keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault loads dir/javelin.toml when present. A missing file is
// not an error; defaults come back instead.
func LoadOrDefault(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Validate rejects values the CLI cannot honor.
func (c *Config) Validate() error {
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q", c.Output.Color)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("negative worker count %d", c.Batch.Workers)
	}
	return nil
}
