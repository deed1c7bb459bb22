// Package config handles rjit.toml compiler configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"rjit/pkg/heap"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "rjit.toml"

// Output formats.
const (
	FormatCBOR    = "cbor"
	FormatListing = "listing"
)

// Config represents an rjit.toml file.
type Config struct {
	Heap   HeapConfig   `toml:"heap"`
	Frame  FrameConfig  `toml:"frame"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
	Output OutputConfig `toml:"output"`

	// Dir is the directory containing the file (set at load time).
	Dir string `toml:"-"`
}

// HeapConfig places the runtime heap.
type HeapConfig struct {
	Base uint64 `toml:"base"`
}

// FrameConfig overrides the stack frame reservation; 0 computes it from
// the parameter and local counts.
type FrameConfig struct {
	Reserve int `toml:"reserve"`
}

// CacheConfig locates the compiled-code cache. An empty path disables it.
type CacheConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Verbosity int `toml:"verbosity"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Heap:   HeapConfig{Base: uint64(heap.DefaultBase)},
		Output: OutputConfig{Format: FormatCBOR},
	}
}

// HeapBase is the configured heap base as an address.
func (c *Config) HeapBase() heap.Address { return heap.Address(c.Heap.Base) }

// CachePath resolves the cache path against the configuration directory.
func (c *Config) CachePath() string {
	if c.Cache.Path == "" || filepath.IsAbs(c.Cache.Path) || c.Dir == "" {
		return c.Cache.Path
	}
	return filepath.Join(c.Dir, c.Cache.Path)
}

// Validate rejects values the compiler cannot honour.
func (c *Config) Validate() error {
	if c.Heap.Base == 0 || c.Heap.Base%16 != 0 {
		return fmt.Errorf("heap.base %#x must be a non-zero multiple of 16", c.Heap.Base)
	}
	if c.Frame.Reserve < 0 {
		return fmt.Errorf("frame.reserve %d must not be negative", c.Frame.Reserve)
	}
	switch c.Output.Format {
	case FormatCBOR, FormatListing:
	default:
		return fmt.Errorf("output.format %q must be %q or %q", c.Output.Format, FormatCBOR, FormatListing)
	}
	return nil
}

// LoadFile parses the configuration file at path. Keys the file leaves
// out keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load parses the rjit.toml file in dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// FindAndLoad walks up from startDir to find an rjit.toml file and loads
// it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}
