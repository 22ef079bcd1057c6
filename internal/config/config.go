// Package config loads the assetfmt configuration file
// (~/.config/assetfmt/config.yaml). Values in the file are defaults; flags
// given on the command line win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config mirrors the file. Pointer fields distinguish "not set" from zero.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// DumpFormat is the default encoder for the dump command.
	DumpFormat string `yaml:"dump_format"`

	// Workers bounds how many files roundtrip processes at once.
	Workers *int `yaml:"workers"`
}

// DumpFormats lists the encoders the dump command supports.
var DumpFormats = []string{"json", "yaml", "cbor"}

// Path returns the default config file location, or "" when the user config
// directory cannot be determined.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "assetfmt", "config.yaml")
}

// Load reads the file at path. A missing file yields a zero Config; a file
// that exists but does not parse is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DumpFormat != "" && !slices.Contains(DumpFormats, c.DumpFormat) {
		return fmt.Errorf("dump_format %q is not one of %v", c.DumpFormat, DumpFormats)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	return nil
}
