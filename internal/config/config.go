// Package config loads the optional fileops configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/bamsammich/fileops/internal/filter"
)

// Config represents the optional fileops configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Filter   FilterConfig   `toml:"filter"`
}

// DefaultsConfig holds persistent flag defaults. Nil means unset.
type DefaultsConfig struct {
	BufferSize     *string `toml:"buffer_size"`
	BWLimit        *string `toml:"bwlimit"`
	LineEnding     *string `toml:"line_ending"`
	Dispatch       *string `toml:"dispatch"`
	Workers        *int    `toml:"workers"`
	Verify         *bool   `toml:"verify"`
	FollowSymlinks *bool   `toml:"follow_symlinks"`
	Atomic         *bool   `toml:"atomic"`
}

// FilterConfig holds include/exclude rules applied to tree copies and
// listings, in addition to any given on the command line.
type FilterConfig struct {
	ExcludeFrom *string  `toml:"exclude_from"`
	Exclude     []string `toml:"exclude"`
	Include     []string `toml:"include"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "fileops", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFrom(afero.NewOsFs(), path)
}

// LoadFrom reads the config file at path on fsys. A missing file yields a
// zero Config. Unknown keys are rejected so typos do not pass silently.
func LoadFrom(fsys afero.Fs, path string) (Config, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	md, err := toml.NewDecoder(f).Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("parse %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := c.Defaults.BufferSizeBytes(); err != nil {
		return fmt.Errorf("buffer_size: %w", err)
	}
	if _, err := c.Defaults.BWLimitBytes(); err != nil {
		return fmt.Errorf("bwlimit: %w", err)
	}
	if d := c.Defaults.Dispatch; d != nil && *d != "inline" && *d != "offload" {
		return fmt.Errorf("dispatch: must be \"inline\" or \"offload\", got %q", *d)
	}
	if w := c.Defaults.Workers; w != nil && *w < 1 {
		return fmt.Errorf("workers: must be at least 1, got %d", *w)
	}
	return nil
}

// BufferSizeBytes parses buffer_size. Zero means unset.
func (d DefaultsConfig) BufferSizeBytes() (int64, error) {
	return parseOptionalSize(d.BufferSize)
}

// BWLimitBytes parses bwlimit in bytes per second. Zero means unlimited.
func (d DefaultsConfig) BWLimitBytes() (int64, error) {
	return parseOptionalSize(d.BWLimit)
}

func parseOptionalSize(s *string) (int64, error) {
	if s == nil || *s == "" {
		return 0, nil
	}
	return filter.ParseSize(*s)
}

// FilterChain builds a chain from the [filter] section. Includes are
// placed ahead of excludes so they can rescue excluded paths; ExcludeFrom
// rules are read from fsys and appended last.
func (c Config) FilterChain(fsys afero.Fs) (*filter.Chain, error) {
	chain := filter.NewChain()
	for _, p := range c.Filter.Include {
		if err := chain.AddInclude(p); err != nil {
			return nil, err
		}
	}
	for _, p := range c.Filter.Exclude {
		if err := chain.AddExclude(p); err != nil {
			return nil, err
		}
	}
	if c.Filter.ExcludeFrom != nil {
		if err := chain.LoadFile(fsys, *c.Filter.ExcludeFrom); err != nil {
			return nil, err
		}
	}
	return chain, nil
}

// Encode renders cfg as TOML, omitting unset fields.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
