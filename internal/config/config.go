// Package config loads the optional luksctl configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/nace/luksctl/internal/state"
	"github.com/nace/luksctl/internal/volume"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const (
	// DefaultPath is read when LUKSCTL_CONFIG is not set.
	DefaultPath = "/etc/luksctl/config.toml"
	// EnvPath overrides DefaultPath.
	EnvPath = "LUKSCTL_CONFIG"

	maxConfigBytes = 64 << 10
)

// Config is the on-disk configuration. Every field is optional.
type Config struct {
	StateDir string        `toml:"state_dir" validate:"required,startswith=/"`
	Locale   string        `toml:"locale" validate:"omitempty,oneof=en ko ja"`
	Mount    MountConfig   `toml:"mount"`
	Unmount  UnmountConfig `toml:"unmount"`
}

type MountConfig struct {
	DefaultOptions []string `toml:"default_options" validate:"dive,required,excludesall=;&0x7C$0x2C"`
	AllowedFSTypes []string `toml:"allowed_fs_types" validate:"required,min=1,dive,required,max=32,excludesall=/"`
}

type UnmountConfig struct {
	LazyOnForce bool `toml:"lazy_on_force"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the configuration used when no file exists.
func Default() Config {
	p := volume.DefaultPolicy()
	return Config{
		StateDir: state.DefaultDir,
		Mount: MountConfig{
			DefaultOptions: p.DefaultOptions,
			AllowedFSTypes: p.AllowedFSTypes,
		},
		Unmount: UnmountConfig{LazyOnForce: p.LazyOnForce},
	}
}

// Path returns the configuration file location.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the file at path on top of the defaults. A missing file is
// not an error; a malformed one is.
func Load(fsys afero.Fs, path string) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if len(data) > maxConfigBytes {
		return cfg, fmt.Errorf("config %s is larger than %d bytes", path, maxConfigBytes)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// Policy converts the mount and unmount sections to a volume policy.
func (c Config) Policy() volume.Policy {
	return volume.Policy{
		DefaultOptions: slices.Clone(c.Mount.DefaultOptions),
		AllowedFSTypes: slices.Clone(c.Mount.AllowedFSTypes),
		LazyOnForce:    c.Unmount.LazyOnForce,
	}
}
