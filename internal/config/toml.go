// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Drill DrillConfig `toml:"drill"`
	Paths PathsConfig `toml:"paths"`
}

// DrillConfig maps drill-related settings. Nil fields were not set.
type DrillConfig struct {
	Rounds        *int     `toml:"rounds"`
	Next          *int     `toml:"next"`
	ErrorWeight   *float64 `toml:"error-weight"`
	LatencyWeight *float64 `toml:"latency-weight"`
	Backend       *string  `toml:"backend"`
	Flush         *bool    `toml:"flush"`
}

// PathsConfig overrides the default file locations.
type PathsConfig struct {
	Chars   *string `toml:"chars"`
	Log     *string `toml:"log"`
	Summary *string `toml:"summary"`
	DB      *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
