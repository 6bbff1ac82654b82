// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "keydrill"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultCharsPath returns the default universe file path.
func DefaultCharsPath() string {
	return filepath.Join(XDGConfigHome(), appName, "chars.txt")
}

// DefaultLogPath returns the default event log path.
func DefaultLogPath() string {
	return filepath.Join(XDGDataHome(), appName, "logs.txt")
}

// DefaultSummaryPath returns the default summary export path.
func DefaultSummaryPath() string {
	return filepath.Join(XDGDataHome(), appName, "stats.txt")
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
