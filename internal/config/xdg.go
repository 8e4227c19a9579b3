// Package config locates keycast files and loads its configuration.
package config

import (
	"os"
	"path/filepath"
)

const appName = "keycast"

// XDGConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns $XDG_DATA_HOME or ~/.local/share.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", ".local", "share")
}

func xdgHome(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

func configPath(name string) string {
	return filepath.Join(XDGConfigHome(), appName, name)
}

func dataPath(name string) string {
	return filepath.Join(XDGDataHome(), appName, name)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return configPath("config.toml")
}

// DefaultEnvPath returns the optional dotenv file read at startup.
func DefaultEnvPath() string {
	return configPath(".env")
}

// DefaultProfilesDir returns the directory holding one JSON file per user.
func DefaultProfilesDir() string {
	return dataPath("profiles")
}

// DefaultStylesDir returns the directory of imported styles.
func DefaultStylesDir() string {
	return dataPath("styles")
}

// DefaultHistoryPath returns the default path for the SQLite key history.
func DefaultHistoryPath() string {
	return dataPath("history.db")
}

// DefaultLogPath returns the log file used while the overlay owns the terminal.
func DefaultLogPath() string {
	return dataPath("keycast.log")
}
