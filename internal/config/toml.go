package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	App   AppConfig   `toml:"app"`
	Stats StatsConfig `toml:"stats"`
}

// AppConfig maps overlay and hook settings.
type AppConfig struct {
	User          *string `toml:"user"`
	Backend       *string `toml:"backend"`
	Device        *string `toml:"device"`
	Style         *string `toml:"style"`
	LogLevel      *string `toml:"log-level"`
	FlushInterval *string `toml:"flush-interval"`
	Words         *string `toml:"words"`
	DemoInterval  *string `toml:"demo-interval"`
}

// StatsConfig maps stats viewer defaults.
type StatsConfig struct {
	CurveWindow *int `toml:"curve-window"`
	Top         *int `toml:"top"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an
// error; keys keycast does not know are.
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		names := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			names = append(names, key.String())
		}
		return FileConfig{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(names, ", "))
	}
	return cfg, nil
}
