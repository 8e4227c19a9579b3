package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvUser     = "KEYCAST_USER"
	EnvBackend  = "KEYCAST_BACKEND"
	EnvDevice   = "KEYCAST_DEVICE"
	EnvLogLevel = "KEYCAST_LOG_LEVEL"
)

// LoadEnv loads variables from a dotenv file without overriding ones already
// set. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides file values with KEYCAST_* variables.
func ApplyEnv(cfg *FileConfig) {
	applyEnvString(EnvUser, &cfg.App.User)
	applyEnvString(EnvBackend, &cfg.App.Backend)
	applyEnvString(EnvDevice, &cfg.App.Device)
	applyEnvString(EnvLogLevel, &cfg.App.LogLevel)
}

func applyEnvString(name string, target **string) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	*target = &v
}
