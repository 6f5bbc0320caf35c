// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/speechpath/speechpath/internal/catalog"
	"github.com/speechpath/speechpath/internal/session"
)

// Config holds every runtime setting. Command-line flags override the
// fields after Load.
type Config struct {
	// DBPath is the SQLite file. Empty means the default XDG location.
	DBPath string

	Log struct {
		Level  string
		Format string
		File   string // TUI log destination; the CLI logs to stderr when empty
	}

	// LevelSize is the number of goals per level.
	LevelSize int

	// Activities is the checklist size of a therapy session.
	Activities int

	Auth struct {
		Username     string
		PasswordHash string // bcrypt; empty uses the built-in clinic password
	}
}

// Load reads SPEECHPATH_* variables, filling in defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.DBPath = os.Getenv("SPEECHPATH_DB")

	cfg.Log.Level = getEnv("SPEECHPATH_LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("SPEECHPATH_LOG_FORMAT", "json")
	cfg.Log.File = os.Getenv("SPEECHPATH_LOG_FILE")

	var err error
	if cfg.LevelSize, err = getPositiveInt("SPEECHPATH_LEVEL_SIZE", catalog.DefaultLevelSize); err != nil {
		return nil, err
	}
	if cfg.Activities, err = getPositiveInt("SPEECHPATH_ACTIVITIES", session.DefaultActivities); err != nil {
		return nil, err
	}

	cfg.Auth.Username = getEnv("SPEECHPATH_USER", "Doctor")
	cfg.Auth.PasswordHash = os.Getenv("SPEECHPATH_PASSWORD_HASH")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("config: %s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}
