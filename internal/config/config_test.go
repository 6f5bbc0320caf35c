package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SPEECHPATH_DB", "SPEECHPATH_LOG_LEVEL", "SPEECHPATH_LOG_FORMAT", "SPEECHPATH_LOG_FILE",
		"SPEECHPATH_LEVEL_SIZE", "SPEECHPATH_ACTIVITIES", "SPEECHPATH_USER", "SPEECHPATH_PASSWORD_HASH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "" {
		t.Errorf("DBPath = %q, want empty", cfg.DBPath)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
	if cfg.LevelSize != 5 {
		t.Errorf("LevelSize = %d, want 5", cfg.LevelSize)
	}
	if cfg.Activities != 5 {
		t.Errorf("Activities = %d, want 5", cfg.Activities)
	}
	if cfg.Auth.Username != "Doctor" {
		t.Errorf("Username = %q, want Doctor", cfg.Auth.Username)
	}
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPEECHPATH_DB", "/tmp/sp.db")
	t.Setenv("SPEECHPATH_LOG_LEVEL", "debug")
	t.Setenv("SPEECHPATH_LOG_FORMAT", "console")
	t.Setenv("SPEECHPATH_LOG_FILE", "/tmp/sp.log")
	t.Setenv("SPEECHPATH_LEVEL_SIZE", "4")
	t.Setenv("SPEECHPATH_ACTIVITIES", "6")
	t.Setenv("SPEECHPATH_USER", "slp")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/sp.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" || cfg.Log.File != "/tmp/sp.log" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.LevelSize != 4 || cfg.Activities != 6 {
		t.Errorf("LevelSize = %d, Activities = %d, want 4 and 6", cfg.LevelSize, cfg.Activities)
	}
	if cfg.Auth.Username != "slp" {
		t.Errorf("Username = %q, want slp", cfg.Auth.Username)
	}
}

func TestLoad_InvalidInts(t *testing.T) {
	for _, key := range []string{"SPEECHPATH_LEVEL_SIZE", "SPEECHPATH_ACTIVITIES"} {
		for _, val := range []string{"zero", "0", "-2"} {
			clearEnv(t)
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%q: expected error", key, val)
			}
		}
	}
}
