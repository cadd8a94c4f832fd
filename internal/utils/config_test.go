package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pocketcalc/pcalc/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for envVar := range envVars {
		t.Setenv(envVar, "")
	}
}

func TestLoadAppConfigDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	config, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if config.DataDir != dir {
		t.Errorf("Expected data dir %s, got %s", dir, config.DataDir)
	}
	if config.Storage != "jsonl" || config.Theme != "light" || config.Port != 8080 {
		t.Errorf("Unexpected defaults: %+v", config)
	}
	if config.Scientific || config.Encrypt || config.Debug {
		t.Errorf("Flags should default to false: %+v", config)
	}
}

func TestSaveAndLoadAppConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	config := NewDefaultConfig()
	config.DataDir = dir
	config.Theme = "dark"
	config.Scientific = true
	config.AngleMode = "rad"
	if err := SaveAppConfig(config); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	if !FileExists(filepath.Join(dir, ConfigFileName)) {
		t.Fatal("Config file was not written")
	}

	loaded, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if loaded.Theme != "dark" || !loaded.Scientific || loaded.AngleMode != "rad" {
		t.Errorf("Saved values not restored: %+v", loaded)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("PCALC_PORT", "9090")
	t.Setenv("PCALC_DEBUG", "1")
	t.Setenv("PCALC_STORAGE", "duckdb")
	t.Setenv("PCALC_THEME", "dark")

	config, err := LoadAppConfig(dir)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if config.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", config.Port)
	}
	if !config.Debug {
		t.Error("Expected debug enabled")
	}
	if config.Storage != "duckdb" || config.Theme != "dark" {
		t.Errorf("Unexpected overrides: %+v", config)
	}
}

func TestEnvironmentOverrideInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PCALC_PORT", "not-a-port")

	_, err := LoadAppConfig(t.TempDir())
	if !errors.Is(err, errors.ErrConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestLoadAppConfigBrokenFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(dir)
	if !errors.Is(err, errors.ErrConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"default", "default"},
		{"../etc/passwd", "_etc_passwd"},
		{"a:b*c?", "a_b_c_"},
		{" .hidden. ", "hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPadLeftAndTruncate(t *testing.T) {
	if got := PadLeft("√", 3); got != "  √" {
		t.Errorf("PadLeft = %q", got)
	}
	if got := PadLeft("12345", 3); got != "12345" {
		t.Errorf("PadLeft should not truncate, got %q", got)
	}
	if got := TruncateString("123456789", 6); got != "123..." {
		t.Errorf("TruncateString = %q", got)
	}
}
