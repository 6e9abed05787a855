package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/candimap/pkg/errors"
)

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("CANDIMAP_LOG_OUTPUT", "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogFormat != "auto" {
		t.Errorf("LogFormat = %s, want auto", config.LogFormat)
	}
	if config.LogOutput != "stderr" {
		t.Errorf("LogOutput = %s, want stderr", config.LogOutput)
	}
	if config.ConfigFile != "" {
		t.Errorf("ConfigFile = %s, want empty", config.ConfigFile)
	}
}

// TestConfig_EnvironmentVariables verifies CANDIMAP_* variables are read.
func TestConfig_EnvironmentVariables(t *testing.T) {
	isolate(t)
	t.Setenv("CANDIMAP_VERBOSE", "true")
	t.Setenv("CANDIMAP_FORMAT", "json")
	t.Setenv("CANDIMAP_LOG_LEVEL", "debug")
	t.Setenv("CANDIMAP_RULES", "rules/strict.yaml")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if !config.Verbose {
		t.Error("CANDIMAP_VERBOSE not loaded")
	}
	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", config.LogLevel)
	}
	if config.RulesFile != "rules/strict.yaml" {
		t.Errorf("RulesFile = %s, want rules/strict.yaml", config.RulesFile)
	}
}

// TestConfig_File verifies an explicit config file and relative rules paths.
func TestConfig_File(t *testing.T) {
	dir := isolate(t)
	confDir := filepath.Join(dir, "conf")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(confDir, "candimap.yaml")
	if err := os.WriteFile(path, []byte("format: yaml\nrules: rules.yaml\nquiet: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() failed: %v", err)
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %s, want yaml", config.Format)
	}
	if !config.Quiet {
		t.Error("quiet not loaded from config file")
	}
	if want := filepath.Join(confDir, "rules.yaml"); config.RulesFile != want {
		t.Errorf("RulesFile = %s, want %s", config.RulesFile, want)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %s, want %s", config.ConfigFile, path)
	}

	// The environment wins over the file and is not rebased.
	t.Setenv("CANDIMAP_RULES", "other.yaml")
	config, err = LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() failed: %v", err)
	}
	if config.RulesFile != "other.yaml" {
		t.Errorf("RulesFile = %s, want other.yaml", config.RulesFile)
	}
}

// TestConfig_DiscoveredFile verifies .candimap.yaml in the working directory is read.
func TestConfig_DiscoveredFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".candimap.yaml"), []byte("log-level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %s, want error", config.LogLevel)
	}
}

// TestConfig_MissingFile verifies an explicit config file must exist.
func TestConfig_MissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	if !errors.IsConfigError(err) {
		t.Errorf("LoadConfigFile() error = %v, want config error", err)
	}
}

// TestConfig_UpdateFromFlags verifies flag precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "warn", RulesFile: "a.yaml"}

	config.UpdateFromFlags(true, false, true, "", "", "")
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Format != "yaml" || config.LogLevel != "warn" || config.RulesFile != "a.yaml" {
		t.Error("empty flags overrode configured values")
	}

	config.UpdateFromFlags(false, false, false, "json", "debug", "b.yaml")
	if config.Format != "json" || config.LogLevel != "debug" || config.RulesFile != "b.yaml" {
		t.Errorf("flags not applied: %+v", config)
	}
	if !config.Verbose {
		t.Error("unset flag cleared a configured value")
	}
}
