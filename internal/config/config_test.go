package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFrom(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
default_environment = "staging"

[project]
root = "backend"
templates = "codegen/templates"

[environments.staging]
shadow_database_url = "postgres://localhost:5432/shadow"
`)

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.DefaultEnvironment != "staging" {
		t.Errorf("default environment = %q", cfg.DefaultEnvironment)
	}
	if cfg.Environments["staging"].ShadowDatabaseURL != "postgres://localhost:5432/shadow" {
		t.Errorf("environments = %+v", cfg.Environments)
	}

	// Relative paths resolve against the config file's directory.
	if got := cfg.ProjectRoot(); got != filepath.Join(dir, "backend") {
		t.Errorf("ProjectRoot = %s", got)
	}
	if got := cfg.TemplatesDir(); got != filepath.Join(dir, "codegen/templates") {
		t.Errorf("TemplatesDir = %s", got)
	}
	if got := cfg.BackupsDir(); got != filepath.Join(dir, ".viraforge", "backups") {
		t.Errorf("BackupsDir = %s", got)
	}
}

func TestLoadConfigSearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[project]\nroot = \".\"\n")

	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigFilePath != filepath.Join(root, ConfigFileName) {
		t.Errorf("found config at %s", cfg.ConfigFilePath)
	}
}

func TestLoadConfigStopsAtProjectBoundary(t *testing.T) {
	outer := t.TempDir()
	writeConfig(t, outer, "[project]\nroot = \".\"\n")

	// A .git marker makes the inner directory a project root; the search must
	// not cross it into the outer config.
	inner := filepath.Join(outer, "other-project")
	if err := os.MkdirAll(filepath.Join(inner, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(inner)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigFilePath != "" {
		t.Errorf("search crossed project boundary to %s", cfg.ConfigFilePath)
	}
}

func TestLoadConfigMissingIsNotAnError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigFilePath != "" {
		t.Errorf("unexpected config file %s", cfg.ConfigFilePath)
	}
	// Defaults still resolve.
	if cfg.TemplatesDir() == "" || cfg.BackupsDir() == "" {
		t.Error("defaults not applied")
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "not [valid toml")

	_, err := LoadConfigFrom(dir)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("error type = %T", err)
	}
}

func TestAbsolutePathsPassThrough(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere")
	writeConfig(t, dir, "[project]\nroot = \""+abs+"\"\n")

	cfg, err := LoadConfigFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ProjectRoot() != abs {
		t.Errorf("ProjectRoot = %s, want %s", cfg.ProjectRoot(), abs)
	}
}
