package config

import (
	"os"
	"path/filepath"
	"testing"
)

func configWithEnvironments(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	path := writeConfig(t, dir, `
default_environment = "dev"

[environments.dev]
shadow_database_url = "sqlite://dev_shadow.db"

[environments.ci]
shadow_database_url = "postgres://localhost:5432/ci_shadow"
`)
	cfg, err := LoadConfigFrom(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestResolveEnvironmentFromConfig(t *testing.T) {
	cfg := configWithEnvironments(t)

	resolved, err := ResolveEnvironment(cfg, "ci")
	if err != nil {
		t.Fatalf("ResolveEnvironment: %v", err)
	}
	if resolved.ShadowDatabaseURL != "postgres://localhost:5432/ci_shadow" {
		t.Errorf("url = %s", resolved.ShadowDatabaseURL)
	}
	if !resolved.FromConfig || resolved.FromDotenv {
		t.Errorf("sources = %+v", resolved)
	}
}

func TestResolveEnvironmentDefaultName(t *testing.T) {
	cfg := configWithEnvironments(t)

	resolved, err := ResolveEnvironment(cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Name != "dev" {
		t.Errorf("name = %s, want default_environment", resolved.Name)
	}
	if resolved.ShadowDatabaseURL != "sqlite://dev_shadow.db" {
		t.Errorf("url = %s", resolved.ShadowDatabaseURL)
	}
}

func TestResolveEnvironmentDotenvOverride(t *testing.T) {
	cfg := configWithEnvironments(t)
	dotenv := filepath.Join(cfg.ConfigDir(), ".env.dev")
	if err := os.WriteFile(dotenv,
		[]byte("SHADOW_DATABASE_URL=postgres://localhost:5432/override\n"), 0644); err != nil {
		t.Fatal(err)
	}

	resolved, err := ResolveEnvironment(cfg, "dev")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ShadowDatabaseURL != "postgres://localhost:5432/override" {
		t.Errorf("dotenv did not override: %s", resolved.ShadowDatabaseURL)
	}
	if !resolved.FromDotenv {
		t.Error("FromDotenv not set")
	}
}

func TestResolveEnvironmentUnknownName(t *testing.T) {
	cfg := configWithEnvironments(t)

	if _, err := ResolveEnvironment(cfg, "production"); err == nil {
		t.Error("expected error for undefined environment")
	}
}

func TestResolveEnvironmentDefaultsWithoutConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{ConfigFilePath: filepath.Join(dir, ConfigFileName)}

	resolved, err := ResolveEnvironment(cfg, "dev")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ShadowDatabaseURL != defaultShadowDatabaseURL {
		t.Errorf("url = %s", resolved.ShadowDatabaseURL)
	}
	if resolved.FromConfig || resolved.FromDotenv {
		t.Error("no source should be reported")
	}
}
