package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultEnvironmentName   = "dev"
	defaultShadowDatabaseURL = "sqlite://viraforge_shadow.db"
)

// ResolvedEnvironment is a named environment with concrete values.
type ResolvedEnvironment struct {
	Name              string
	ShadowDatabaseURL string
	DotenvPath        string
	FromConfig        bool
	FromDotenv        bool
}

// ResolveEnvironment resolves a named environment into a concrete shadow
// database URL. Values from .env.<name> next to the config file override the
// TOML; an unset URL falls back to a local SQLite file.
func ResolveEnvironment(config *Config, name string) (*ResolvedEnvironment, error) {
	envName := strings.TrimSpace(name)
	if envName == "" {
		if config != nil && config.DefaultEnvironment != "" {
			envName = config.DefaultEnvironment
		} else {
			envName = defaultEnvironmentName
		}
	}

	resolved := &ResolvedEnvironment{Name: envName}

	var envExists bool
	if config != nil && config.Environments != nil {
		if cfg, ok := config.Environments[envName]; ok {
			resolved.ShadowDatabaseURL = cfg.ShadowDatabaseURL
			resolved.FromConfig = true
			envExists = true
		}
	}

	baseDir := "."
	if config != nil {
		baseDir = config.ConfigDir()
	} else if cwd, err := os.Getwd(); err == nil {
		baseDir = cwd
	}
	resolved.DotenvPath = filepath.Join(baseDir, ".env."+envName)

	if info, err := os.Stat(resolved.DotenvPath); err == nil && !info.IsDir() {
		values, err := godotenv.Read(resolved.DotenvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", resolved.DotenvPath, err)
		}
		resolved.FromDotenv = true

		if value := values["SHADOW_DATABASE_URL"]; value != "" {
			resolved.ShadowDatabaseURL = value
		}
		if resolved.ShadowDatabaseURL == "" {
			if value := values["SQLITE_SHADOW_DB_PATH"]; value != "" {
				resolved.ShadowDatabaseURL = value
			}
		}
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to access %s: %w", resolved.DotenvPath, err)
	}

	// Asking for a named environment that exists nowhere is a config mistake,
	// not a case for silent defaults.
	if config != nil && len(config.Environments) > 0 && !envExists && !resolved.FromDotenv {
		return nil, fmt.Errorf("environment %q not defined in %s and %s not found",
			envName, ConfigFileName, resolved.DotenvPath)
	}

	if resolved.ShadowDatabaseURL == "" {
		resolved.ShadowDatabaseURL = defaultShadowDatabaseURL
	}

	return resolved, nil
}
