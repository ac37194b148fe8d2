// Package config loads viraforge.toml and resolves named environments.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is searched for upward from the working directory.
const ConfigFileName = "viraforge.toml"

// ConfigError reports an unreadable or invalid configuration file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ProjectConfig locates the target project and the tool's own directories.
// All paths are relative to the config file's directory unless absolute.
type ProjectConfig struct {
	Root      string `toml:"root"`
	Templates string `toml:"templates"`
	Backups   string `toml:"backups"`
}

// EnvironmentConfig describes a single named environment from viraforge.toml.
type EnvironmentConfig struct {
	ShadowDatabaseURL string `toml:"shadow_database_url"`
}

type Config struct {
	DefaultEnvironment string                       `toml:"default_environment"`
	Project            ProjectConfig                `toml:"project"`
	Environments       map[string]EnvironmentConfig `toml:"environments"`

	ConfigFilePath string `toml:"-"`
}

// ConfigDir is the directory holding the config file, or the working
// directory when no file was found.
func (c *Config) ConfigDir() string {
	if c.ConfigFilePath == "" {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	return filepath.Dir(c.ConfigFilePath)
}

func (c *Config) resolve(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ConfigDir(), path)
}

// ProjectRoot is the Spring project tree the tool operates on.
func (c *Config) ProjectRoot() string {
	return c.resolve(c.Project.Root, ".")
}

// TemplatesDir holds the generation templates.
func (c *Config) TemplatesDir() string {
	return c.resolve(c.Project.Templates, "templates")
}

// BackupsDir holds the snapshot directories.
func (c *Config) BackupsDir() string {
	return c.resolve(c.Project.Backups, filepath.Join(".viraforge", "backups"))
}

// LoadConfig searches upward from the working directory for viraforge.toml,
// stopping at the first project-root marker. A missing file yields an empty
// config with defaults; an unreadable or invalid one is an error.
func LoadConfig() (*Config, error) {
	startDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(startDir)
}

// LoadConfigFile reads an explicit config file; missing or invalid is an
// error, unlike the upward search.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	config.ConfigFilePath = path
	return &config, nil
}

// LoadConfigFrom is LoadConfig anchored at an explicit directory.
func LoadConfigFrom(startDir string) (*Config, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, &ConfigError{Path: configPath, Err: err}
			}

			var config Config
			if err := toml.Unmarshal(data, &config); err != nil {
				return nil, &ConfigError{Path: configPath, Err: err}
			}

			config.ConfigFilePath = configPath
			return &config, nil
		}

		if isProjectRoot(dir) {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return &Config{}, nil
}

// isProjectRoot checks if the directory is a project root based on common markers
func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
		return true
	}
	return false
}
