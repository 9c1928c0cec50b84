// Package paths resolves the configuration and output directory locations.
package paths

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// CWD-relative directory names used when nothing overrides them.
const (
	DefaultConfigDirName = "config"
	DefaultOutputDirName = "output"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "USERMAP_CONFIG_DIR"
	EnvOutputDir = "USERMAP_OUTPUT_DIR"
)

// Env holds the directory overrides read from the environment.
type Env struct {
	ConfigDir string `env:"USERMAP_CONFIG_DIR"`
	OutputDir string `env:"USERMAP_OUTPUT_DIR"`
}

// LoadEnv parses the directory overrides from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

// getwd can be overridden in tests.
var getwd = os.Getwd

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > USERMAP_CONFIG_DIR env > $(CWD)/config.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	e, err := LoadEnv()
	if err != nil {
		return "", err
	}
	if e.ConfigDir != "" {
		return filepath.Abs(e.ConfigDir)
	}
	return cwdJoin(DefaultConfigDirName)
}

// ResolveOutputDir returns the output directory following the precedence
// chain: flag > USERMAP_OUTPUT_DIR env > config.yaml value > $(CWD)/output.
func ResolveOutputDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	e, err := LoadEnv()
	if err != nil {
		return "", err
	}
	if e.OutputDir != "" {
		return filepath.Abs(e.OutputDir)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	return cwdJoin(DefaultOutputDirName)
}

// ResolveFile returns path unchanged when absolute, otherwise joined to base.
func ResolveFile(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func cwdJoin(name string) (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
