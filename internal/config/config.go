// Package config resolves the server's runtime settings from an optional
// YAML file layered under environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lexcodex/agentlsp/internal/jobtracker"
)

// Config holds every tunable the server exposes.
type Config struct {
	// Backend names the agent CLI variant: claude, opencode or amp.
	Backend string `yaml:"backend"`
	// DeleteTempFiles removes each job's scratch file once it is consumed.
	// Disable it to leave agent output behind for inspection.
	DeleteTempFiles bool `yaml:"deleteTempFiles"`
	// Capacity caps concurrently active jobs per file. Intended for tests;
	// production deployments leave the default alone.
	Capacity int `yaml:"capacity"`
}

// Default returns the built-in settings used when no file, env var or flag
// says otherwise.
func Default() Config {
	return Config{
		Backend:         "claude",
		DeleteTempFiles: true,
		Capacity:        jobtracker.MaxConcurrentJobsPerFile,
	}
}

// Load reads a YAML config file over the defaults. An empty path yields the
// defaults untouched; a path that cannot be read or parsed is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = jobtracker.MaxConcurrentJobsPerFile
	}
	return cfg, nil
}

// EnvOrDefault returns the environment variable's value when set and
// non-empty, otherwise fallback.
func EnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvBool parses the environment variable as a boolean, returning fallback
// when unset or unparsable.
func EnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// EnvInt parses the environment variable as an integer, returning fallback
// when unset or unparsable.
func EnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}
