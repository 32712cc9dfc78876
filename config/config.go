// Package config holds the environment and settings-file configuration for
// bsrun. Everything is loaded once into explicit structs; nothing is
// process-wide mutable state.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the environment-derived configuration.
type Config struct {
	// AccessKey is the "user:key" farm credential (BROWSER_STACK_KEY)
	AccessKey string
	// MaxWait is the polling wall-clock budget per build
	// (BROWSER_TEST_MAX_DURATION, seconds)
	MaxWait time.Duration
}

// Load reads the configuration from environment variables.
func Load() *Config {
	return &Config{
		AccessKey: os.Getenv("BROWSER_STACK_KEY"),
		MaxWait:   time.Duration(getEnvInt("BROWSER_TEST_MAX_DURATION", 10*60)) * time.Second,
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// Settings are the optional file-based defaults, kept next to the project
// that uses bsrun.
type Settings struct {
	// Devices never to schedule, by normalized name
	Blacklist []string `yaml:"blacklist"`
	// Default project tag for submitted builds
	Project string `yaml:"project"`
	// Default custom id for the app package
	AppCustomID string `yaml:"app_custom_id"`
	// Default custom id for the test suite package
	SuiteCustomID string `yaml:"suite_custom_id"`
}

// DefaultSettings returns the built-in defaults used when no settings file
// is given.
func DefaultSettings() *Settings {
	return &Settings{
		Blacklist: []string{"Samsung Galaxy S7-6.0"},
	}
}

// LoadSettings reads a YAML settings file. An empty path yields the
// defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return settings, nil
}

// Blacklisted reports whether the device name is excluded from scheduling.
func (s *Settings) Blacklisted(name string) bool {
	for _, b := range s.Blacklist {
		if b == name {
			return true
		}
	}
	return false
}
