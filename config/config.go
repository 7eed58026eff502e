// Package config loads the optional mfulc YAML configuration file.
// Values given on the command line take precedence over the file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Drivers accepted by the driver key.
var knownDrivers = []string{"libnfc", "pcsc"}

type Config struct {
	Driver      string       `yaml:"driver"`
	Device      *int         `yaml:"device"`
	KeyFile     string       `yaml:"key_file"`
	Pages       string       `yaml:"pages"`
	PollSeconds int          `yaml:"poll_seconds"`
	Quiet       bool         `yaml:"quiet"`
	Override    bool         `yaml:"override"`
	CopyUID     bool         `yaml:"copy_uid"`
	Events      EventsConfig `yaml:"events"`
}

type EventsConfig struct {
	Listen string `yaml:"listen"`
	MDNS   bool   `yaml:"mdns"`
}

func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.resolvePaths(path)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Driver != "" && !contains(knownDrivers, c.Driver) {
		return fmt.Errorf("config.driver must be one of %s, got %q", strings.Join(knownDrivers, ", "), c.Driver)
	}
	if c.Device != nil && *c.Device < 0 {
		return fmt.Errorf("config.device must be >= 0")
	}
	if c.PollSeconds < 0 {
		return fmt.Errorf("config.poll_seconds must be >= 0")
	}
	if strings.TrimSpace(c.KeyFile) != "" {
		if err := validateReadableFile(c.KeyFile, "config.key_file"); err != nil {
			return err
		}
	}
	if c.Events.MDNS && strings.TrimSpace(c.Events.Listen) == "" {
		return fmt.Errorf("config.events.mdns requires config.events.listen")
	}
	return nil
}

func (c *Config) resolvePaths(configPath string) {
	configDir := filepath.Dir(configPath)
	c.KeyFile = resolvePath(configDir, c.KeyFile)
}

func resolvePath(baseDir, path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Clean(filepath.Join(baseDir, trimmed))
}

func validateReadableFile(path string, field string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s must point to a file, got directory", field)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
