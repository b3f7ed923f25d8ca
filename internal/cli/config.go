package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wzamorag/tjAdmin-sub001/internal/pos"
)

// Config is the venue configuration file.
type Config struct {
	// Database is the path to the SQLite document store.
	Database string `yaml:"database"`

	// Timezone bounds the calendar day of Z-closures (IANA name).
	Timezone string `yaml:"timezone"`

	// Locale controls number formatting in rendered tickets/closures.
	Locale string `yaml:"locale"`

	// AllocRetries bounds the sequence allocator retry loop.
	AllocRetries int `yaml:"alloc_retries"`
}

// LoadConfig reads the YAML config at path. Missing fields fall back to
// usable defaults; a missing file is an error.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "tjadmin.db"
	}
	if c.Timezone == "" {
		c.Timezone = "America/El_Salvador"
	}
	if c.Locale == "" {
		c.Locale = "es"
	}
	if c.AllocRetries <= 0 {
		c.AllocRetries = pos.DefaultAllocRetries
	}
}
