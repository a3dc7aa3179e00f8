// Package config holds process configuration for clipstash.
//
// Configuration is an explicit struct handed to the server at
// construction — there is no package-level mutable default. A JSON file
// under the data directory can override any knob; a missing file means
// defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the full set of recognized knobs.
type Config struct {
	// DataDir is the per-user directory holding the database and
	// config file. Defaults to ~/.clipstash.
	DataDir string `json:"data_dir,omitempty"`
	// DBPath overrides the default DataDir/history.db location.
	DBPath string `json:"db_path,omitempty"`

	// PollIntervalMS is the monitor tick spacing in milliseconds.
	PollIntervalMS int `json:"poll_interval_ms"`

	// FetchTimeoutSec bounds each URL enrichment fetch.
	FetchTimeoutSec int `json:"fetch_timeout_seconds"`
	// MaxFetchBytes rejects enrichment responses larger than this.
	MaxFetchBytes int64 `json:"max_fetch_bytes"`

	// RetentionDays and MaxEntries parameterize history cleanup.
	RetentionDays int `json:"retention_days"`
	MaxEntries    int `json:"max_entries"`

	// PreviewLength bounds the stored content preview, in characters.
	PreviewLength int `json:"preview_length"`
}

// Default returns the default configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:         filepath.Join(home, ".clipstash"),
		PollIntervalMS:  1000,
		FetchTimeoutSec: 30,
		MaxFetchBytes:   5 * 1024 * 1024,
		RetentionDays:   30,
		MaxEntries:      1000,
		PreviewLength:   200,
	}
}

// Load reads configuration from path, layered over defaults. A missing
// file is not an error — defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.validate()
	return cfg, nil
}

// Save writes the configuration as indented JSON, creating the
// directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// validate clamps out-of-range values back to defaults rather than
// failing startup over a bad knob.
func (c *Config) validate() {
	def := Default()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = def.PollIntervalMS
	}
	if c.FetchTimeoutSec <= 0 {
		c.FetchTimeoutSec = def.FetchTimeoutSec
	}
	if c.MaxFetchBytes <= 0 {
		c.MaxFetchBytes = def.MaxFetchBytes
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = def.RetentionDays
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = def.MaxEntries
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = def.PreviewLength
	}
}
