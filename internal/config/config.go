// Package config holds runtime settings for rowdb.
//
// Settings come from three layers: built-in defaults, an optional YAML file,
// and command-line flags applied by the caller on top.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cabewaldrop/rowdb/internal/logging"
	"github.com/cabewaldrop/rowdb/internal/table"
)

// Config is the full runtime configuration.
type Config struct {
	// DBPath is the backing file for the table.
	DBPath string `yaml:"db"`

	// HistoryFile stores command-line history between sessions.
	HistoryFile string `yaml:"history_file"`

	LogLevel  string `yaml:"log_level"`
	LogFile   string `yaml:"log_file"`
	LogFormat string `yaml:"log_format"`

	// HTTPAddr serves the HTTP API instead of the REPL when set.
	HTTPAddr string `yaml:"http_addr"`

	// SlotPolicy is "sequential" or "id".
	SlotPolicy string `yaml:"slot_policy"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:      "rowdb.db",
		HistoryFile: "/tmp/history.txt",
		LogLevel:    logging.LevelWarn,
		LogFormat:   "text",
		SlotPolicy:  table.SlotSequential.String(),
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if _, err := table.ParseSlotPolicy(c.SlotPolicy); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Policy returns the parsed slot policy.
func (c Config) Policy() table.SlotPolicy {
	p, _ := table.ParseSlotPolicy(c.SlotPolicy)
	return p
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		OutputPath: c.LogFile,
		Format:     c.LogFormat,
	}
}
