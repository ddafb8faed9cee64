// Package config provides YAML-based configuration loading for the
// simulator and its command line tools.
package config

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sectorsim/internal/core"
)

// Config contains all configuration for the sectorsim tools.
type Config struct {
	Sim     SimConfig     `yaml:"sim"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// SimConfig defines session parameters.
type SimConfig struct {
	TickRate           int  `yaml:"tick_rate"`
	CheckpointInterval int  `yaml:"checkpoint_interval"`
	Strict             bool `yaml:"strict"`
}

// StorageConfig defines where demos and run results are kept.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig defines logger output.
type LogConfig struct {
	Level      string `yaml:"level"`
	Prefix     string `yaml:"prefix"`
	Timestamps bool   `yaml:"timestamps"`
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("config: sim.tick_rate must be positive, got %d", c.Sim.TickRate)
	}
	if c.Sim.CheckpointInterval <= 0 {
		return fmt.Errorf("config: sim.checkpoint_interval must be positive, got %d", c.Sim.CheckpointInterval)
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("config: storage.db_path is empty")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// Runtime converts the sim section into session configuration.
func (c Config) Runtime(seed uint32, randomSeed bool) core.RuntimeConfig {
	rc := core.DefaultConfig()
	rc.TickRate = c.Sim.TickRate
	rc.CheckpointInterval = c.Sim.CheckpointInterval
	rc.Strict = c.Sim.Strict
	rc.Seed = seed
	rc.RandomSeed = randomSeed
	return rc
}

// LogLevel returns the parsed log level, falling back to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
