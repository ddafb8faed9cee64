package config

import (
	_ "embed"
)

//go:embed defaults/sectorsim.yaml
var defaultYAML []byte

// Default returns the default configuration.
func Default() Config {
	return Config{
		Sim: SimConfig{
			TickRate:           35,
			CheckpointInterval: 350,
		},
		Storage: StorageConfig{
			DBPath: "~/.sectorsim/demos.db",
		},
		Log: LogConfig{
			Level:  "info",
			Prefix: "sectorsim",
		},
	}
}
