// pkg/config/types.go
package config

import "github.com/pentora-ai/reconcore/pkg/recontypes"

// Config is the root configuration structure for the recon engine. It
// aggregates logging configuration and the scan engine's tunable set.
type Config struct {
	Log  LogConfig             `description:"Logging configuration" koanf:"log"`
	Scan recontypes.ScanConfig `description:"Scan engine tunables" koanf:"scan"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level (debug, info, warn, error)" koanf:"level"`
	Format string `description:"Log format: json | text" koanf:"format"`
	File   string `description:"Log file path (optional)" koanf:"file"`
}
