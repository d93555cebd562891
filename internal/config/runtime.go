package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// RuntimeSettings holds the subset of the configuration that can be applied
// to a running daemon without restarting it. The config watcher loads these
// fresh on every file change.
type RuntimeSettings struct {
	Led struct {
		Brightness int   `toml:"brightness"`
		Breathing  *bool `toml:"breathing"`
	} `toml:"led"`
	Logging map[string]string `toml:"logging"`
}

// LoadRuntimeSettings reads the runtime-tunable settings from a TOML config
// file. Missing sections come back zero-valued; a missing file is an error so
// the watcher can report it.
func LoadRuntimeSettings(path string) (RuntimeSettings, error) {
	var settings RuntimeSettings

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse config: %w", err)
	}

	return settings, nil
}
