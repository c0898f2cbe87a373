package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file. Nil fields are unset.
type FileConfig struct {
	Windows WindowsConfig `toml:"windows"`
	Filter  FilterConfig  `toml:"filter"`
	Output  OutputConfig  `toml:"output"`
	Log     LogConfig     `toml:"log"`
}

// WindowsConfig maps grouping settings.
type WindowsConfig struct {
	By     *string  `toml:"by"`
	Length *float64 `toml:"length"`
	// Count > 0 selects count sizing.
	Count   *int     `toml:"count"`
	QDH     *float64 `toml:"qdh"`
	Epsilon *float64 `toml:"epsilon"`
}

// FilterConfig lists fields every trackpoint must carry.
type FilterConfig struct {
	Require []string `toml:"require"`
}

// OutputConfig selects the summary format.
type OutputConfig struct {
	Format *string `toml:"format"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
