// Package config loads invoker configuration from TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/callguard/invoke"
)

// Duration is a time.Duration that unmarshals from TOML strings like "10s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// File is the on-disk shape of the invoker configuration.
//
//	max_calls = 60
//	window = "1m"
//	max_retries = 3
//	base_delay = "2s"
type File struct {
	MaxCalls        int      `toml:"max_calls"`
	Window          Duration `toml:"window"`
	MaxRetries      int      `toml:"max_retries"`
	BaseDelay       Duration `toml:"base_delay"`
	MaxDelay        Duration `toml:"max_delay"`
	JitterFraction  float64  `toml:"jitter_fraction"`
	Grace           Duration `toml:"grace"`
	ServerBaseDelay Duration `toml:"server_base_delay"`
	ServerMaxDelay  Duration `toml:"server_max_delay"`
}

// Config converts the file shape to an invoke.Config.
func (f File) Config() invoke.Config {
	return invoke.Config{
		MaxCalls:        f.MaxCalls,
		Window:          time.Duration(f.Window),
		MaxRetries:      f.MaxRetries,
		BaseDelay:       time.Duration(f.BaseDelay),
		MaxDelay:        time.Duration(f.MaxDelay),
		JitterFraction:  f.JitterFraction,
		Grace:           time.Duration(f.Grace),
		ServerBaseDelay: time.Duration(f.ServerBaseDelay),
		ServerMaxDelay:  time.Duration(f.ServerMaxDelay),
	}
}

// StandardPaths returns the configuration file locations in priority order.
func StandardPaths() []string {
	paths := []string{"callguard.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "callguard", "config.toml"))
	}
	return paths
}

// Load reads the first configuration file found at a standard path,
// returning the config, the path it was read from, and any error. A
// missing file is not an error; the zero config and empty path come back.
func Load() (invoke.Config, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadFile(path)
			return cfg, path, err
		}
	}
	return invoke.Config{}, "", nil
}

// LoadFile reads and validates a configuration file. Defaults are applied
// before validation, so only max_calls and window are required.
func LoadFile(path string) (invoke.Config, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return invoke.Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg := f.Config()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return invoke.Config{}, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return cfg, nil
}
