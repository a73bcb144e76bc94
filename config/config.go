package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Config is the main configuration structure
type Config struct {
	TicksPerBeat int    `json:"ticksPerBeat"`
	ZoomPercent  int    `json:"zoomPercent"`
	MeasureCount int    `json:"measureCount"`
	Numerator    int    `json:"numerator"`
	Denominator  int    `json:"denominator"`
	CellPixels   int    `json:"cellPixels"` // pixels covered by one terminal cell in the measure bar
	Palette      string `json:"palette,omitempty"`
	DebugLog     bool   `json:"debugLog,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		TicksPerBeat: 960,
		ZoomPercent:  100,
		MeasureCount: 32,
		Numerator:    4,
		Denominator:  4,
		CellPixels:   8,
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-measure"), nil
}

// Path returns the full path to config.json
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found.
// Fields absent from the file keep their defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}

	return cfg, nil
}

// Validate checks the values a sequence is created from.
func (c *Config) Validate() error {
	switch {
	case c.TicksPerBeat < 1:
		return errors.Errorf("ticksPerBeat must be positive, got %d", c.TicksPerBeat)
	case c.ZoomPercent < 1:
		return errors.Errorf("zoomPercent must be positive, got %d", c.ZoomPercent)
	case c.MeasureCount < 1:
		return errors.Errorf("measureCount must be positive, got %d", c.MeasureCount)
	case c.CellPixels < 1:
		return errors.Errorf("cellPixels must be positive, got %d", c.CellPixels)
	case c.Numerator < 1 || c.Numerator > 64:
		return errors.Errorf("numerator must be between 1 and 64, got %d", c.Numerator)
	case c.Denominator < 1 || c.Denominator > 64 || c.Denominator&(c.Denominator-1) != 0:
		return errors.Errorf("denominator must be a power of two up to 64, got %d", c.Denominator)
	}
	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing config %s", path)
}
