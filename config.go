package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigEnvVar overrides the default config file location.
	ConfigEnvVar = "GENPASS_CONFIG"

	DefaultMegaOps = 5
)

// Config holds defaults that flags may override.
type Config struct {
	MaxMem      string  `yaml:"maxmem"`
	MaxMemFrac  float64 `yaml:"maxmemfrac"`
	MegaOps     int     `yaml:"megaops"`
	Length      int     `yaml:"length"`
	NumbersOnly bool    `yaml:"numbers_only"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MaxMem:     "0",
		MaxMemFrac: DefaultMaxMemFrac,
		MegaOps:    DefaultMegaOps,
		Length:     DefaultPasswordLen,
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/genpass/config.yaml or the
// platform equivalent, or "" when there is no config directory.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "genpass", "config.yaml")
}

// LoadConfig reads path over the defaults. A missing file is only an error
// when required is set, i.e. when the user named it explicitly.
func LoadConfig(path string, required bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, &Error{Kind: KindFileReadFailed, Op: "read config", Path: path, Err: err}
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := parseMemory(c.MaxMem); err != nil {
		return fmt.Errorf("maxmem: %w", err)
	}
	if c.MaxMemFrac < 0 {
		return fmt.Errorf("maxmemfrac must not be negative")
	}
	if c.MegaOps < 1 {
		return fmt.Errorf("megaops must be at least 1")
	}
	if c.Length < MinPasswordLen || c.Length > MaxPasswordLen {
		return fmt.Errorf("length must be between %d and %d", MinPasswordLen, MaxPasswordLen)
	}
	return nil
}

// parseMemory parses sizes like "0", "512", "512M", "1G", "1000000000B".
// Suffixes are decimal; a bare number is megabytes.
func parseMemory(s string) (uint64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}

	multiplier := uint64(1000000)
	switch {
	case strings.HasSuffix(s, "GB") || strings.HasSuffix(s, "G"):
		multiplier = 1000000000
		s = strings.TrimSuffix(strings.TrimSuffix(s, "GB"), "G")
	case strings.HasSuffix(s, "MB") || strings.HasSuffix(s, "M"):
		s = strings.TrimSuffix(strings.TrimSuffix(s, "MB"), "M")
	case strings.HasSuffix(s, "KB") || strings.HasSuffix(s, "K"):
		multiplier = 1000
		s = strings.TrimSuffix(strings.TrimSuffix(s, "KB"), "K")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		s = strings.TrimSuffix(s, "B")
	}

	val, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if val != 0 && val > ^uint64(0)/multiplier {
		return 0, fmt.Errorf("memory value too large")
	}
	return val * multiplier, nil
}
