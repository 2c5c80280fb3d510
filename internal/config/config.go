// Package config loads paperseal defaults from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"paperseal/internal/document"
	"paperseal/internal/envelope"
	"paperseal/internal/page"
	"paperseal/internal/qr"
)

// PathEnvVar names a config file when --config is not given.
const PathEnvVar = "PAPERSEAL_CONFIG"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config mirrors the command-line flags. Flags override file values.
type Config struct {
	PageSize      string  `yaml:"page_size"`
	NotesLabel    string  `yaml:"notes_label"`
	SkipNotesLine bool    `yaml:"skip_notes_line"`
	Grid          bool    `yaml:"grid"`
	Level         string  `yaml:"level"`
	Format        string  `yaml:"format"`
	MinModuleSize float64 `yaml:"min_module_size"` // mm
	SegmentSize   int     `yaml:"segment_size"`
	KDF           KDF     `yaml:"kdf"`
	LogLevel      string  `yaml:"log_level"`
}

// KDF holds the Argon2id work factor.
type KDF struct {
	Time    uint32 `yaml:"time"`
	Memory  string `yaml:"memory"` // e.g. "64M", "1G"
	Threads uint8  `yaml:"threads"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := envelope.DefaultParams()
	return &Config{
		PageSize:      page.Default.String(),
		NotesLabel:    document.DefaultNotesLabel,
		Level:         qr.DefaultLevel.String(),
		Format:        string(p.Format),
		MinModuleSize: document.DefaultMinModuleSize,
		SegmentSize:   p.SegmentSize,
		KDF: KDF{
			Time:    p.KDF.Time,
			Memory:  fmt.Sprintf("%dM", p.KDF.Memory/1024),
			Threads: p.KDF.Threads,
		},
		LogLevel: "warn",
	}
}

// Load reads a YAML file over the defaults and validates the result.
// Keys the file omits keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field by converting it.
func (c *Config) Validate() error {
	if _, err := page.Parse(c.PageSize); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.QRLevel(); err != nil {
		return err
	}
	if c.MinModuleSize < 0 {
		return fmt.Errorf("%w: min_module_size must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	return nil
}

// QRLevel returns the configured error correction level.
func (c *Config) QRLevel() (qr.Level, error) {
	l, err := qr.ParseLevel(c.Level)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return l, nil
}

// Params converts the cipher settings to envelope parameters.
func (c *Config) Params() (envelope.Params, error) {
	format, err := envelope.ParseFormat(c.Format)
	if err != nil {
		return envelope.Params{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	memory, err := ParseMemory(c.KDF.Memory)
	if err != nil {
		return envelope.Params{}, fmt.Errorf("%w: kdf memory: %v", ErrInvalidConfig, err)
	}

	p := envelope.Params{
		KDF: envelope.WorkFactor{
			Time:    c.KDF.Time,
			Memory:  memory,
			Threads: c.KDF.Threads,
		},
		SegmentSize: c.SegmentSize,
		Format:      format,
	}
	if err := p.Validate(); err != nil {
		return envelope.Params{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return p, nil
}

// ParseMemory parses memory strings like "64", "64M", "64MB", "1G", "1GB"
// into KiB. Bare numbers are treated as MB.
func ParseMemory(s string) (uint32, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	multiplier := uint64(1024) // default MB to KB

	if strings.HasSuffix(s, "GB") || strings.HasSuffix(s, "G") {
		multiplier = 1024 * 1024 // GB to KB
		s = strings.TrimSuffix(strings.TrimSuffix(s, "GB"), "G")
	} else if strings.HasSuffix(s, "MB") || strings.HasSuffix(s, "M") {
		s = strings.TrimSuffix(strings.TrimSuffix(s, "MB"), "M")
	} else if strings.HasSuffix(s, "KB") || strings.HasSuffix(s, "K") {
		multiplier = 1
		s = strings.TrimSuffix(strings.TrimSuffix(s, "KB"), "K")
	}

	val, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid memory value %q", s)
	}

	result := val * multiplier
	if result > envelope.MaxArgon2Memory {
		return 0, fmt.Errorf("memory value too large: at most 4G")
	}
	if result < 1024 {
		return 0, fmt.Errorf("memory must be at least 1MB")
	}

	return uint32(result), nil
}
