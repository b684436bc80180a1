// Package config loads the quickcdc command line configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/kalbasit/quickcdc"
)

// ErrMaskConflict is returned when both mask and mask_bits are set.
var ErrMaskConflict = errors.New("mask and mask_bits are mutually exclusive")

// Size is a byte count written either as an integer or in human form ("16KiB", "1m").
type Size uint32

// ParseSize parses a byte count. Suffixes are binary: "k" and "KiB" are both 1024.
func ParseSize(s string) (Size, error) {
	n, err := units.RAMInBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	if n < 0 || n > math.MaxUint32 {
		return 0, fmt.Errorf("invalid size %q: out of range", s)
	}

	return Size(n), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", value.Line)
	}

	size, err := ParseSize(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*s = size

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Size) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s Size) String() string {
	return units.BytesSize(float64(s))
}

// Chunking mirrors quickcdc.Config with YAML-friendly types.
type Chunking struct {
	MinSize    Size    `yaml:"min_size"`
	MaxSize    Size    `yaml:"max_size"`
	WindowSize uint32  `yaml:"window_size"`
	Mask       *uint32 `yaml:"mask,omitempty"` // accepts 0xFFFF
	MaskBits   *uint8  `yaml:"mask_bits,omitempty"`
	Placement  string  `yaml:"placement"`
	Hash       string  `yaml:"hash"`
	Seed       uint64  `yaml:"seed"`
	BufferSize Size    `yaml:"buffer_size"`
}

// Logging selects how the command line tool logs.
type Logging struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"` // "text" or "json"
	NoColor bool   `yaml:"no_color"`
}

// Config is the complete configuration file.
type Config struct {
	Chunking Chunking `yaml:"chunking"`
	Logging  Logging  `yaml:"logging"`
	Workers  int      `yaml:"workers"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config

	cfg.applyDefaults()

	return &cfg
}

// Load reads, completes and validates the configuration at path. An empty
// path yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	if path == "" {
		return Decode(strings.NewReader(""))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode is Load for an already open reader. An empty document yields the defaults.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvironmentOverrides()

	// Apply defaults
	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvironmentOverrides overrides config values with environment variables if set
func (c *Config) applyEnvironmentOverrides() {
	if val := os.Getenv("QUICKCDC_LOG_LEVEL"); val != "" {
		c.Logging.Level = val
	}

	if val := os.Getenv("QUICKCDC_LOG_FORMAT"); val != "" {
		c.Logging.Format = val
	}

	if val := os.Getenv("QUICKCDC_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Workers = n
		}
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Logging.NoColor = true
	}
}

// applyDefaults sets default values for unset configuration fields
func (c *Config) applyDefaults() {
	if c.Chunking.MinSize == 0 {
		c.Chunking.MinSize = quickcdc.DefaultMinSize
	}

	if c.Chunking.MaxSize == 0 {
		c.Chunking.MaxSize = quickcdc.DefaultMaxSize
	}

	if c.Chunking.WindowSize == 0 {
		c.Chunking.WindowSize = quickcdc.DefaultWindowSize
	}

	if c.Chunking.Placement == "" {
		c.Chunking.Placement = quickcdc.WindowFollowing.String()
	}

	if c.Chunking.Hash == "" {
		c.Chunking.Hash = quickcdc.HashPolynomial.String()
	}

	if c.Logging.Level == "" {
		c.Logging.Level = logrus.InfoLevel.String()
	}

	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Workers == 0 {
		c.Workers = 4
	}
}

// Validate checks the chunking parameters against the library rules and the
// logging and worker settings.
func (c *Config) Validate() error {
	if _, err := c.Chunking.Config(); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}

	return nil
}

// Options converts the chunking section into library options.
func (c *Chunking) Options() ([]quickcdc.Option, error) {
	hash, err := quickcdc.ParseHashKind(c.Hash)
	if err != nil {
		return nil, err
	}

	placement, err := quickcdc.ParseWindowPlacement(c.Placement)
	if err != nil {
		return nil, err
	}

	opts := []quickcdc.Option{
		quickcdc.WithMinSize(uint32(c.MinSize)),
		quickcdc.WithMaxSize(uint32(c.MaxSize)),
		quickcdc.WithWindowSize(c.WindowSize),
		quickcdc.WithWindowPlacement(placement),
		quickcdc.WithHash(hash),
		quickcdc.WithSeed(c.Seed),
	}

	switch {
	case c.Mask != nil && c.MaskBits != nil:
		return nil, ErrMaskConflict
	case c.MaskBits != nil:
		opts = append(opts, quickcdc.WithMaskBits(*c.MaskBits))
	case c.Mask != nil:
		opts = append(opts, quickcdc.WithMask(*c.Mask))
	}

	if c.BufferSize != 0 {
		opts = append(opts, quickcdc.WithBufferSize(int(c.BufferSize)))
	}

	return opts, nil
}

// Config resolves the chunking section to a validated library configuration.
func (c *Chunking) Config() (quickcdc.Config, error) {
	opts, err := c.Options()
	if err != nil {
		return quickcdc.Config{}, err
	}

	return quickcdc.NewConfig(opts...)
}
