// Package config loads image-cross settings from a YAML file and the
// environment.
//
// Values are resolved in order: built-in defaults, then the YAML file, then
// IMAGE_CROSS_* environment variables. Command-line flags are applied last
// by the CLI.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-cross/internal/imaging"
	"github.com/ironsheep/image-cross/internal/logging"
)

const (
	// AppName is the application name used for XDG directory paths.
	AppName = "image-cross"

	// DefaultAddr matches the address the service has always listened on.
	DefaultAddr = "127.0.0.1:5000"

	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxAge          = 24 * time.Hour
	DefaultSweepInterval   = time.Hour
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
)

// Config holds every runtime setting.
type Config struct {
	Server ServerConfig   `yaml:"server"`
	Output OutputConfig   `yaml:"output"`
	Limits imaging.Limits `yaml:"limits"`
	Log    LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// SeedCatalog loads the starter beverages at startup.
	SeedCatalog bool `yaml:"seed_catalog"`
}

// OutputConfig configures artifact storage and retention.
type OutputConfig struct {
	Dir           string        `yaml:"dir"`
	JPEGQuality   int           `yaml:"jpeg_quality"`
	MaxAge        time.Duration `yaml:"max_age"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
			SeedCatalog:     true,
		},
		Output: OutputConfig{
			Dir:           DefaultOutputDir(),
			JPEGQuality:   imaging.DefaultJPEGQuality,
			MaxAge:        DefaultMaxAge,
			SweepInterval: DefaultSweepInterval,
		},
		Limits: imaging.DefaultLimits(),
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultPath returns the config file location under the XDG config home.
// On Linux: ~/.config/image-cross/config.yaml
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultOutputDir returns the artifact directory under the XDG data home.
// On Linux: ~/.local/share/image-cross/artifacts
func DefaultOutputDir() string {
	return filepath.Join(xdg.DataHome, AppName, "artifacts")
}

// Load reads the config file at path and applies environment overrides from
// the process environment. A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	// Fill essentials a partial file left empty
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir()
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	return cfg, nil
}

// Environment variable names.
const (
	EnvAddr          = "IMAGE_CROSS_ADDR"
	EnvOutputDir     = "IMAGE_CROSS_OUTPUT_DIR"
	EnvLogLevel      = "IMAGE_CROSS_LOG_LEVEL"
	EnvLogFormat     = "IMAGE_CROSS_LOG_FORMAT"
	EnvMaxSizeMB     = "IMAGE_CROSS_MAX_SIZE_MB"
	EnvMaxDimension  = "IMAGE_CROSS_MAX_DIMENSION"
	EnvJPEGQuality   = "IMAGE_CROSS_JPEG_QUALITY"
	EnvMaxAge        = "IMAGE_CROSS_MAX_AGE"
	EnvSweepInterval = "IMAGE_CROSS_SWEEP_INTERVAL"

	// EnvHost and EnvPort are honoured when EnvAddr is unset.
	EnvHost = "HOST"
	EnvPort = "PORT"
)

func (c *Config) applyEnv(getenv func(string) string) error {
	lookup := func(key string) (string, bool) {
		v := strings.TrimSpace(getenv(key))
		return v, v != ""
	}

	if v, ok := lookup(EnvAddr); ok {
		c.Server.Addr = v
	} else if port, ok := lookup(EnvPort); ok {
		host, _, err := net.SplitHostPort(c.Server.Addr)
		if err != nil {
			host = ""
		}
		if h, ok := lookup(EnvHost); ok {
			host = h
		}
		c.Server.Addr = net.JoinHostPort(host, port)
	}
	if v, ok := lookup(EnvOutputDir); ok {
		c.Output.Dir = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Log.Format = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvMaxSizeMB, &c.Limits.MaxSizeMB},
		{EnvMaxDimension, &c.Limits.MaxDimension},
		{EnvJPEGQuality, &c.Output.JPEGQuality},
	}
	for _, e := range ints {
		v, ok := lookup(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, e.key, v, err)
		}
		*e.dst = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvMaxAge, &c.Output.MaxAge},
		{EnvSweepInterval, &c.Output.SweepInterval},
	}
	for _, e := range durations {
		v, ok := lookup(e.key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidEnv, e.key, v, err)
		}
		*e.dst = d
	}
	return nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddr, c.Server.Addr)
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return ErrNoOutputDir
	}
	if c.Limits.MaxSizeMB <= 0 || c.Limits.MaxDimension <= 0 {
		return ErrInvalidLimits
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return ErrInvalidJPEGQuality
	}
	if c.Output.MaxAge < 0 || c.Output.SweepInterval < 0 || c.Server.ShutdownTimeout < 0 {
		return ErrInvalidRetention
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	switch logging.LogFormat(strings.ToLower(strings.TrimSpace(c.Log.Format))) {
	case logging.FormatJSON, logging.FormatText:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
