package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-cross/internal/imaging"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Addr: got %s, want %s", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Limits != imaging.DefaultLimits() {
		t.Errorf("Limits: got %+v", cfg.Limits)
	}
	if cfg.Output.MaxAge != 24*time.Hour {
		t.Errorf("MaxAge: got %v, want 24h", cfg.Output.MaxAge)
	}
	if !strings.HasSuffix(cfg.Output.Dir, filepath.Join(AppName, "artifacts")) {
		t.Errorf("Dir: got %s", cfg.Output.Dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	if got := DefaultPath(); !strings.HasSuffix(got, filepath.Join(AppName, "config.yaml")) {
		t.Errorf("got %s", got)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"), noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Output.JPEGQuality != imaging.DefaultJPEGQuality {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 0.0.0.0:8080
  shutdown_timeout: 3s
output:
  dir: /tmp/artifacts
  jpeg_quality: 75
  max_age: 2h
limits:
  max_size_mb: 2
  max_dimension: 1024
log:
  level: debug
  format: text
`)

	cfg, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:8080" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("server: got %+v", cfg.Server)
	}
	if cfg.Output.Dir != "/tmp/artifacts" || cfg.Output.JPEGQuality != 75 || cfg.Output.MaxAge != 2*time.Hour {
		t.Errorf("output: got %+v", cfg.Output)
	}
	if cfg.Output.SweepInterval != DefaultSweepInterval {
		t.Errorf("unset sweep interval should keep default, got %v", cfg.Output.SweepInterval)
	}
	if cfg.Limits != (imaging.Limits{MaxSizeMB: 2, MaxDimension: 1024}) {
		t.Errorf("limits: got %+v", cfg.Limits)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log: got %+v", cfg.Log)
	}
}

func TestLoad_PartialFileKeepsEssentials(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \"\"\nlog:\n  level: \"\"\n")

	cfg, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Log.Level != DefaultLogLevel {
		t.Errorf("got addr=%q level=%q", cfg.Server.Addr, cfg.Log.Level)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	if _, err := LoadWithEnv(path, noEnv); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: 127.0.0.1:9000\n")

	cfg, err := LoadWithEnv(path, envMap(map[string]string{
		EnvAddr:          "0.0.0.0:7000",
		EnvOutputDir:     "/srv/out",
		EnvLogLevel:      "warn",
		EnvLogFormat:     "text",
		EnvMaxSizeMB:     "8",
		EnvMaxDimension:  "4096",
		EnvJPEGQuality:   "60",
		EnvMaxAge:        "30m",
		EnvSweepInterval: "5m",
	}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != "0.0.0.0:7000" {
		t.Errorf("addr: got %s", cfg.Server.Addr)
	}
	if cfg.Output.Dir != "/srv/out" || cfg.Output.JPEGQuality != 60 {
		t.Errorf("output: got %+v", cfg.Output)
	}
	if cfg.Output.MaxAge != 30*time.Minute || cfg.Output.SweepInterval != 5*time.Minute {
		t.Errorf("retention: got %v / %v", cfg.Output.MaxAge, cfg.Output.SweepInterval)
	}
	if cfg.Limits != (imaging.Limits{MaxSizeMB: 8, MaxDimension: 4096}) {
		t.Errorf("limits: got %+v", cfg.Limits)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" {
		t.Errorf("log: got %+v", cfg.Log)
	}
}

func TestLoad_HostPortEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port only", map[string]string{EnvPort: "8000"}, "127.0.0.1:8000"},
		{"host and port", map[string]string{EnvHost: "0.0.0.0", EnvPort: "8000"}, "0.0.0.0:8000"},
		{"addr wins", map[string]string{EnvAddr: "localhost:1", EnvPort: "8000"}, "localhost:1"},
		{"host alone ignored", map[string]string{EnvHost: "0.0.0.0"}, DefaultAddr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWithEnv("", envMap(tt.env))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Server.Addr != tt.want {
				t.Errorf("got %s, want %s", cfg.Server.Addr, tt.want)
			}
		})
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := map[string]string{
		EnvMaxSizeMB: "five",
		EnvMaxAge:    "forever",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := LoadWithEnv("", envMap(map[string]string{key: value}))
			if !errors.Is(err, ErrInvalidEnv) {
				t.Errorf("got %v, want ErrInvalidEnv", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"bad addr", func(c *Config) { c.Server.Addr = "localhost" }, ErrInvalidAddr},
		{"no output dir", func(c *Config) { c.Output.Dir = " " }, ErrNoOutputDir},
		{"zero size", func(c *Config) { c.Limits.MaxSizeMB = 0 }, ErrInvalidLimits},
		{"negative dimension", func(c *Config) { c.Limits.MaxDimension = -1 }, ErrInvalidLimits},
		{"quality too high", func(c *Config) { c.Output.JPEGQuality = 101 }, ErrInvalidJPEGQuality},
		{"quality zero", func(c *Config) { c.Output.JPEGQuality = 0 }, ErrInvalidJPEGQuality},
		{"negative max age", func(c *Config) { c.Output.MaxAge = -time.Second }, ErrInvalidRetention},
		{"unknown level", func(c *Config) { c.Log.Level = "chatty" }, ErrInvalidLogLevel},
		{"unknown format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Output.MaxAge = 90 * time.Minute

	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "max_age: 1h30m0s") {
		t.Errorf("durations should render as strings:\n%s", data)
	}

	var back Config
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, *cfg)
	}
}
