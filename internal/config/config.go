// Package config reads and writes labourtime.yaml or labourtime.toml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level labourtime configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Lock     LockConfig     `yaml:"lock" toml:"lock"`
	Payout   PayoutConfig   `yaml:"payout" toml:"payout"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Log      LogConfig      `yaml:"log" toml:"log"`
	CycleLog CycleLogConfig `yaml:"cycle_log" toml:"cycle_log"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // "sqlite" or "postgres"
	DSN    string `yaml:"dsn" toml:"dsn"`
}

// LockConfig selects how payout cycles are serialised.
type LockConfig struct {
	Backend   string   `yaml:"backend" toml:"backend"` // "local" or "redis"
	RedisAddr string   `yaml:"redis_addr,omitempty" toml:"redis_addr,omitempty"`
	Key       string   `yaml:"key" toml:"key"`
	TTL       Duration `yaml:"ttl" toml:"ttl"`
}

// PayoutConfig controls the serve loop.
type PayoutConfig struct {
	Interval Duration `yaml:"interval" toml:"interval"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text or json
}

// CycleLogConfig controls the CSV log of payout cycles.
type CycleLogConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Duration is a time.Duration written as "5m" in config files.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SlogLevel parses the configured level.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.Level, err)
	}
	return l, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn must be set"))
	}
	switch c.Lock.Backend {
	case "local":
	case "redis":
		if c.Lock.RedisAddr == "" {
			errs = append(errs, errors.New("lock.redis_addr must be set for the redis backend"))
		}
		if c.Lock.TTL <= 0 {
			errs = append(errs, errors.New("lock.ttl must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("lock.backend must be local or redis, got %q", c.Lock.Backend))
	}
	if c.Payout.Interval <= 0 {
		errs = append(errs, errors.New("payout.interval must be positive"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a config file, YAML or TOML by extension, on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config, YAML or TOML by extension.
func Save(path string, cfg *Config) error {
	var data []byte
	var err error
	if isTOML(path) {
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config for a single-node installation backed by a
// local SQLite file.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "labourtime.db",
		},
		Lock: LockConfig{
			Backend: "local",
			Key:     "labourtime:payout",
			TTL:     Duration(5 * time.Minute),
		},
		Payout: PayoutConfig{
			Interval: Duration(time.Hour),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		CycleLog: CycleLogConfig{
			Path: filepath.Join("logs", "payout-cycles.csv"),
		},
	}
}
