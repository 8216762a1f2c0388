// Package config loads the fleetroster application configuration from a
// YAML file and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/inovacc/fleetroster/internal/application"
	"github.com/inovacc/fleetroster/internal/store"
	"gopkg.in/yaml.v3"
)

const (
	DefaultHTTPAddr       = ":4000"
	DefaultGRPCAddr       = ":50051"
	DefaultRequestTimeout = 30 * time.Second
	DefaultUser           = "default"
	DefaultBaseURL        = "http://localhost:4000"
	DefaultDatabase       = "fleetroster.db"
	DefaultBoltDatabase   = "fleetroster.bolt"
)

// ServerConfig configures the HTTP API and gRPC health listeners.
type ServerConfig struct {
	HTTPAddr       string        `yaml:"http_addr"`
	GRPCAddr       string        `yaml:"grpc_addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ClientConfig configures the remote commands.
type ClientConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	// Format is text or json
	Format string `yaml:"format"`
}

// Config models the fleetroster config.yaml.
type Config struct {
	Store       store.Config `yaml:"store"`
	Server      ServerConfig `yaml:"server"`
	Client      ClientConfig `yaml:"client"`
	Log         LogConfig    `yaml:"log"`
	DefaultUser string       `yaml:"default_user"`

	// Path is the file the config was loaded from; empty for pure defaults
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

// Load reads the config at path. An empty path means $FLEETROSTER_CONFIG or
// the application directory's config.yaml. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := application.ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}

		path = p
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("config file not found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}

		cfg.Path = path
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Save writes cfg as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = store.DriverSQLite
	}

	if c.Store.Path == "" && c.Store.Driver != store.DriverPostgres {
		name := DefaultDatabase
		if c.Store.Driver == store.DriverBolt {
			name = DefaultBoltDatabase
		}

		if p, err := application.DataPath(name); err == nil {
			c.Store.Path = p
		}
	}

	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}

	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = DefaultGRPCAddr
	}

	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}

	if c.Client.BaseURL == "" {
		c.Client.BaseURL = DefaultBaseURL
	}

	if c.Client.Timeout <= 0 {
		c.Client.Timeout = DefaultRequestTimeout
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	c.DefaultUser = strings.TrimSpace(c.DefaultUser)
	if c.DefaultUser == "" {
		c.DefaultUser = DefaultUser
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case store.DriverSQLite, store.DriverBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for %s", c.Store.Driver)
		}
	case store.DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownDriver, c.Store.Driver)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}

	return level, nil
}

// NewLogger builds a slog logger writing to w as configured.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// SetupLogging installs the configured logger as the slog default.
func (c *Config) SetupLogging(w io.Writer) *slog.Logger {
	logger := c.Log.NewLogger(w)
	slog.SetDefault(logger)

	return logger
}
