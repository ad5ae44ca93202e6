package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "ROOMBOOK"

type RBACConfig struct {
	PolicyFile string `mapstructure:"policy_file"` // Empty uses the built-in policy
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"` // OTLP gRPC collector, host:port
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type SandboxConfig struct {
	Addr string `mapstructure:"addr"`
	// Secret signs sandbox access tokens. A random one is generated when empty.
	Secret string `mapstructure:"secret"`
	// Access token lifetime in seconds
	TokenTTL uint `mapstructure:"token_ttl"`
	// Browser origins allowed to call the sandbox with credentials
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type Config struct {
	// Backend origin, e.g. http://localhost:5000
	BaseURL   string `mapstructure:"base_url"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // json or text

	// Request timeout in seconds
	Timeout uint `mapstructure:"timeout"`
	// Requests per second towards the backend. Zero disables pacing.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	Output string `mapstructure:"output"` // table, json or yaml

	Storage Storage       `mapstructure:"storage"`
	RBAC    RBACConfig    `mapstructure:"rbac"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Sandbox SandboxConfig `mapstructure:"sandbox"`
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Sandbox.TokenTTL) * time.Second
}

// Check if running in Docker container by checking for the presence of /.dockerenv file
func runningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

func getConfigPath() string {
	if runningInDocker() {
		return "/app/instance"
	}
	return "./instance"
}

// LoadConfig reads config.yaml, if any, and environment variables prefixed
// with ROOMBOOK_. An explicit configFile overrides the search path.
func LoadConfig(configFile ...string) (*Config, error) {
	var cfg Config

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(getConfigPath())
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, path := range configFile {
		if path != "" {
			v.SetConfigFile(path)
		}
	}

	for k, val := range Defaults() {
		v.SetDefault(k, val)
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Relative sqlite paths live in the instance folder
	if cfg.Storage.Type == StorageSQLite && cfg.Storage.SQLite.Path != ":memory:" && !filepath.IsAbs(cfg.Storage.SQLite.Path) {
		cfg.Storage.SQLite.Path = filepath.Join(getConfigPath(), cfg.Storage.SQLite.Path)
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		slog.Warn("tracing.sample_ratio must be between 0 and 1", slog.Float64("actual", cfg.Tracing.SampleRatio))
		cfg.Tracing.SampleRatio = 1
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	switch c.Storage.Type {
	case StorageSQLite:
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for sqlite storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage type %q", c.Storage.Type)
	}
	return nil
}
