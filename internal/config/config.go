package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// remote store (postgres)
	PostgresHost    string `toml:"postgres_host"`
	PostgresPort    string `toml:"postgres_port"`
	PostgresDBName  string `toml:"postgres_db_name"`
	PostgresUser    string `toml:"postgres_user"`
	RemoteTimeoutMs int    `toml:"remote_timeout_ms"`
	RemoteWaitMs    int    `toml:"remote_wait_ms"`
	RemoteDisabled  bool   `toml:"remote_disabled"`
	EnsureSchema    bool   `toml:"ensure_schema"`

	// redis: login sessions, rate limiting, optional local store backend
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// local store: "file", "memory" or "redis"
	LocalStoreBackend string `toml:"local_store_backend"`
	LocalStorePath    string `toml:"local_store_path"`
	MemoryStoreBytes  int    `toml:"memory_store_bytes"`

	// program data; empty means the built-in program
	ProgramPath string `toml:"program_path"`
	TimeZone    string `toml:"time_zone"`

	AllowedOrigins              []string `toml:"allowed_origins"`
	TrackerRateLimitPerMin      int      `toml:"tracker_rate_limit_per_min"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	MaxRequestBodyBytes         int64    `toml:"max_request_body_bytes"`

	// secrets, never read from the file
	PostgresPassword  string `toml:"-"`
	RedisPassword     string `toml:"-"`
	AdminUsername     string `toml:"-"`
	AdminPasswordHash string `toml:"-"`
	SentryDSN         string `toml:"-"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("env [%s] not configured", env)
	}
	return cfg, nil
}

// Load reads the TOML config file, picks the section for env and fills the
// secrets from env vars.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config [%s]: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}
	cfg.applyDefaults()
	cfg.readSecrets()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PrometheusMetricsPort == "" {
		c.PrometheusMetricsPort = "2112"
	}
	if c.LocalStoreBackend == "" {
		c.LocalStoreBackend = "file"
	}
	if c.LocalStorePath == "" {
		c.LocalStorePath = "./data"
	}
	if c.MemoryStoreBytes == 0 {
		c.MemoryStoreBytes = 8 * 1024 * 1024
	}
	if c.TrackerRateLimitPerMin == 0 {
		c.TrackerRateLimitPerMin = 120
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 5
	}
	if c.MaxRequestBodyBytes == 0 {
		c.MaxRequestBodyBytes = 1 << 20
	}
}

func (c *Config) readSecrets() {
	c.PostgresPassword = os.Getenv("GYMTRACK_POSTGRES_PASS")
	c.RedisPassword = os.Getenv("GYMTRACK_REDIS_PASS")
	c.AdminUsername = os.Getenv("GYMTRACK_ADMIN_USERNAME")
	c.AdminPasswordHash = os.Getenv("GYMTRACK_ADMIN_PASSWORD_HASH")
	c.SentryDSN = os.Getenv("SENTRY_DSN")
}

func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.RemoteTimeoutMs) * time.Millisecond
}

func (c *Config) RemoteWait() time.Duration {
	return time.Duration(c.RemoteWaitMs) * time.Millisecond
}

// Location is the time zone used for calendar days in stats.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.TimeZone)
}
