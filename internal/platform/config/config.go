package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig は gRPC / HTTP サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	HTTPListenAddr string `yaml:"http_listen_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。接続先は URL 一つで指定します。
type DatabaseConfig struct {
	URL                string        `yaml:"url"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// SessionConfig はセッションストアに関する設定です。
type SessionConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"-"`
	TTLRaw    string        `yaml:"ttl"`
}

// LogConfig はログ出力に関する設定です。
type LogConfig struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// envOverrides は環境変数による上書き値です。空の項目は上書きしません。
type envOverrides struct {
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	ListenAddr     string `envconfig:"GRPC_LISTEN_ADDR"`
	HTTPListenAddr string `envconfig:"HTTP_LISTEN_ADDR"`
	RedisAddr      string `envconfig:"REDIS_ADDR"`
	SessionTTL     string `envconfig:"SESSION_TTL"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

const (
	defaultListenAddr     = ":50051"
	defaultHTTPListenAddr = ":8080"
	defaultRedisAddr      = "127.0.0.1:6379"
	defaultSessionTTL     = 12 * time.Hour
)

// Load は指定されたパスの YAML を読み込み、環境変数で上書きします。
// ファイルが存在しない場合は環境変数のみで構成します。
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("config: parse yaml: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("config: read file %s: %w", path, err)
		}
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	cfg.applyEnv(env)

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv(env envOverrides) {
	if env.DatabaseURL != "" {
		c.Database.URL = env.DatabaseURL
	}
	if env.ListenAddr != "" {
		c.Server.ListenAddr = env.ListenAddr
	}
	if env.HTTPListenAddr != "" {
		c.Server.HTTPListenAddr = env.HTTPListenAddr
	}
	if env.RedisAddr != "" {
		c.Session.RedisAddr = env.RedisAddr
	}
	if env.SessionTTL != "" {
		c.Session.TTLRaw = env.SessionTTL
	}
	if env.LogFormat != "" {
		c.Log.Format = env.LogFormat
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = defaultListenAddr
	}
	if c.Server.HTTPListenAddr == "" {
		c.Server.HTTPListenAddr = defaultHTTPListenAddr
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}

	if c.Session.RedisAddr == "" {
		c.Session.RedisAddr = defaultRedisAddr
	}
	ttl, err := parseDurationAllowEmpty(c.Session.TTLRaw)
	if err != nil {
		return fmt.Errorf("config: session.ttl: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	c.Session.TTL = ttl

	switch c.Log.Format {
	case "":
		c.Log.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.URL == "" {
		return fmt.Errorf("config: database.url (DATABASE_URL) must be set")
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	return d.URL
}
