package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverBolt     = "bolt"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string           `toml:"app-name"`
	Environment string           `toml:"environment"`
	HTTP        HTTPConfig       `toml:"http"`
	Store       StoreConfig      `toml:"store"`
	Redis       RedisConfig      `toml:"redis"`
	Database    DatabaseConfig   `toml:"database"`
	Context     ContextConfig    `toml:"context"`
	Logger      LoggerConfig     `toml:"logger"`
	Migrations  MigrationsConfig `toml:"migrations"`
}

type HTTPConfig struct {
	Host         string   `toml:"host"`
	Port         string   `toml:"port"`
	ReadTimeout  Duration `toml:"read-timeout"`
	WriteTimeout Duration `toml:"write-timeout"`
	IdleTimeout  Duration `toml:"idle-timeout"`
}

type StoreConfig struct {
	Driver      string   `toml:"driver"`
	Path        string   `toml:"path"`
	Bucket      string   `toml:"bucket"`
	QuotaBytes  int64    `toml:"quota-bytes"`
	OpenTimeout Duration `toml:"open-timeout"`
}

type RedisConfig struct {
	URL      string `toml:"url"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type DatabaseConfig struct {
	URL             string   `toml:"url"`
	Host            string   `toml:"host"`
	Port            string   `toml:"port"`
	Name            string   `toml:"name"`
	User            string   `toml:"user"`
	Password        string   `toml:"password"`
	MaxOpenConns    int      `toml:"max-open-conns"`
	MaxIdleConns    int      `toml:"max-idle-conns"`
	MaxConnLifetime Duration `toml:"max-conn-lifetime"`
	SSLMode         string   `toml:"sslmode"`
}

type ContextConfig struct {
	RequestTimeout  Duration `toml:"request-timeout"`
	ShutdownTimeout Duration `toml:"shutdown-timeout"`
}

type LoggerConfig struct {
	Level      string `toml:"level"`
	Encoding   string `toml:"encoding"`
	Output     string `toml:"output"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max-size-mb"`
	MaxBackups int    `toml:"max-backups"`
	MaxAgeDays int    `toml:"max-age-days"`
}

type MigrationsConfig struct {
	Enabled bool `toml:"enabled"`
}

// Duration decodes TOML strings such as "5s" into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		AppName:     "todos",
		Environment: "development",
		HTTP: HTTPConfig{
			Host:         "127.0.0.1",
			Port:         "8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{10 * time.Second},
			IdleTimeout:  Duration{120 * time.Second},
		},
		Store: StoreConfig{
			Driver:      DriverBolt,
			Path:        "./data/todos.db",
			Bucket:      "kv",
			QuotaBytes:  5 << 20,
			OpenTimeout: Duration{time.Second},
		},
		Redis: RedisConfig{
			URL:    "redis://localhost:6379",
			Prefix: "todos:",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			Name:            "todos",
			User:            "todos",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			MaxConnLifetime: Duration{time.Hour},
			SSLMode:         "disable",
		},
		Context: ContextConfig{
			RequestTimeout:  Duration{5 * time.Second},
			ShutdownTimeout: Duration{15 * time.Second},
		},
		Logger: LoggerConfig{
			Level:      "info",
			Encoding:   "json",
			Output:     "stdout",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
		Migrations: MigrationsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from an optional TOML file, then from environment
// variables (optionally .env), which take precedence. path may be empty, in
// which case TODO_CONFIG is consulted.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Defaults()

	if path == "" {
		path = os.Getenv("TODO_CONFIG")
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.AppName = getString("APP_NAME", cfg.AppName)
	cfg.Environment = getString("APP_ENV", cfg.Environment)

	cfg.HTTP.Host = getString("SERVER_HOST", cfg.HTTP.Host)
	cfg.HTTP.Port = getString("SERVER_PORT", cfg.HTTP.Port)
	cfg.HTTP.ReadTimeout.Duration = getDuration("SERVER_READ_TIMEOUT", cfg.HTTP.ReadTimeout.Duration)
	cfg.HTTP.WriteTimeout.Duration = getDuration("SERVER_WRITE_TIMEOUT", cfg.HTTP.WriteTimeout.Duration)
	cfg.HTTP.IdleTimeout.Duration = getDuration("SERVER_IDLE_TIMEOUT", cfg.HTTP.IdleTimeout.Duration)

	cfg.Store.Driver = getString("TODO_STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.Path = getString("TODO_STORE_PATH", cfg.Store.Path)
	cfg.Store.Bucket = getString("TODO_STORE_BUCKET", cfg.Store.Bucket)
	cfg.Store.QuotaBytes = getInt64("TODO_STORE_QUOTA_BYTES", cfg.Store.QuotaBytes)
	cfg.Store.OpenTimeout.Duration = getDuration("TODO_STORE_OPEN_TIMEOUT", cfg.Store.OpenTimeout.Duration)

	cfg.Redis.URL = getString("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.Password = getString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Prefix = getString("REDIS_PREFIX", cfg.Redis.Prefix)

	cfg.Database.URL = getString("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Host = getString("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getString("DB_PORT", cfg.Database.Port)
	cfg.Database.Name = getString("DB_NAME", cfg.Database.Name)
	cfg.Database.User = getString("DB_USER", cfg.Database.User)
	cfg.Database.Password = getString("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.MaxOpenConns = getInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.MaxConnLifetime.Duration = getDuration("DB_CONN_LIFETIME", cfg.Database.MaxConnLifetime.Duration)
	cfg.Database.SSLMode = getString("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Context.RequestTimeout.Duration = getDuration("REQUEST_TIMEOUT_SECONDS", cfg.Context.RequestTimeout.Duration)
	cfg.Context.ShutdownTimeout.Duration = getDuration("SHUTDOWN_TIMEOUT_SECONDS", cfg.Context.ShutdownTimeout.Duration)

	cfg.Logger.Level = getString("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Encoding = getString("LOG_ENCODING", cfg.Logger.Encoding)
	cfg.Logger.Output = getString("LOG_OUTPUT", cfg.Logger.Output)
	cfg.Logger.File = getString("LOG_FILE", cfg.Logger.File)
	cfg.Logger.MaxSizeMB = getInt("LOG_MAX_SIZE_MB", cfg.Logger.MaxSizeMB)
	cfg.Logger.MaxBackups = getInt("LOG_MAX_BACKUPS", cfg.Logger.MaxBackups)
	cfg.Logger.MaxAgeDays = getInt("LOG_MAX_AGE_DAYS", cfg.Logger.MaxAgeDays)

	cfg.Migrations.Enabled = getBool("RUN_MIGRATIONS", cfg.Migrations.Enabled)

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case DriverBolt, DriverRedis, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverBolt && c.Store.Path == "" {
		return fmt.Errorf("store path is required for the %s driver", DriverBolt)
	}
	if c.Store.QuotaBytes < 0 {
		return fmt.Errorf("store quota must not be negative")
	}
	return nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
