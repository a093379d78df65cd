package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	HistoryBackendSQL   = "sql"
	HistoryBackendRedis = "redis"
)

// Config holds application configuration sourced from config.yaml, .env and the environment.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	History  HistoryConfig  `mapstructure:"history"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Report   ReportConfig   `mapstructure:"report"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Port        string `mapstructure:"port"`
}

// IsDev reports whether the service runs in a development environment.
func (a AppConfig) IsDev() bool {
	return a.Environment == "" || a.Environment == "development" || a.Environment == "dev"
}

type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"`
	Path           string        `mapstructure:"path"`
	DSN            string        `mapstructure:"dsn"`
	MaxConnections int           `mapstructure:"max_connections"`
	ConnMaxIdle    time.Duration `mapstructure:"conn_max_idle"`
}

// Source returns what to hand to sql.Open for the configured driver.
func (d DatabaseConfig) Source() string {
	if d.Driver == DriverPostgres {
		return d.DSN
	}
	return d.Path
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HistoryConfig selects where the simulation history log lives.
type HistoryConfig struct {
	Backend string `mapstructure:"backend"`
	Key     string `mapstructure:"key"`
}

type AuthConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminFullName string `mapstructure:"admin_full_name"`
	SessionSecret string `mapstructure:"session_secret"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ReportConfig struct {
	Timezone    string `mapstructure:"timezone"`
	RecentLimit int    `mapstructure:"recent_limit"`
}

// Location resolves Timezone. Validation guarantees it loads.
func (r ReportConfig) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

var envBindings = map[string]string{
	"app.name":                 "APP_NAME",
	"app.environment":          "APP_ENV",
	"app.port":                 "PORT",
	"database.driver":          "DB_DRIVER",
	"database.path":            "DB_PATH",
	"database.dsn":             "DATABASE_URL",
	"database.max_connections": "DB_MAX_CONNECTIONS",
	"database.conn_max_idle":   "DB_CONN_MAX_IDLE",
	"redis.address":            "REDIS_ADDR",
	"redis.password":           "REDIS_PASSWORD",
	"redis.db":                 "REDIS_DB",
	"history.backend":          "HISTORY_BACKEND",
	"history.key":              "HISTORY_KEY",
	"auth.admin_username":      "ADMIN_USERNAME",
	"auth.admin_password":      "ADMIN_PASSWORD",
	"auth.admin_full_name":     "ADMIN_FULL_NAME",
	"auth.session_secret":      "SESSION_SECRET",
	"logging.level":            "LOG_LEVEL",
	"logging.format":           "LOG_FORMAT",
	"report.timezone":          "REPORT_TIMEZONE",
	"report.recent_limit":      "REPORT_RECENT_LIMIT",
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "logicalc")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "./dev.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.conn_max_idle", 5*time.Minute)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("history.backend", HistoryBackendSQL)
	v.SetDefault("history.key", "logicalc:history")
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.admin_full_name", "Administrador")
	v.SetDefault("auth.session_secret", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("report.timezone", "UTC")
	v.SetDefault("report.recent_limit", 15)
}

// Load reads configuration from the working directory.
func Load() (Config, error) {
	return LoadFrom(".")
}

// LoadFrom reads dir/.env and dir/config.yaml (both optional), then applies
// environment overrides. Variables already set in the environment win over .env.
func LoadFrom(dir string) (Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	applyDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Database.Driver {
	case DriverSQLite:
		if cfg.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case DriverPostgres:
		if cfg.Database.DSN == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	switch cfg.History.Backend {
	case HistoryBackendSQL:
	case HistoryBackendRedis:
		if cfg.Redis.Address == "" {
			return errors.New("REDIS_ADDR is required for the redis history backend")
		}
	default:
		return fmt.Errorf("unsupported history backend %q", cfg.History.Backend)
	}

	if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
		return fmt.Errorf("report timezone: %w", err)
	}
	if cfg.Report.RecentLimit < 1 {
		return errors.New("report.recent_limit must be at least 1")
	}
	if cfg.Auth.SessionSecret == "" && !cfg.App.IsDev() {
		return fmt.Errorf("SESSION_SECRET is required when APP_ENV is %q", cfg.App.Environment)
	}
	return nil
}

// Warnings lists settings that are allowed to be empty but probably should not be.
func (c Config) Warnings() []string {
	var out []string
	if c.Auth.AdminPassword == "" {
		out = append(out, "ADMIN_PASSWORD is not set; the admin user will not be seeded")
	}
	if c.Auth.SessionSecret == "" {
		out = append(out, "SESSION_SECRET is not set; session cookies can be forged outside development")
	}
	return out
}
