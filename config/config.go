package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultPort           = "8080"
	defaultDBDriver       = DriverPostgres
	defaultLogLevel       = "info"
	defaultLogMaxSizeMB   = 10
	defaultLogMaxFiles    = 5
	defaultDigestSchedule = "0 9 * * *"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Audit    AuditConfig    `toml:"audit"`
}

type ServerConfig struct {
	Port        string   `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	URL    string `toml:"url"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

type AuditConfig struct {
	// DigestSchedule is a cron expression; empty disables the digest job.
	DigestSchedule string `toml:"digest_schedule"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: defaultPort,
		},
		Database: DatabaseConfig{
			Driver: defaultDBDriver,
		},
		Logging: LoggingConfig{
			Level:     defaultLogLevel,
			MaxSizeMB: defaultLogMaxSizeMB,
			MaxFiles:  defaultLogMaxFiles,
		},
		Audit: AuditConfig{
			DigestSchedule: defaultDigestSchedule,
		},
	}
}

// Load builds the configuration from defaults, the optional TOML file at
// path, a .env file in the working directory and finally the process
// environment, later sources winning.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		cfg.Server.Port = v
	}
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("DB_DRIVER"); ok && v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("DB_URL"); ok && v != "" {
		cfg.Database.URL = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		cfg.Logging.File = v
	}
	if v, ok := os.LookupEnv("AUDIT_DIGEST_SCHEDULE"); ok {
		cfg.Audit.DigestSchedule = strings.TrimSpace(v)
	}
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("%w: database url is required", ErrInvalidConfig)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server port is required", ErrInvalidConfig)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
