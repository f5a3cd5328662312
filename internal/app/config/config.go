// Package config собирает настройки сервиса из флагов и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type ConfigType struct {
	ServerAddress   string        `env:"SERVER_ADDRESS"`
	Port            string        `env:"PORT"`
	BaseAddress     string        `env:"BASE_URL"`
	DSN             string        `env:"DATABASE_DSN"`
	FileStoragePath string        `env:"FILE_STORAGE_PATH"`
	RedisURL        string        `env:"REDIS_URL"`
	CacheTTL        time.Duration `env:"CACHE_TTL"`
	LinkTTL         time.Duration `env:"LINK_TTL"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL"`
	CodeLength      int           `env:"CODE_LENGTH"`
	MaxRetries      int           `env:"MAX_RETRIES"`
	DBTimeout       time.Duration `env:"DB_TIMEOUT"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel        string        `env:"LOG_LEVEL"`
}

// NewConfig разбирает os.Args и окружение процесса.
func NewConfig() (*ConfigType, error) {
	return Parse(os.Args[0], os.Args[1:])
}

// Parse разбирает args в собственном FlagSet, затем накладывает окружение.
func Parse(name string, args []string) (*ConfigType, error) {
	config := ConfigType{}
	var origins string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&config.ServerAddress, "a", ":8080", "HTTP server address")
	fs.StringVar(&config.BaseAddress, "b", "", "shorten URL base address (derived from request when empty)")
	fs.StringVar(&config.DSN, "d", "", "PostgreSQL connection string")
	fs.StringVar(&config.FileStoragePath, "f", "", "File storage path")
	fs.StringVar(&config.RedisURL, "r", "", "Redis URL for the resolve cache")
	fs.DurationVar(&config.CacheTTL, "cache-ttl", time.Hour, "Max lifetime of a cached link")
	fs.DurationVar(&config.LinkTTL, "link-ttl", 30*24*time.Hour, "Link lifetime since creation")
	fs.DurationVar(&config.SweepInterval, "sweep-interval", time.Minute, "Expired links cleanup interval")
	fs.IntVar(&config.CodeLength, "code-length", 7, "Generated short code length")
	fs.IntVar(&config.MaxRetries, "max-retries", 5, "Attempts to allocate a unique generated code")
	fs.DurationVar(&config.DBTimeout, "db-timeout", 5*time.Second, "Timeout of a single database call")
	fs.StringVar(&origins, "origins", "*", "Comma-separated CORS allowed origins")
	fs.StringVar(&config.LogLevel, "l", "info", "Log level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	config.AllowedOrigins = splitList(origins)

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if config.Port != "" {
		host, _, err := net.SplitHostPort(config.ServerAddress)
		if err != nil {
			host = ""
		}
		config.ServerAddress = net.JoinHostPort(host, config.Port)
	}
	config.BaseAddress = strings.TrimRight(config.BaseAddress, "/")

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *ConfigType) validate() error {
	var errs []error
	if c.CodeLength < 4 {
		errs = append(errs, errors.New("code length must be at least 4"))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, errors.New("max retries must be positive"))
	}
	if c.LinkTTL <= 0 {
		errs = append(errs, errors.New("link TTL must be positive"))
	}
	if c.DBTimeout <= 0 {
		errs = append(errs, errors.New("db timeout must be positive"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
