package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
)

// Config is shared by every tool. Only the credentials are mandatory.
type Config struct {
	Username       string        `env:"TCXC_USERNAME,required=true"`
	Password       string        `env:"TCXC_PASSWORD,required=true"`
	BaseURL        string        `env:"TCXC_BASE_URL"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	LogFile        string        `env:"LOG_FILE"`
	PushgatewayURL string        `env:"PUSHGATEWAY_URL"`
	// RateLimit caps marketplace calls per second per endpoint. 0 disables
	// pacing. Pacing is shared through RedisURL.
	RateLimit int    `env:"MARKETPLACE_RATE_LIMIT,default=0"`
	RedisURL  string `env:"REDIS_URL"`
}

func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{Username: c.Username, Password: c.Password}
}

func Load() (*Config, error) {
	return LoadInto[Config]()
}

// LoadInto reads any tool config struct from the environment.
func LoadInto[T any]() (*T, error) {
	var cfg T
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv merges a .env file into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadDotEnv(path string, logger *zap.Logger) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		if logger != nil {
			logger.Debug("no .env file found", zap.String("path", path))
		}
		return nil
	}
	return fmt.Errorf("failed to read %s: %w", path, err)
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
