// Package config reads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server process needs at startup.
type Config struct {
	Addr            string        `env:"WOODLAND_ADDR" envDefault:":8080"`
	DBPath          string        `env:"WOODLAND_DB_PATH" envDefault:"woodland.db"`
	RedisURL        string        `env:"WOODLAND_REDIS_URL"`
	StateTTL        time.Duration `env:"WOODLAND_STATE_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"WOODLAND_CLEANUP_INTERVAL" envDefault:"1m"`
	MaxGameAge      time.Duration `env:"WOODLAND_MAX_GAME_AGE" envDefault:"1h"`
	SaveRetries     uint          `env:"WOODLAND_SAVE_RETRIES" envDefault:"3"`
	LogLevel        string        `env:"WOODLAND_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"WOODLAND_LOG_FORMAT" envDefault:"text"`
}

// Load reads an optional .env file at path, then the environment.
// Variables already set in the environment win over the file.
func Load(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SaveRetries == 0 {
		return Config{}, fmt.Errorf("parse env: WOODLAND_SAVE_RETRIES must be at least 1")
	}
	return cfg, nil
}

// Logger builds the process logger from the level and format settings.
func (c Config) Logger() (*logrus.Logger, error) {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	switch c.LogFormat {
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("log format %q: want text or json", c.LogFormat)
	}
	return log, nil
}
