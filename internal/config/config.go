// Package config loads client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the client binary needs to connect and run.
type Config struct {
	// ServerURL is the websocket endpoint of the game server.
	ServerURL string
	// AuthToken is the session bearer token presented on dial.
	AuthToken string
	// DialTimeout bounds the websocket handshake.
	DialTimeout time.Duration

	// RedisAddr enables the applied-update journal when non-empty.
	RedisAddr     string
	RedisPassword string
	// PostgresDSN enables the finished-match archive when non-empty.
	PostgresDSN string

	LogLevel string
}

// Load reads .env if present, then the environment. Missing optional values
// fall back to defaults; the journal and archive stay disabled when their
// addresses are unset.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env file")
	}
	return &Config{
		ServerURL:     getEnv("GAME_SERVER_URL", "ws://localhost:6807/api/ws"),
		AuthToken:     getEnv("GAME_AUTH_TOKEN", ""),
		DialTimeout:   getEnvDuration("GAME_DIAL_TIMEOUT", 10*time.Second),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// ApplyLogLevel sets the global logrus level from the config.
func (c *Config) ApplyLogLevel() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.WithField("level", c.LogLevel).Warn("unknown log level, keeping default")
		return
	}
	logrus.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.WithField("key", key).WithError(err).Warn("bad duration in environment, using default")
		return fallback
	}
	return d
}
