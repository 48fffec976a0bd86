package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GAME_SERVER_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("GAME_DIAL_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, "ws://localhost:6807/api/ws", cfg.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
	assert.Empty(t, cfg.RedisAddr, "journal disabled by default")
	assert.Empty(t, cfg.PostgresDSN, "archive disabled by default")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GAME_SERVER_URL", "wss://games.example.com/ws")
	t.Setenv("GAME_DIAL_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "wss://games.example.com/ws", cfg.ServerURL)
	assert.Equal(t, 3*time.Second, cfg.DialTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("GAME_DIAL_TIMEOUT", "soon")
	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.DialTimeout)
}
