package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "General", cfg.Chat.DefaultRoomName)
	assert.Equal(t, 2*time.Second, cfg.Chat.PollInterval)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DEFAULT_ROOM_ID", "room-1")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "room-1", cfg.Chat.DefaultRoomID)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	body := []byte("database:\n  driver: postgres\n  dsn: postgres://localhost/chat\nchat:\n  default_room_name: Lobby\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/chat", cfg.Database.DSN)
	assert.Equal(t, "Lobby", cfg.Chat.DefaultRoomName)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "oracle"},
		Auth:     AuthConfig{TokenTTL: time.Hour},
		Chat:     ChatConfig{PollInterval: time.Second},
	}
	require.Error(t, cfg.Validate())
}
