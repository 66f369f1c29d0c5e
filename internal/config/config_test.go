package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_CHAT_ID", "-100200")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, int64(-100200), cfg.AdminChatID)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 60, cfg.PollTimeout)
	assert.Equal(t, "👤 Anonymous: ", cfg.AnonymousPrefix)
	assert.False(t, cfg.Debug)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.env")
	content := "BOT_TOKEN=file-token\nADMIN_CHAT_ID=42\nWORKERS=8\nMETRICS_ADDR=\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.BotToken)
	assert.Equal(t, int64(42), cfg.AdminChatID)
	assert.Equal(t, 8, cfg.Workers)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.env")
	require.NoError(t, os.WriteFile(path, []byte("BOT_TOKEN=file-token\nADMIN_CHAT_ID=42\n"), 0o600))
	t.Setenv("BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.BotToken)
}

func TestValidate(t *testing.T) {
	valid := Config{BotToken: "t", AdminChatID: 1, Workers: 4, PollTimeout: 60}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing token", mutate: func(c *Config) { c.BotToken = "" }, wantErr: "BOT_TOKEN"},
		{name: "missing admin chat", mutate: func(c *Config) { c.AdminChatID = 0 }, wantErr: "ADMIN_CHAT_ID"},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: "WORKERS"},
		{name: "too many workers", mutate: func(c *Config) { c.Workers = MaxWorkers + 1 }, wantErr: "WORKERS"},
		{name: "zero poll timeout", mutate: func(c *Config) { c.PollTimeout = 0 }, wantErr: "POLL_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_CHAT_ID", "42")

	_, err := Load(missingEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}
