package config

import (
	"os"
	"path/filepath"
	"testing"

	"barberbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
telegram:
  bot_token: "test_token"
database:
  path: "test.db"
timezone: "Europe/Moscow"
superadmins:
  - 100500
services:
  - id: 1
    name: "Стрижка"
    duration_min: 45
    buffer_min: 15
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "test_token", cfg.Telegram.BotToken)
	assert.Equal(t, "Europe/Moscow", cfg.Timezone)
	assert.True(t, cfg.IsSuperadmin(100500))
	assert.False(t, cfg.IsSuperadmin(42))

	require.Len(t, cfg.Services, 1)
	assert.Equal(t, 45, cfg.Services[0].DurationMin)
	assert.Equal(t, 15, cfg.Services[0].BufferMin)
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_BOT_TOKEN", "secret_from_env")

	yamlContent := `
telegram:
  bot_token: "${TEST_BOT_TOKEN}"
database:
  path: "test.db"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "secret_from_env", cfg.Telegram.BotToken)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, models.DefaultTimezone, cfg.Timezone)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, models.DefaultMaxBookingDays, cfg.Bot.MaxBookingDays)
	assert.Equal(t, models.ReminderLeadMinutes, cfg.Bot.ReminderLeadMinutes)
	assert.Equal(t, models.ReminderScanMinutes, cfg.Bot.ReminderScanMinutes)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Services: []models.Service{{ID: 1, Name: "Стрижка", DurationMin: 30}},
			},
			wantErr: false,
		},
		{
			name: "missing token",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: ""},
				Database: DatabaseConfig{Path: "path"},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
			},
			wantErr: true,
		},
		{
			name: "duplicate service id",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Services: []models.Service{
					{ID: 1, Name: "A", DurationMin: 30},
					{ID: 1, Name: "B", DurationMin: 60},
				},
			},
			wantErr: true,
		},
		{
			name: "zero duration service",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Services: []models.Service{{ID: 1, Name: "A"}},
			},
			wantErr: true,
		},
		{
			name: "negative buffer",
			cfg: Config{
				Telegram: TelegramConfig{BotToken: "token"},
				Database: DatabaseConfig{Path: "path"},
				Services: []models.Service{{ID: 1, Name: "A", DurationMin: 30, BufferMin: -5}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
