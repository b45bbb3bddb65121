package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[database]
driver = "memory"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "UTC", cfg.Booking.TimeZone)
	assert.Equal(t, 9, cfg.Booking.WindowStartHour)
	assert.Equal(t, 17, cfg.Booking.WindowEndHour)
	assert.Equal(t, 30, cfg.Booking.SlotMinutes)
	assert.Equal(t, 100, cfg.Booking.MaxRules)
	assert.Equal(t, "primary", cfg.GoogleCalendar.CalendarID)
	assert.Equal(t, 24*60, cfg.GoogleCalendar.EmailReminderMinutes)
	assert.Equal(t, 10, cfg.GoogleCalendar.PopupReminderMinutes)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	path := writeConfig(t, `
[database]
host = "localhost"
port = 5432
password = "from-file"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "secret", cfg.GoogleCalendar.ClientSecret)
	assert.Contains(t, cfg.Database.DSN(), "password=from-env")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrReadConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown driver", "[database]\ndriver = \"mysql\""},
		{"inverted window", "[booking]\nwindow_start_hour = 17\nwindow_end_hour = 9"},
		{"slot does not divide window", "[booking]\nslot_minutes = 45\nwindow_start_hour = 9\nwindow_end_hour = 10"},
		{"unknown zone", "[booking]\ntime_zone = \"Mars/Olympus\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
