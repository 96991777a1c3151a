package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "focal.db", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Hour, cfg.ReportInterval)
	assert.Equal(t, time.Monday, cfg.WeekStart)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.HTTPAPIToken)
	assert.Equal(t, 10*time.Minute, cfg.AgendaCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.MySQL())
	assert.False(t, cfg.DailyReport())
}

func TestLoadFrom_EnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	content := "TELEGRAM_TOKEN=file-token\nDATABASE_URL=mysql://u:p@tcp(db:3306)/focal\nWEEK_START=sun\nTIMEZONE=UTC\nAGENDA_CACHE_TTL=90s\nREPORT_TIME=07:45\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("REPORT_INTERVAL_HOURS", "3")
	t.Setenv("ENVIRONMENT", "Production")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.TelegramToken)
	assert.True(t, cfg.MySQL())
	assert.Equal(t, time.Sunday, cfg.WeekStart)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 90*time.Second, cfg.AgendaCacheTTL)
	assert.Equal(t, 3*time.Hour, cfg.ReportInterval)
	assert.Equal(t, 7, cfg.ReportHour)
	assert.Equal(t, 45, cfg.ReportMinute)
	assert.True(t, cfg.DailyReport())
	assert.True(t, cfg.IsProduction())
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token", map[string]string{}},
		{"bad report time", map[string]string{"TELEGRAM_TOKEN": "x", "REPORT_TIME": "7pm"}},
		{"bad timezone", map[string]string{"TELEGRAM_TOKEN": "x", "TIMEZONE": "Mars/Olympus"}},
		{"bad week start", map[string]string{"TELEGRAM_TOKEN": "x", "WEEK_START": "someday"}},
		{"public http without token", map[string]string{"TELEGRAM_TOKEN": "x", "HTTP_ADDR": ":8080"}},
		{"lan http without token", map[string]string{"TELEGRAM_TOKEN": "x", "HTTP_ADDR": "192.168.1.5:8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_TOKEN", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_TelegramDisabledNeedsNoToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("TELEGRAM_DISABLED", "true")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.TelegramDisabled)
}

func TestLoadFrom_NonPositiveIntervalFallsBack(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "x")
	t.Setenv("REPORT_INTERVAL_HOURS", "0")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Hour, cfg.ReportInterval)
}

func TestLoadFrom_HTTPExposure(t *testing.T) {
	tests := []struct {
		name  string
		addr  string
		token string
	}{
		{"loopback v4", "127.0.0.1:9000", ""},
		{"loopback v6", "[::1]:9000", ""},
		{"localhost", "localhost:9000", ""},
		{"public with token", ":8080", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_TOKEN", "x")
			t.Setenv("HTTP_ADDR", tt.addr)
			t.Setenv("HTTP_API_TOKEN", tt.token)

			cfg, err := LoadFrom(t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, tt.addr, cfg.HTTPAddr)
		})
	}
}
