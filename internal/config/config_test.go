package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_FILE", "")
	for _, key := range []string{
		"PORT", "DATA_DIR", "STORE_BACKEND", "DATABASE_URL", "UPLOAD_DIR", "ATTACHMENT_BACKEND",
		"MAX_UPLOAD_MB", "ADMIN_EMAILS", "ADMIN_TOKEN", "DEV_MODE", "CORS_ORIGINS",
		"TELEGRAM_BOT_TOKEN", "TELEGRAM_ADMIN_CHATS", "S3_BUCKET", "SESSION_TTL_SECONDS",
		"TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("SESSION_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "local", cfg.AttachmentBackend)
	assert.Equal(t, 5, cfg.MaxUploadMB)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.DevMode)
	assert.Empty(t, cfg.AdminEmails)
	assert.Equal(t, 7, cfg.LogRetentionDays)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "8080")
	t.Setenv("ADMIN_EMAILS", " Pastor@Example.com, office@example.com ,")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MAX_UPLOAD_MB", "12")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_ADMIN_CHATS", "123, -456")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"pastor@example.com", "office@example.com"}, cfg.AdminEmails)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
	assert.Equal(t, 12, cfg.MaxUploadMB)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, []int64{123, -456}, cfg.TelegramAdminChats)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "parish.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\nstore_backend: sql\ndatabase_url: \"sqlite::memory:\"\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "sql", cfg.StoreBackend)
	assert.Equal(t, "sqlite::memory:", cfg.DatabaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":    {"SESSION_SECRET": ""},
		"sql without url":   {"STORE_BACKEND": "sql"},
		"unknown store":     {"STORE_BACKEND": "mongo"},
		"s3 without bucket": {"ATTACHMENT_BACKEND": "s3"},
		"bad upload limit":  {"MAX_UPLOAD_MB": "0"},
		"bad chat id":       {"TELEGRAM_BOT_TOKEN": "t", "TELEGRAM_ADMIN_CHATS": "abc"},
		"chats need token":  {"TELEGRAM_ADMIN_CHATS": "1"},
		"bad trusted proxy": {"TRUSTED_PROXIES": "10.0.0.0/8,proxy.local"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
