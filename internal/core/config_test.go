package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "en", cfg.AppLocale)
	assert.Equal(t, "sqlite", cfg.DBEngine)
	assert.Equal(t, 30*time.Minute, cfg.FormSessionTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.True(t, cfg.AuditEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_LOCALE", "pt-BR")
	t.Setenv("APP_FORM_SESSION_TIMEOUT", "60")
	t.Setenv("APP_AUDIT_ENABLED", "false")
	t.Setenv("APP_LOG_LEVEL", "debug")

	cfg := FromEnv()

	assert.Equal(t, "pt-BR", cfg.AppLocale)
	assert.Equal(t, time.Minute, cfg.FormSessionTimeout)
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadConfig_ReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("APP_NAME=Teste\nAPP_HTTP_ADDR=:9999\n"), 0o644))

	t.Setenv("APP_LOG_TO_FILE", "false")
	t.Setenv("APP_AUDIT_ENABLED", "false")
	// godotenv não sobrescreve variáveis já definidas; garantimos que o teste as limpe depois.
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_HTTP_ADDR", "")
	os.Unsetenv("APP_NAME")
	os.Unsetenv("APP_HTTP_ADDR")

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	assert.Equal(t, "Teste", cfg.AppName)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
}

func TestLoadConfig_RejectsUnknownLocale(t *testing.T) {
	t.Setenv("APP_LOCALE", "fr")
	t.Setenv("APP_LOG_TO_FILE", "false")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_LOCALE")
}
