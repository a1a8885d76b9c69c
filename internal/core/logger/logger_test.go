package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
)

func TestSetupLogger_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &core.Config{
		AppName:        "Abertura Teste",
		LogDir:         dir,
		LogLevel:       "DEBUG",
		LogMaxBytes:    1024,
		LogBackupCount: 1,
		LogToFile:      true,
	}
	t.Cleanup(func() { log = newDefaultLogger() })

	require.NoError(t, SetupLogger(cfg))
	Infof("sessão %s aberta", "abc")

	data, err := os.ReadFile(filepath.Join(dir, "abertura_teste.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"sessão abc aberta"`)
}

func TestWithFields_EmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(&buf)
	prev := log
	log = l
	t.Cleanup(func() { log = prev })

	WithFields(logrus.Fields{"session_id": "s1"}).Warn("submissão rejeitada")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "warning", entry["level"])
}

func TestMaxSizeMB_NeverZero(t *testing.T) {
	assert.Equal(t, 1, maxSizeMB(10))
	assert.Equal(t, 5, maxSizeMB(5*1024*1024))
}
