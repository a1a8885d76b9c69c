package services

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/repositories"
)

func newExportFixture(t *testing.T) (ExportService, AuditLogService, *core.Config) {
	t.Helper()
	cfg := &core.Config{DBEngine: "sqlite", DBName: ":memory:", ExportDir: t.TempDir()}
	db, err := data.InitializeDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = data.CloseDB(db) })

	audit := NewAuditLogService(repositories.NewGormAuditLogRepository(db))
	base := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	require.NoError(t, audit.LogAction(models.AuditLogEntry{
		Action: models.ActionSessionOpened, Description: "Sessão criada", SessionID: "s1", Timestamp: base,
	}))
	require.NoError(t, audit.LogAction(models.AuditLogEntry{
		Action: models.ActionSubmissionRefused, Description: "Rejeitada", Severity: "WARNING", SessionID: "s1",
		Timestamp: base.Add(time.Minute), Metadata: models.JSONMetadata{"fields": []string{"age"}},
	}))
	return NewExportService(audit, cfg), audit, cfg
}

func TestExportService_CSV(t *testing.T) {
	svc, _, cfg := newExportFixture(t)

	path, err := svc.ExportAuditLogs(repositories.AuditLogFilter{}, "CSV", "trilha")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.ExportDir, "trilha.csv"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID;Data/Hora (UTC);Ação;Descrição;Severidade;Sessão;Metadados", lines[0])
	assert.Contains(t, lines[1], ";2026-10-19 09:31:00;SUBMISSAO_REJEITADA;Rejeitada;WARNING;s1;")
	assert.Contains(t, lines[1], "age")
}

func TestExportService_XLSX(t *testing.T) {
	svc, _, _ := newExportFixture(t)

	path, err := svc.ExportAuditLogs(repositories.AuditLogFilter{Action: models.ActionSessionOpened}, ExportFormatXLSX, "trilha.xlsx")
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Auditoria")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ActionSessionOpened, rows[1][2])
}

func TestExportService_RejectsUnknownFormat(t *testing.T) {
	svc, _, _ := newExportFixture(t)

	_, err := svc.ExportAuditLogs(repositories.AuditLogFilter{}, "pdf", "x")

	assert.True(t, errors.Is(err, appErrors.ErrInvalidInput))
}
