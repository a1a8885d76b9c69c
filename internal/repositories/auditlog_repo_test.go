package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := data.InitializeDB(&core.Config{DBEngine: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = data.CloseDB(db) })
	return db
}

func TestAuditLogRepository_CreateNormalizesSeverity(t *testing.T) {
	repo := NewGormAuditLogRepository(newTestDB(t))

	created, err := repo.Create(models.AuditLogEntry{
		Action:      models.ActionAccountOpened,
		Description: "Conta aberta",
		Severity:    "info",
		SessionID:   "s1",
		Metadata:    models.JSONMetadata{"age": 25},
	})

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "INFO", created.Severity)
	assert.False(t, created.Timestamp.IsZero())
}

func TestAuditLogRepository_GetFiltered(t *testing.T) {
	repo := NewGormAuditLogRepository(newTestDB(t))
	base := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	seed := []models.AuditLogEntry{
		{Action: models.ActionSessionOpened, Description: "a", Severity: "INFO", SessionID: "s1", Timestamp: base},
		{Action: models.ActionSubmissionRefused, Description: "b", Severity: "WARNING", SessionID: "s1", Timestamp: base.Add(time.Minute)},
		{Action: models.ActionAccountOpened, Description: "c", Severity: "INFO", SessionID: "s1", Timestamp: base.Add(2 * time.Minute)},
		{Action: models.ActionSessionOpened, Description: "d", Severity: "INFO", SessionID: "s2", Timestamp: base.AddDate(0, 0, -3)},
	}
	for _, e := range seed {
		_, err := repo.Create(e)
		require.NoError(t, err)
	}

	logs, total, err := repo.GetFiltered(AuditLogFilter{SessionID: "s1"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, logs, 3)
	assert.Equal(t, models.ActionAccountOpened, logs[0].Action, "mais recentes primeiro")

	logs, total, err = repo.GetFiltered(AuditLogFilter{Severity: "warning"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "b", logs[0].Description)

	start := base
	logs, total, err = repo.GetFiltered(AuditLogFilter{StartDate: &start, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, logs, 2)

	logs, total, err = repo.GetFiltered(AuditLogFilter{Action: "nada"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, logs)
}

func TestAuditLogRepository_ClosedDBIsDatabaseError(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormAuditLogRepository(db)
	require.NoError(t, data.CloseDB(db))

	_, err := repo.Create(models.AuditLogEntry{Action: "X", Description: "y", Severity: "INFO"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDatabase))
}
