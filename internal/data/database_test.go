package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
)

func TestInitializeDB_SQLiteInMemory(t *testing.T) {
	db, err := InitializeDB(&core.Config{DBEngine: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDB(db) })

	assert.True(t, db.Migrator().HasTable(&models.AuditLogEntry{}))
}

func TestInitializeDB_UnknownEngine(t *testing.T) {
	_, err := InitializeDB(&core.Config{DBEngine: "oracle"})
	assert.Error(t, err)
}

func TestCloseDB_Nil(t *testing.T) {
	assert.NoError(t, CloseDB(nil))
}
