package repositories

import (
	"strings"
	"time"

	"gorm.io/gorm"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
)

// Limites de paginação de GetFiltered.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// AuditLogFilter restringe a busca de logs; campos vazios não filtram.
type AuditLogFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Severity  string
	Action    string
	SessionID string
	Limit     int
	Offset    int
}

// AuditLogRepository define as operações no repositório de logs de auditoria.
type AuditLogRepository interface {
	// Create insere uma nova entrada de log de auditoria.
	Create(entry models.AuditLogEntry) (*models.AuditLogEntry, error)

	// GetFiltered busca logs com filtros e paginação, mais recentes primeiro.
	// Retorna as entradas e a contagem total que corresponde aos filtros.
	GetFiltered(filter AuditLogFilter) (logs []models.AuditLogEntry, totalCount int64, err error)
}

// gormAuditLogRepository é a implementação GORM de AuditLogRepository.
type gormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository cria uma nova instância de gormAuditLogRepository.
func NewGormAuditLogRepository(db *gorm.DB) AuditLogRepository {
	if db == nil {
		appLogger.Fatalf("gorm.DB não pode ser nil para NewGormAuditLogRepository")
	}
	return &gormAuditLogRepository{db: db}
}

// Create insere uma nova entrada de log de auditoria no banco de dados.
func (r *gormAuditLogRepository) Create(entry models.AuditLogEntry) (*models.AuditLogEntry, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Severity = strings.ToUpper(entry.Severity)

	if result := r.db.Create(&entry); result.Error != nil {
		appLogger.Errorf("Erro ao criar entrada de log de auditoria (Ação: %s, Sessão: %s): %v",
			entry.Action, entry.SessionID, result.Error)
		return nil, appErrors.NewDatabaseErrorDetail("criando entrada de log de auditoria", result.Error)
	}
	return &entry, nil
}

// GetFiltered busca logs de auditoria com base nos filtros fornecidos, com paginação.
func (r *gormAuditLogRepository) GetFiltered(filter AuditLogFilter) ([]models.AuditLogEntry, int64, error) {
	var entries []models.AuditLogEntry
	var totalCount int64

	query := r.db.Model(&models.AuditLogEntry{})

	if filter.StartDate != nil {
		s := filter.StartDate
		startOfDay := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, s.Location())
		query = query.Where("timestamp >= ?", startOfDay)
	}
	if filter.EndDate != nil {
		e := filter.EndDate
		endOfDay := time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 999999999, e.Location())
		query = query.Where("timestamp <= ?", endOfDay)
	}
	if filter.Severity != "" {
		query = query.Where("UPPER(severity) = UPPER(?)", filter.Severity)
	}
	if filter.Action != "" {
		query = query.Where("UPPER(action) = UPPER(?)", filter.Action)
	}
	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}

	// Contagem antes de limit/offset.
	if err := query.Count(&totalCount).Error; err != nil {
		appLogger.Errorf("Erro ao contar logs de auditoria filtrados: %v", err)
		return nil, 0, appErrors.NewDatabaseErrorDetail("contando logs de auditoria", err)
	}
	if totalCount == 0 {
		return []models.AuditLogEntry{}, 0, nil
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	} else if limit > MaxPageSize {
		limit = MaxPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	err := query.Order("timestamp DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		appLogger.Errorf("Erro ao buscar logs de auditoria filtrados: %v", err)
		return nil, 0, appErrors.NewDatabaseErrorDetail("buscando logs de auditoria", err)
	}
	return entries, totalCount, nil
}
