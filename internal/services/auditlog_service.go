package services

import (
	"strings"
	"time"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/repositories"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/utils"
)

const maxAuditDescriptionLen = 4000

// AuditLogService define a interface para o serviço de log de auditoria.
type AuditLogService interface {
	// LogAction registra uma ação de auditoria.
	LogAction(entry models.AuditLogEntry) error

	// GetAuditLogs busca logs de auditoria com base nos filtros fornecidos e com paginação.
	GetAuditLogs(filter repositories.AuditLogFilter) (logs []models.AuditLogEntry, totalCount int64, err error)
}

// auditLogServiceImpl é a implementação de AuditLogService.
type auditLogServiceImpl struct {
	repo repositories.AuditLogRepository
}

// NewAuditLogService cria uma nova instância de AuditLogService.
func NewAuditLogService(repo repositories.AuditLogRepository) AuditLogService {
	if repo == nil {
		appLogger.Fatalf("AuditLogRepository não pode ser nil para NewAuditLogService")
	}
	return &auditLogServiceImpl{repo: repo}
}

// LogAction valida, normaliza e persiste uma entrada da trilha de auditoria.
func (s *auditLogServiceImpl) LogAction(entry models.AuditLogEntry) error {
	entry.Action = strings.TrimSpace(entry.Action)
	if entry.Action == "" {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "ação do log de auditoria não pode ser vazia")
	}
	entry.Description = utils.SanitizeInput(entry.Description)
	if entry.Description == "" {
		return appErrors.WrapErrorf(appErrors.ErrInvalidInput, "descrição do log de auditoria não pode ser vazia")
	}

	normalizedSeverity := strings.ToUpper(strings.TrimSpace(entry.Severity))
	if !models.ValidSeverities[normalizedSeverity] {
		if entry.Severity != "" {
			appLogger.Warnf("Nível de severidade inválido '%s' fornecido para log. Usando 'INFO'. Ação: %s", entry.Severity, entry.Action)
		}
		normalizedSeverity = "INFO"
	}
	entry.Severity = normalizedSeverity

	if runes := []rune(entry.Description); len(runes) > maxAuditDescriptionLen {
		entry.Description = string(runes[:maxAuditDescriptionLen-3]) + "..."
		appLogger.Warnf("Descrição do log de auditoria truncada para %d caracteres. Ação: %s", maxAuditDescriptionLen, entry.Action)
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if _, err := s.repo.Create(entry); err != nil {
		return appErrors.WrapErrorf(err, "falha ao persistir log de auditoria (Ação: %s)", entry.Action)
	}
	return nil
}

// GetAuditLogs busca logs de auditoria; datas são normalizadas para UTC.
func (s *auditLogServiceImpl) GetAuditLogs(filter repositories.AuditLogFilter) ([]models.AuditLogEntry, int64, error) {
	if filter.Limit > repositories.MaxPageSize {
		appLogger.Warnf("Solicitação de GetAuditLogs com limite > %d. Reduzido.", repositories.MaxPageSize)
		filter.Limit = repositories.MaxPageSize
	}
	if filter.StartDate != nil {
		val := filter.StartDate.In(time.UTC)
		filter.StartDate = &val
	}
	if filter.EndDate != nil {
		val := filter.EndDate.In(time.UTC)
		filter.EndDate = &val
	}

	logs, totalCount, err := s.repo.GetFiltered(filter)
	if err != nil {
		return nil, 0, appErrors.WrapErrorf(err, "falha ao buscar logs de auditoria do repositório")
	}
	return logs, totalCount, nil
}
