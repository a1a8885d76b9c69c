package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core"
	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/repositories"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/utils"
)

// Formatos aceitos por ExportAuditLogs.
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

var auditExportHeaders = []string{"ID", "Data/Hora (UTC)", "Ação", "Descrição", "Severidade", "Sessão", "Metadados"}

// ExportService exporta a trilha de auditoria para arquivos.
type ExportService interface {
	// ExportAuditLogs grava os logs filtrados em outputPath (relativo a ExportDir)
	// e devolve o caminho final do arquivo.
	ExportAuditLogs(filter repositories.AuditLogFilter, format, outputPath string) (string, error)
}

type exportServiceImpl struct {
	audit AuditLogService
	cfg   *core.Config
}

// NewExportService cria uma nova instância de ExportService.
func NewExportService(audit AuditLogService, cfg *core.Config) ExportService {
	if audit == nil || cfg == nil {
		appLogger.Fatalf("AuditLogService e Config são obrigatórios para NewExportService")
	}
	return &exportServiceImpl{audit: audit, cfg: cfg}
}

func (s *exportServiceImpl) ExportAuditLogs(filter repositories.AuditLogFilter, format, outputPath string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ExportFormatCSV && format != ExportFormatXLSX {
		return "", appErrors.WrapErrorf(appErrors.ErrInvalidInput, "formato de exportação não suportado: '%s'", format)
	}
	if strings.TrimSpace(outputPath) == "" {
		outputPath = "auditoria_" + time.Now().Format("20060102_150405")
	}
	if filter.Limit <= 0 {
		filter.Limit = repositories.MaxPageSize
	}

	logs, total, err := s.audit.GetAuditLogs(filter)
	if err != nil {
		return "", err
	}
	if total > int64(len(logs)) {
		appLogger.Warnf("Exportação limitada a %d de %d logs de auditoria.", len(logs), total)
	}

	input, err := utils.NewSliceDataInput(auditLogTable(logs), "Auditoria")
	if err != nil {
		return "", err
	}
	opts := &utils.ExportOptions{
		CreateBackup:    true,
		Sanitize:        true,
		SanitizeColumns: []string{"Descrição", "Metadados"},
	}

	if format == ExportFormatXLSX {
		return utils.ExportToXLSX([]utils.DataInput{input}, outputPath, s.cfg, opts)
	}
	return utils.ExportToCSV(input, outputPath, s.cfg, opts)
}

func auditLogTable(logs []models.AuditLogEntry) [][]string {
	data := make([][]string, 0, len(logs)+1)
	data = append(data, auditExportHeaders)
	for _, l := range logs {
		meta := ""
		if len(l.Metadata) > 0 {
			if b, err := json.Marshal(l.Metadata); err == nil {
				meta = string(b)
			}
		}
		data = append(data, []string{
			strconv.FormatUint(l.ID, 10),
			l.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			l.Action,
			l.Description,
			l.Severity,
			l.SessionID,
			meta,
		})
	}
	return data
}
