package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMetadata guarda o campo metadata como JSON no banco.
// Implementa sql.Scanner e driver.Valuer.
type JSONMetadata map[string]interface{}

// Value converte JSONMetadata para JSON ao gravar.
func (jm JSONMetadata) Value() (driver.Value, error) {
	if jm == nil {
		return nil, nil
	}
	b, err := json.Marshal(jm)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan converte o JSON lido do banco para JSONMetadata.
func (jm *JSONMetadata) Scan(value interface{}) error {
	if value == nil {
		*jm = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("tipo de valor inválido para JSONMetadata scan, esperado []byte ou string")
	}
	if len(b) == 0 {
		*jm = make(JSONMetadata)
		return nil
	}
	return json.Unmarshal(b, jm)
}

// Ações registradas na trilha de auditoria do formulário.
const (
	ActionSessionOpened     = "SESSAO_CRIADA"
	ActionAccountOpened     = "CONTA_ABERTA"
	ActionSubmissionRefused = "SUBMISSAO_REJEITADA"
	ActionSessionClosed     = "SESSAO_ENCERRADA"
	ActionBatchImported     = "IMPORTACAO_LOTE"
)

// AuditLogEntry é uma entrada da trilha de auditoria. Registra eventos da
// sessão de formulário, nunca o estado do formulário em si.
type AuditLogEntry struct {
	ID          uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp   time.Time    `gorm:"not null;index" json:"timestamp"`
	Action      string       `gorm:"type:varchar(100);not null;index" json:"action"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Severity    string       `gorm:"type:varchar(10);not null;index" json:"severity"` // DEBUG, INFO, WARNING, ERROR, CRITICAL
	SessionID   string       `gorm:"type:varchar(36);index" json:"session_id"`
	Metadata    JSONMetadata `gorm:"type:text" json:"metadata,omitempty"`
}

// TableName especifica o nome da tabela para GORM.
func (AuditLogEntry) TableName() string {
	return "audit_logs"
}

// ValidSeverities define os níveis de severidade válidos.
var ValidSeverities = map[string]bool{
	"DEBUG":    true,
	"INFO":     true,
	"WARNING":  true,
	"ERROR":    true,
	"CRITICAL": true,
}
