package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/data/models"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/metrics"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/presenter"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/session"
)

// SessionState é a visão de uma sessão de formulário devolvida aos clientes.
type SessionState struct {
	ID      string               `json:"id"`
	Fields  form.Fields          `json:"fields"`
	Errors  map[string]string    `json:"errors"`
	Ready   bool                 `json:"ready"`
	Summary *form.AccountSummary `json:"summary,omitempty"`
}

// Receipt é o resultado de uma submissão aceita, já formatado para exibição.
type Receipt struct {
	Summary form.AccountSummary `json:"summary"`
	Title   string              `json:"title"`
	Text    string              `json:"text"`
}

// AccountService define as operações de abertura de conta sobre sessões de formulário.
type AccountService interface {
	OpenSession() (SessionState, error)
	Update(id string, changes form.Changes) (SessionState, error)
	State(id string) (SessionState, error)
	// Submit devolve um *appErrors.ValidationError (Message = título do alerta,
	// Fields = erros por campo) quando a submissão é rejeitada.
	Submit(id string) (*Receipt, error)
	CloseSession(id string) error
}

type accountServiceImpl struct {
	sessions *session.Manager
	audit    AuditLogService  // nil: auditoria desabilitada
	metrics  *metrics.Metrics // nil: sem métricas
}

// NewAccountService cria o serviço. audit e m podem ser nil.
func NewAccountService(sm *session.Manager, audit AuditLogService, m *metrics.Metrics) AccountService {
	if sm == nil {
		appLogger.Fatalf("session.Manager não pode ser nil para NewAccountService")
	}
	if audit == nil {
		appLogger.Info("AccountService sem trilha de auditoria.")
	}
	return &accountServiceImpl{sessions: sm, audit: audit, metrics: m}
}

// OpenSession abre uma sessão com os valores padrão.
func (s *accountServiceImpl) OpenSession() (SessionState, error) {
	sess := s.sessions.Create()
	if s.metrics != nil {
		s.metrics.IncrementSessionsOpened()
	}
	s.record(models.AuditLogEntry{
		Action:      models.ActionSessionOpened,
		Description: "Sessão de formulário de abertura de conta criada.",
		Severity:    "INFO",
		SessionID:   sess.ID,
	})
	return s.State(sess.ID)
}

// Update aplica as alterações e devolve o estado revalidado.
func (s *accountServiceImpl) Update(id string, changes form.Changes) (SessionState, error) {
	var state SessionState
	err := s.sessions.Do(id, func(c *form.Controller) error {
		c.Apply(changes)
		state = snapshot(id, c)
		return nil
	})
	if err != nil {
		return SessionState{}, s.sessionError(err, id)
	}
	return state, nil
}

// State devolve o estado atual sem alterá-lo.
func (s *accountServiceImpl) State(id string) (SessionState, error) {
	var state SessionState
	err := s.sessions.Do(id, func(c *form.Controller) error {
		state = snapshot(id, c)
		return nil
	})
	if err != nil {
		return SessionState{}, s.sessionError(err, id)
	}
	return state, nil
}

// Submit submete o formulário. Uma nova conta aceita substitui o resumo anterior.
func (s *accountServiceImpl) Submit(id string) (*Receipt, error) {
	var result form.SubmitResult
	tag := form.SupportedLanguages[0]
	err := s.sessions.Do(id, func(c *form.Controller) error {
		result = c.Submit()
		tag = c.Validator().Language()
		return nil
	})
	if err != nil {
		return nil, s.sessionError(err, id)
	}

	if s.metrics != nil {
		s.metrics.ObserveSubmission(result.Accepted())
	}

	if !result.Accepted() {
		fields := result.Errors.StringMap()
		appLogger.WithFields(logrus.Fields{"session_id": id, "errors": len(fields)}).Info("Submissão rejeitada.")
		s.record(models.AuditLogEntry{
			Action:      models.ActionSubmissionRefused,
			Description: fmt.Sprintf("Submissão rejeitada com %d erro(s).", len(fields)),
			Severity:    "WARNING",
			SessionID:   id,
			Metadata:    models.JSONMetadata{"fields": fieldNames(result.Errors)},
		})
		return nil, appErrors.NewValidationError(presenter.ErrorTitle(tag), fields)
	}

	appLogger.WithFields(logrus.Fields{"session_id": id}).Info("Conta aberta.")
	s.record(models.AuditLogEntry{
		Action:      models.ActionAccountOpened,
		Description: "Submissão aceita; conta aberta.",
		Severity:    "INFO",
		SessionID:   id,
	})
	return &Receipt{
		Summary: *result.Summary,
		Title:   presenter.SuccessTitle(tag),
		Text:    presenter.SummaryText(*result.Summary, tag),
	}, nil
}

// CloseSession descarta a sessão.
func (s *accountServiceImpl) CloseSession(id string) error {
	if !s.sessions.Delete(id) {
		return fmt.Errorf("%w: %s", appErrors.ErrInvalidSession, id)
	}
	s.record(models.AuditLogEntry{
		Action:      models.ActionSessionClosed,
		Description: "Sessão de formulário encerrada.",
		Severity:    "INFO",
		SessionID:   id,
	})
	return nil
}

func (s *accountServiceImpl) sessionError(err error, id string) error {
	if errors.Is(err, appErrors.ErrSessionExpired) {
		appLogger.Infof("Sessão de formulário expirada: %s", id)
	}
	return err
}

// record grava na trilha de auditoria; falhas são apenas logadas.
func (s *accountServiceImpl) record(entry models.AuditLogEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAction(entry); err != nil {
		appLogger.Warnf("Falha ao registrar auditoria (Ação: %s, Sessão: %s): %v", entry.Action, entry.SessionID, err)
	}
}

func snapshot(id string, c *form.Controller) SessionState {
	state := SessionState{
		ID:     id,
		Fields: c.Fields(),
		Errors: c.Errors().StringMap(),
		Ready:  c.Ready(),
	}
	if summary, ok := c.Summary(); ok {
		state.Summary = &summary
	}
	return state
}

func fieldNames(errs form.Errors) []string {
	fields := errs.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = string(f)
	}
	return out
}
