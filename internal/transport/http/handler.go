package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/presenter"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/services"
)

const maxBodyBytes = 64 << 10

// Handler é a camada HTTP fina sobre AccountService.
type Handler struct {
	accounts services.AccountService
	gatherer prometheus.Gatherer
}

// NewHandler cria o Handler. gatherer nil desativa /metrics.
func NewHandler(accounts services.AccountService, gatherer prometheus.Gatherer) *Handler {
	return &Handler{accounts: accounts, gatherer: gatherer}
}

// NewRouter registra todas as rotas públicas.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", h.handleHealth)
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.handleOpenSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetSession)
			r.Patch("/", h.handleUpdateSession)
			r.Delete("/", h.handleCloseSession)
			r.Post("/submit", h.handleSubmit)
		})
	})
	return r
}

type submitAccepted struct {
	Summary form.AccountSummary `json:"summary"`
	Title   string              `json:"title"`
	Text    string              `json:"text"`
}

type submitRejected struct {
	Title    string            `json:"title"`
	Messages []string          `json:"messages"`
	Errors   map[string]string `json:"errors"`
	Text     string            `json:"text"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleOpenSession(w http.ResponseWriter, _ *http.Request) {
	state, err := h.accounts.OpenSession()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+state.ID)
	writeJSON(w, http.StatusCreated, state)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.accounts.State(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var changes form.Changes
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&changes); err != nil {
		appLogger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"error":      err.Error(),
		}).Warn("Corpo de requisição inválido.")
		writeError(w, appErrors.WrapErrorf(appErrors.ErrInvalidInput, "corpo da requisição inválido: %v", err))
		return
	}

	state, err := h.accounts.Update(chi.URLParam(r, "id"), changes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.accounts.Submit(chi.URLParam(r, "id"))
	if err != nil {
		var ve *appErrors.ValidationError
		if errors.As(err, &ve) {
			messages := form.ErrorsFromStringMap(ve.Fields).Messages()
			writeJSON(w, http.StatusUnprocessableEntity, submitRejected{
				Title:    ve.Message,
				Messages: messages,
				Errors:   ve.Fields,
				Text:     presenter.ErrorsText(messages),
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitAccepted{
		Summary: receipt.Summary,
		Title:   receipt.Title,
		Text:    receipt.Text,
	})
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.CloseSession(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor traduz erros de domínio para status HTTP.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, appErrors.ErrInvalidSession), errors.Is(err, appErrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, appErrors.ErrSessionExpired):
		return http.StatusGone, "session_expired"
	case errors.Is(err, appErrors.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, appErrors.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		appLogger.Errorf("Erro interno na API: %v", err)
		message = appErrors.ErrInternal.Error()
	}
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		appLogger.Warnf("Falha ao escrever resposta JSON: %v", err)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		appLogger.WithFields(logrus.Fields{
			"request_id":  middleware.GetReqID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Requisição HTTP atendida.")
	})
}
