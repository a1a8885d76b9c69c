package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa os contadores das sessões de abertura de conta.
type Metrics struct {
	SessionsOpened      prometheus.Counter
	SubmissionsAccepted prometheus.Counter
	SubmissionsRejected prometheus.Counter
	ActiveSessions      prometheus.GaugeFunc
}

// New registra as métricas em reg. Cada registry aceita um único Metrics.
// activeSessions é lido a cada coleta; nil reporta zero.
func New(reg prometheus.Registerer, activeSessions func() int) *Metrics {
	if activeSessions == nil {
		activeSessions = func() int { return 0 }
	}
	factory := promauto.With(reg)
	return &Metrics{
		SessionsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "abertura_conta_sessions_opened_total",
			Help: "Total de sessões de formulário abertas",
		}),
		SubmissionsAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "abertura_conta_submissions_accepted_total",
			Help: "Total de submissões aceitas (conta aberta)",
		}),
		SubmissionsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "abertura_conta_submissions_rejected_total",
			Help: "Total de submissões rejeitadas por erros de validação",
		}),
		ActiveSessions: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "abertura_conta_active_sessions",
			Help: "Sessões de formulário ativas",
		}, func() float64 { return float64(activeSessions()) }),
	}
}

// IncrementSessionsOpened registra uma sessão nova.
func (m *Metrics) IncrementSessionsOpened() {
	m.SessionsOpened.Inc()
}

// ObserveSubmission registra o resultado de uma submissão.
func (m *Metrics) ObserveSubmission(accepted bool) {
	if accepted {
		m.SubmissionsAccepted.Inc()
		return
	}
	m.SubmissionsRejected.Inc()
}
