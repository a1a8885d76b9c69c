package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/errors"
	appLogger "github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/core/logger"
	"github.com/Dukorsa/APP_ABERTURA_CONTA_GO/internal/form"
)

// Session é uma sessão de formulário: um Controller próprio, protegido por
// um mutex para que eventos da mesma sessão rodem um de cada vez.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	controller   *form.Controller
	lastActivity time.Time
}

// LastActivity devolve o instante do último acesso.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

func (s *Session) isExpired(now time.Time, timeout time.Duration) bool {
	return now.After(s.lastActivity.Add(timeout))
}

// Options configura o Manager.
type Options struct {
	Timeout         time.Duration
	CleanupInterval time.Duration
	CleanupEnabled  bool
	// NewController cria o controlador de cada sessão nova; padrão form.NewController().
	NewController func() *form.Controller
	// Now permite controlar o relógio nos testes.
	Now func() time.Time
}

// Manager guarda as sessões de formulário ativas. Sessões não compartilham estado.
type Manager struct {
	opts     Options
	sessions map[string]*Session
	lock     sync.RWMutex

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewManager cria um Manager. Timeout zero desativa a expiração.
func NewManager(opts Options) *Manager {
	if opts.NewController == nil {
		opts.NewController = func() *form.Controller { return form.NewController() }
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{
		opts:         opts,
		sessions:     make(map[string]*Session),
		shutdownChan: make(chan struct{}),
	}
}

// StartCleanupGoroutine inicia a limpeza periódica de sessões ociosas.
func (m *Manager) StartCleanupGoroutine() {
	if !m.opts.CleanupEnabled || m.opts.CleanupInterval <= 0 || m.opts.Timeout <= 0 {
		appLogger.Info("Limpeza de sessões de formulário em background desabilitada.")
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.opts.CleanupInterval)
		defer ticker.Stop()

		appLogger.Infof("Goroutine de limpeza de sessões iniciada (intervalo: %v).", m.opts.CleanupInterval)
		for {
			select {
			case <-ticker.C:
				m.CleanupExpired()
			case <-m.shutdownChan:
				return
			}
		}
	}()
}

// Shutdown para a goroutine de limpeza e descarta todas as sessões.
func (m *Manager) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
	})
	m.wg.Wait()

	m.lock.Lock()
	count := len(m.sessions)
	m.sessions = make(map[string]*Session)
	m.lock.Unlock()
	appLogger.Infof("SessionManager encerrado; %d sessões descartadas.", count)
}

// Create abre uma nova sessão com os valores padrão do formulário.
func (m *Manager) Create() *Session {
	now := m.opts.Now()
	s := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		controller:   m.opts.NewController(),
		lastActivity: now,
	}

	m.lock.Lock()
	m.sessions[s.ID] = s
	m.lock.Unlock()

	appLogger.Debugf("Sessão de formulário criada: %s", s.ID)
	return s
}

// Do executa fn com o controlador da sessão id, com exclusão mútua por sessão.
// Devolve ErrInvalidSession se a sessão não existir e ErrSessionExpired se estiver ociosa demais.
func (m *Manager) Do(id string, fn func(c *form.Controller) error) error {
	s, err := m.get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := m.opts.Now()
	if m.opts.Timeout > 0 && s.isExpired(now, m.opts.Timeout) {
		m.remove(id)
		return fmt.Errorf("%w: sessão %s", appErrors.ErrSessionExpired, id)
	}
	s.lastActivity = now
	return fn(s.controller)
}

// Delete remove a sessão. Remover uma sessão inexistente não é erro.
func (m *Manager) Delete(id string) bool {
	removed := m.remove(id)
	if removed {
		appLogger.Debugf("Sessão de formulário %s removida.", id)
	}
	return removed
}

// Count devolve o número de sessões ativas.
func (m *Manager) Count() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.sessions)
}

// CleanupExpired remove sessões ociosas e devolve quantas foram removidas.
func (m *Manager) CleanupExpired() int {
	if m.opts.Timeout <= 0 {
		return 0
	}
	now := m.opts.Now()

	m.lock.RLock()
	candidates := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		candidates = append(candidates, s)
	}
	m.lock.RUnlock()

	cleaned := 0
	for _, s := range candidates {
		s.mu.Lock()
		expired := s.isExpired(now, m.opts.Timeout)
		s.mu.Unlock()
		if expired && m.remove(s.ID) {
			cleaned++
		}
	}
	if cleaned > 0 {
		appLogger.Infof("Limpeza de sessões removeu %d sessões expiradas.", cleaned)
	} else {
		appLogger.Debug("Limpeza de sessões: nenhuma sessão expirada encontrada.")
	}
	return cleaned
}

func (m *Manager) get(id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: ID da sessão não pode ser vazio", appErrors.ErrInvalidSession)
	}
	m.lock.RLock()
	s, ok := m.sessions[id]
	m.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", appErrors.ErrInvalidSession, id)
	}
	return s, nil
}

func (m *Manager) remove(id string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}
