package onboarding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"funnelfit/portal-backend/pkg/workflows"
)

// Session is one user's walk through the wizard
type Session struct {
	ID        uuid.UUID
	Role      Role
	Email     string
	ClientID  string
	CreatedAt time.Time
	UpdatedAt time.Time

	sequencer  *StepSequencer
	form       *FormState
	controller *TransitionController
	mu         sync.Mutex
}

// SessionView is the serialisable state of a session
type SessionView struct {
	ID          uuid.UUID  `json:"id"`
	Role        Role       `json:"role"`
	Email       string     `json:"email"`
	ClientID    string     `json:"client_id,omitempty"`
	State       string     `json:"state"`
	CurrentStep Step       `json:"current_step"`
	Progress    Progress   `json:"progress"`
	Form        *FormState `json:"form"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newSession(id uuid.UUID, role Role, email, clientID string, handler CompletionHandler, logger *zap.Logger) (*Session, error) {
	sequencer, err := NewStepSequencer(role)
	if err != nil {
		return nil, err
	}
	form := NewFormState()
	now := time.Now().UTC()

	return &Session{
		ID:         id,
		Role:       role,
		Email:      email,
		ClientID:   clientID,
		CreatedAt:  now,
		UpdatedAt:  now,
		sequencer:  sequencer,
		form:       form,
		controller: NewTransitionController(Owner{SessionID: id, Role: role, Email: email, ClientID: clientID}, sequencer, form, handler, logger),
	}, nil
}

// View returns a snapshot of the session
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionView{
		ID:          s.ID,
		Role:        s.Role,
		Email:       s.Email,
		ClientID:    s.ClientID,
		State:       s.controller.State(),
		CurrentStep: s.sequencer.CurrentStep(),
		Progress:    s.sequencer.Progress(),
		Form:        s.form.Snapshot(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Edit applies a change to the form. Completed or abandoned sessions are read-only.
func (s *Session) Edit(fn func(form *FormState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.controller.ensureActive(); err != nil {
		return err
	}
	if err := fn(s.form); err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Check validates the current step without moving
func (s *Session) Check() ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Check()
}

// Continue runs the Continue button semantics
func (s *Session) Continue(ctx context.Context) (*TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.controller.OnContinue(ctx)
	if err == nil {
		s.UpdatedAt = time.Now().UTC()
	}
	return result, err
}

// Back runs the Back button semantics
func (s *Session) Back() (*TransitionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.controller.OnBack()
	if err == nil {
		s.UpdatedAt = time.Now().UTC()
	}
	return result, err
}

// State returns the lifecycle state
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.State()
}

// restart puts the session back on the first step with an empty form
func (s *Session) restart(handler CompletionHandler, logger *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sequencer, _ := NewStepSequencer(s.Role)
	form := NewFormState()
	owner := Owner{SessionID: s.ID, Role: s.Role, Email: s.Email, ClientID: s.ClientID}

	s.sequencer = sequencer
	s.form = form
	s.controller = NewTransitionController(owner, sequencer, form, handler, logger)
	s.UpdatedAt = time.Now().UTC()
}

func (s *Session) lastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdatedAt
}

// Manager tracks the live onboarding sessions
type Manager struct {
	sessions map[uuid.UUID]*Session
	mu       sync.RWMutex
	handler  CompletionHandler
	logger   *zap.Logger
}

// NewManager creates a session manager. handler receives every completed wizard.
func NewManager(handler CompletionHandler, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		handler:  handler,
		logger:   logger,
	}
}

// Start creates a session positioned on the first step of the role's flow
func (m *Manager) Start(role Role, email, clientID string) (*Session, error) {
	session, err := newSession(uuid.New(), role, email, clientID, m.handler, m.logger)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info("Onboarding session started",
		zap.String("session_id", session.ID.String()),
		zap.String("role", string(role)))

	return session, nil
}

// Get retrieves a session
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// Reset restarts onboarding under the same session id with an empty form.
// The session is reset in place so holders of the pointer see the fresh state.
func (m *Manager) Reset(id uuid.UUID) (*Session, error) {
	session, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	session.restart(m.handler, m.logger)

	m.logger.Info("Onboarding session reset", zap.String("session_id", id.String()))
	return session, nil
}

// Abandon ends a session (sign out) and forgets it
func (m *Manager) Abandon(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	session, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.controller.State() == workflows.StateInProgress {
		if err := session.controller.Abandon(ctx); err != nil {
			return nil, err
		}
	}

	m.logger.Info("Onboarding session abandoned", zap.String("session_id", id.String()))
	return session, nil
}

// Count returns the number of tracked sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExpireIdle drops sessions with no activity for longer than ttl and returns how many were dropped
func (m *Manager) ExpireIdle(ttl time.Duration) int {
	cutoff := time.Now().UTC().Add(-ttl)

	m.mu.RLock()
	candidates := make(map[uuid.UUID]*Session, len(m.sessions))
	for id, session := range m.sessions {
		candidates[id] = session
	}
	m.mu.RUnlock()

	// Session locks may be held across a completion hand-off, so idleness is
	// checked without holding the manager lock.
	var idle []uuid.UUID
	for id, session := range candidates {
		if session.lastActivity().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	if len(idle) == 0 {
		return 0
	}

	m.mu.Lock()
	expired := 0
	for _, id := range idle {
		if current, ok := m.sessions[id]; ok && current == candidates[id] {
			delete(m.sessions, id)
			expired++
		}
	}
	m.mu.Unlock()

	if expired > 0 {
		m.logger.Info("Expired idle onboarding sessions", zap.Int("count", expired))
	}
	return expired
}
