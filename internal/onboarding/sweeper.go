package onboarding

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically drops idle sessions
type Sweeper struct {
	cron    *cron.Cron
	manager *Manager
	ttl     time.Duration
	spec    string
	logger  *zap.Logger
	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper running on a cron spec, e.g. "@every 5m"
func NewSweeper(manager *Manager, spec string, ttl time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		cron:    cron.New(),
		manager: manager,
		ttl:     ttl,
		spec:    spec,
		logger:  logger,
	}
}

// Start schedules the sweep job
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("session sweeper already running")
	}

	if _, err := s.cron.AddFunc(s.spec, s.Sweep); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Session sweeper started",
		zap.String("schedule", s.spec),
		zap.Duration("idle_ttl", s.ttl))
	return nil
}

// Sweep runs one expiry pass
func (s *Sweeper) Sweep() {
	s.manager.ExpireIdle(s.ttl)
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("Session sweeper stopped")
}
