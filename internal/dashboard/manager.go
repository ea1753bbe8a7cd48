package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/skillspring-hub/skillspring-dashboard/internal/domain/shared"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/scheduler"
	"github.com/skillspring-hub/skillspring-dashboard/internal/infrastructure/scheduler/jobs"
)

// SessionDirectory persists session identity across process restarts,
// keyed by bearer credential.
type SessionDirectory interface {
	Register(ctx context.Context, token string, record shared.SessionRecord) error
	Lookup(ctx context.Context, token string) (shared.SessionRecord, error)
	Remove(ctx context.Context, token string) error
}

// ManagerMetrics extends the session metrics with lifecycle gauges.
type ManagerMetrics interface {
	SessionMetrics
	SessionStarted()
	SessionEnded()
}

// ManagerConfig carries the manager's dependencies.
type ManagerConfig struct {
	Client    FeedClient
	Events    shared.EventBus
	Scheduler *scheduler.Scheduler

	// Directory and Archive are optional; without them all session
	// state is process-local.
	Directory SessionDirectory
	Archive   SnapshotArchive

	// Metrics is optional.
	Metrics ManagerMetrics

	// RefreshInterval is the feed refresh cadence (default 30s).
	RefreshInterval time.Duration

	Logger *slog.Logger
}

// Manager owns the set of active sessions and their refresh jobs.
type Manager struct {
	config ManagerConfig
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session // keyed by bearer token
}

// NewManager creates a Manager.
func NewManager(config ManagerConfig) *Manager {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 30 * time.Second
	}

	return &Manager{
		config:   config,
		logger:   config.Logger,
		sessions: make(map[string]*Session),
	}
}

// Login starts a session for the credential, or returns the existing
// one. A brand new session runs its first refresh pass before Login
// returns, so the first dashboard read is already populated; refreshes
// then continue on the configured interval.
func (m *Manager) Login(ctx context.Context, token, userID, email, role string) (*Session, error) {
	if token == "" {
		return nil, shared.ErrNoCredential
	}

	m.mu.Lock()
	if existing, ok := m.sessions[token]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.mu.Unlock()

	// A directory hit means this credential had a session before a
	// restart; keep its identity.
	var sessionID string
	if m.config.Directory != nil {
		if record, err := m.config.Directory.Lookup(ctx, token); err == nil {
			sessionID = record.SessionID
			if userID == "" {
				userID = record.UserID
			}
			if email == "" {
				email = record.Email
			}
			if role == "" {
				role = record.Role
			}
		}
	}

	session, err := NewSession(SessionConfig{
		ID:      sessionID,
		Token:   token,
		UserID:  userID,
		Email:   email,
		Role:    role,
		Client:  m.config.Client,
		Events:  m.config.Events,
		Archive: m.config.Archive,
		Metrics: m.config.Metrics,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.sessions[token]; ok {
		// Lost the race to a concurrent login with the same credential.
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[token] = session
	m.mu.Unlock()

	if m.config.Directory != nil {
		if err := m.config.Directory.Register(ctx, token, shared.SessionRecord{
			SessionID: session.ID(),
			UserID:    userID,
			Email:     email,
			Role:      role,
			StartedAt: session.StartedAt(),
		}); err != nil {
			m.logger.Warn("session directory register failed", "session", session.ID(), "error", err)
		}
	}

	session.Seed(ctx)

	job := jobs.NewDashboardRefreshJob(session, m.logger)
	if err := m.config.Scheduler.Register(job, scheduler.NewIntervalSchedule(m.config.RefreshInterval)); err != nil {
		m.logger.Warn("refresh job registration failed", "session", session.ID(), "error", err)
	} else if _, err := m.config.Scheduler.RunNow(ctx, job.Name()); err != nil {
		// The pass already applied each feed's fallback policy.
		m.logger.Warn("initial refresh pass had failures", "session", session.ID(), "error", err)
	}

	if m.config.Metrics != nil {
		m.config.Metrics.SessionStarted()
	}

	m.logger.Info("session started",
		"session", session.ID(), "email", email, "refresh_interval", m.config.RefreshInterval)

	return session, nil
}

// Get returns the active session for a credential.
func (m *Manager) Get(token string) (*Session, error) {
	if token == "" {
		return nil, shared.ErrNoCredential
	}

	m.mu.RLock()
	session, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	return session, nil
}

// Logout ends the session for a credential: the refresh job is
// unregistered, the directory entry removed, and the logout recorded.
// Logging out an unknown credential returns shared.ErrSessionNotFound.
func (m *Manager) Logout(ctx context.Context, token string) error {
	m.mu.Lock()
	session, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	m.mu.Unlock()

	if !ok {
		return shared.ErrSessionNotFound
	}

	if err := m.config.Scheduler.Unregister(jobs.RefreshJobName(session.ID())); err != nil {
		m.logger.Warn("refresh job unregister failed", "session", session.ID(), "error", err)
	}

	if m.config.Directory != nil {
		if err := m.config.Directory.Remove(ctx, token); err != nil {
			m.logger.Warn("session directory remove failed", "session", session.ID(), "error", err)
		}
	}

	session.End()

	if m.config.Metrics != nil {
		m.config.Metrics.SessionEnded()
	}

	m.logger.Info("session ended", "session", session.ID())

	return nil
}

// ActiveSessions returns the number of live sessions.
func (m *Manager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
