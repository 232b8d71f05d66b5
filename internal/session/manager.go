package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Mohammad-Samir-CNTXT/Audio-Recording-Platform/internal/audio"
)

// ErrSessionActive is returned when a user already has a non-terminal session
var ErrSessionActive = fmt.Errorf("a recording session is already active for this user")

// ManagerConfig contains configuration for the session manager
type ManagerConfig struct {
	// MaxDuration is the capture ceiling applied to every session
	MaxDuration time.Duration

	// TerminalTTL is how long finished sessions are kept for inspection
	// before the cleanup routine removes them.
	TerminalTTL time.Duration
}

// Manager owns at most one recording session per user. Finished sessions
// stay queryable until the cleanup routine expires them or the user starts
// a new recording.
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	logger     *slog.Logger
	capture    Capture
	normalizer *audio.Normalizer
	repo       Repository
	config     ManagerConfig

	ctx     context.Context
	cancel  context.CancelFunc
	cleanup chan struct{}
}

// NewManager creates a session manager and starts its cleanup routine
func NewManager(logger *slog.Logger, capture Capture, normalizer *audio.Normalizer,
	repo Repository, config ManagerConfig) *Manager {

	if config.TerminalTTL <= 0 {
		config.TerminalTTL = 10 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	mgr := &Manager{
		sessions:   make(map[string]*Session),
		logger:     logger,
		capture:    capture,
		normalizer: normalizer,
		repo:       repo,
		config:     config,
		ctx:        ctx,
		cancel:     cancel,
		cleanup:    make(chan struct{}),
	}

	go mgr.startCleanupRoutine()

	return mgr
}

// StartSession creates and starts a session for the user. Only one live
// session per user is allowed; a finished session is replaced.
func (m *Manager) StartSession(ctx context.Context, user, passage string, passageIndex int) (*Session, error) {
	record, err := m.repo.Load(user)
	if err != nil {
		return nil, fmt.Errorf("load user record: %w", err)
	}

	m.mu.Lock()
	if existing, exists := m.sessions[user]; exists && !existing.State().Terminal() {
		m.mu.Unlock()
		m.logger.Warn("Rejected concurrent session start",
			slog.String("user", user),
			slog.String("existing_state", existing.State().String()),
		)
		return nil, ErrSessionActive
	}

	sess := New(user, passage, passageIndex, record.SpeakerInfo,
		m.capture, m.normalizer, m.repo, m.logger,
		Config{MaxDuration: m.config.MaxDuration})
	m.sessions[user] = sess
	m.mu.Unlock()

	if err := sess.Start(ctx); err != nil {
		// A validation refusal leaves no session behind; the user fixes
		// their profile and tries again. Access failures stay queryable.
		if _, ok := err.(*ValidationError); ok {
			m.Remove(user)
		}
		return nil, err
	}

	return sess, nil
}

// Get retrieves the user's session
func (m *Manager) Get(user string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[user]
	return sess, exists
}

// Remove drops the user's session, stopping it first if still capturing
func (m *Manager) Remove(user string) bool {
	m.mu.Lock()
	sess, exists := m.sessions[user]
	if exists {
		delete(m.sessions, user)
	}
	m.mu.Unlock()

	if !exists {
		return false
	}

	if sess.State() == StateCapturing {
		if err := sess.Stop(); err != nil {
			m.logger.Warn("Stop during removal failed",
				slog.String("user", user),
				slog.String("error", err.Error()),
			)
		}
	}

	return true
}

// ActiveCount returns the number of sessions currently capturing
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, sess := range m.sessions {
		if !sess.State().Terminal() {
			count++
		}
	}
	return count
}

// Sessions returns monitoring snapshots of all tracked sessions, ordered
// by user for stable output.
func (m *Manager) Sessions() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].User < infos[j].User })

	return infos
}

// Stop gracefully stops the manager, ending any live captures
func (m *Manager) Stop() {
	m.logger.Info("Stopping session manager...")

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.Unlock()

	for _, sess := range sessions {
		if sess.State() == StateCapturing {
			if err := sess.Stop(); err != nil {
				m.logger.Warn("Session stop during shutdown failed",
					slog.String("user", sess.User),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	m.cancel()
	<-m.cleanup

	m.logger.Info("Session manager stopped",
		slog.Int("remaining_sessions", len(sessions)),
	)
}

// startCleanupRoutine expires finished sessions in the background
func (m *Manager) startCleanupRoutine() {
	defer close(m.cleanup)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	m.logger.Info("Session cleanup routine started",
		slog.Duration("terminal_ttl", m.config.TerminalTTL),
	)

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("Session cleanup routine stopping")
			return

		case <-ticker.C:
			m.cleanupFinishedSessions()
		}
	}
}

// cleanupFinishedSessions removes terminal sessions older than the TTL
func (m *Manager) cleanupFinishedSessions() {
	cutoff := time.Now().Add(-m.config.TerminalTTL)
	expired := make([]string, 0)

	m.mu.RLock()
	for user, sess := range m.sessions {
		if sess.State().Terminal() && sess.StartedAt.Before(cutoff) {
			expired = append(expired, user)
		}
	}
	m.mu.RUnlock()

	if len(expired) == 0 {
		return
	}

	m.logger.Info("Cleaning up finished sessions",
		slog.Int("expired_count", len(expired)),
	)

	m.mu.Lock()
	for _, user := range expired {
		delete(m.sessions, user)
	}
	m.mu.Unlock()
}
