package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/loomkit/loom/pkg/metrics"
	"github.com/loomkit/loom/pkg/trace"
)

// Manager tracks every live session and runs the idle-timeout cleanup
// sweep. Grounded on the prior SessionManager in pkg/server/manager.go,
// with the Phase 12 persistence fields (persistenceManager, sessionStore,
// resumeWindow, and the Serialize/Deserialize/Restore* methods built on
// them) dropped entirely: this engine has no cross-restart persistence
// (see DESIGN.md).
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	config *Config
	limits *Limits

	metrics *metrics.Recorder
	tracer  *trace.Tracer

	cleanupInterval time.Duration
	cleanupMu       sync.Mutex
	cleanupTicker   *time.Ticker
	done            chan struct{}
	cleanupDone     chan struct{}

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peak         int

	onSessionCreate func(*Session)
	onSessionClose  func(*Session)

	logger *slog.Logger
}

// NewManager creates a Manager and starts its cleanup loop.
func NewManager(config *Config, limits *Limits, logger *slog.Logger) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if limits == nil {
		limits = DefaultLimits()
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		sessions:        make(map[string]*Session),
		config:          config,
		limits:          limits,
		cleanupInterval: 30 * time.Second,
		done:            make(chan struct{}),
		cleanupDone:     make(chan struct{}),
		logger:          logger.With("component", "session_manager"),
	}

	go m.cleanupLoop()
	return m
}

// CreateSession creates a Session bound to conn, enforcing MaxSessions. Call
// Mount on the result to attach a root component.
func (m *Manager) CreateSession(conn *websocket.Conn) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.limits.MaxSessions > 0 && len(m.sessions) >= m.limits.MaxSessions {
		return nil, ErrMaxSessionsReached
	}

	s := New(conn, m.config, m.logger)
	s.SetMetrics(m.metrics)
	s.SetTracer(m.tracer)
	m.sessions[s.ID] = s
	m.totalCreated.Add(1)
	if len(m.sessions) > m.peak {
		m.peak = len(m.sessions)
	}

	if m.onSessionCreate != nil {
		m.onSessionCreate(s)
	}
	m.logger.Info("session created", "session_id", s.ID, "active_sessions", len(m.sessions))
	return s, nil
}

// Get retrieves a session by ID.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Close closes and removes a session by ID.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, exists := m.sessions[id]
	if exists {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !exists {
		return
	}
	s.Close()
	m.totalClosed.Add(1)
	if m.onSessionClose != nil {
		m.onSessionClose(s)
	}
	m.logger.Info("session closed", "session_id", id, "active_sessions", m.Count())
}

// Count returns the number of tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) cleanupLoop() {
	defer close(m.cleanupDone)

	m.cleanupMu.Lock()
	m.cleanupTicker = time.NewTicker(m.cleanupInterval)
	m.cleanupMu.Unlock()
	defer func() {
		m.cleanupMu.Lock()
		m.cleanupTicker.Stop()
		m.cleanupMu.Unlock()
	}()

	for {
		m.cleanupMu.Lock()
		ticker := m.cleanupTicker
		m.cleanupMu.Unlock()

		select {
		case <-ticker.C:
			m.cleanupExpired()
		case <-m.done:
			return
		}
	}
}

func (m *Manager) cleanupExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var expired []string
	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > m.config.IdleTimeout {
			expired = append(expired, id)
		}
	}

	for _, id := range expired {
		s := m.sessions[id]
		delete(m.sessions, id)
		go func(s *Session) {
			s.Close()
			m.totalClosed.Add(1)
			if m.onSessionClose != nil {
				m.onSessionClose(s)
			}
		}(s)
	}

	if len(expired) > 0 {
		m.logger.Info("cleaned up expired sessions", "count", len(expired), "remaining", len(m.sessions))
	}
}

// Shutdown closes every tracked session and stops the cleanup loop.
func (m *Manager) Shutdown() {
	close(m.done)
	<-m.cleanupDone

	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
			if m.onSessionClose != nil {
				m.onSessionClose(s)
			}
		}(s)
	}
	wg.Wait()

	m.logger.Info("session manager shutdown", "closed_sessions", len(sessions))
}

// Stats reports aggregated manager statistics.
type Stats struct {
	Active       int
	TotalCreated uint64
	TotalClosed  uint64
	Peak         int
}

// Stats returns the manager's current aggregated statistics.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Active:       len(m.sessions),
		TotalCreated: m.totalCreated.Load(),
		TotalClosed:  m.totalClosed.Load(),
		Peak:         m.peak,
	}
}

// ForEach iterates live sessions. fn should not block; it runs under the
// manager's read lock.
func (m *Manager) ForEach(fn func(*Session) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if !fn(s) {
			break
		}
	}
}

// SetMetrics attaches a Prometheus recorder applied to every session the
// manager creates from this point forward.
func (m *Manager) SetMetrics(r *metrics.Recorder) { m.metrics = r }

// SetTracer attaches an OpenTelemetry tracer applied to every session the
// manager creates from this point forward.
func (m *Manager) SetTracer(t *trace.Tracer) { m.tracer = t }

// SetOnSessionCreate sets the session-creation callback.
func (m *Manager) SetOnSessionCreate(fn func(*Session)) { m.onSessionCreate = fn }

// SetOnSessionClose sets the session-close callback.
func (m *Manager) SetOnSessionClose(fn func(*Session)) { m.onSessionClose = fn }

// SetCleanupInterval adjusts how often the cleanup sweep runs.
func (m *Manager) SetCleanupInterval(d time.Duration) {
	m.cleanupMu.Lock()
	defer m.cleanupMu.Unlock()
	m.cleanupInterval = d
	if m.cleanupTicker != nil {
		m.cleanupTicker.Reset(d)
	}
}
