// Package session is the bridge transport (C8, transport half): it drives
// the wire codec in pkg/bridge over a gorilla/websocket connection, queues
// and dispatches inbound events, and runs pkg/commit's pipeline to turn
// render output into outbound batches.
//
// Grounded on the prior pkg/server package: newSession/MountRoot,
// ReadLoop/WriteLoop/EventLoop, and SessionManager carry over almost
// unchanged in shape; what changes is the payload (six bridge ops instead
// of DOM patches) and what gets dropped (no cross-restart persistence, no
// routing/prefetch, no storm budgets — see DESIGN.md).
package session

import "time"

// Config holds the per-session tunables, adapted from the prior
// SessionConfig with the routing/prefetch/storm-budget fields removed —
// those subsystems sit outside this engine's scope.
type Config struct {
	// ReadTimeout bounds how long a read on the connection may block.
	ReadTimeout time.Duration

	// WriteTimeout bounds how long a single frame write may block.
	WriteTimeout time.Duration

	// IdleTimeout is how long a session may sit without activity before
	// the manager's cleanup loop closes it.
	IdleTimeout time.Duration

	// HeartbeatInterval is the period between liveness pings sent to the
	// native side.
	HeartbeatInterval time.Duration

	// MaxMessageSize bounds an inbound WebSocket message.
	MaxMessageSize int64

	// MaxEventQueue bounds the inbound event channel.
	MaxEventQueue int

	// MaxBatchHistory is how many recent batches are kept for resync
	// replay (see resync.go).
	MaxBatchHistory int

	// RenderBudget bounds how long a single scheduler Tick may spend
	// draining queued re-renders before yielding back to the event loop.
	RenderBudget time.Duration
}

// DefaultConfig returns a Config with the prior defaults, minus the
// fields for subsystems this package doesn't carry forward.
func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       5 * time.Minute,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		MaxEventQueue:     256,
		MaxBatchHistory:   100,
		RenderBudget:      8 * time.Millisecond,
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Limits bounds the manager's total session count, adapted from the
// teacher's SessionLimits (stripped of the per-IP and total-memory fields,
// which belonged to the persistence subsystem this package drops).
type Limits struct {
	// MaxSessions is the maximum number of concurrently tracked sessions.
	// 0 means unlimited.
	MaxSessions int
}

// DefaultLimits returns a permissive Limits.
func DefaultLimits() *Limits {
	return &Limits{MaxSessions: 0}
}
