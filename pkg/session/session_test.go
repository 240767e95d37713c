package session

import (
	"log/slog"
	"testing"

	"github.com/loomkit/loom/pkg/vdom"
)

func TestGenerateSessionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateSessionID()
		if len(id) != 32 {
			t.Fatalf("session id length = %d, want 32", len(id))
		}
		if seen[id] {
			t.Fatal("session id should be unique")
		}
		seen[id] = true
	}
}

func newTestSession() *Session {
	return New(nil, DefaultConfig(), slog.Default())
}

func TestNewSessionInitializesState(t *testing.T) {
	s := newTestSession()
	if s.ID == "" {
		t.Error("expected a non-empty session ID")
	}
	if s.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if s.pipeline == nil || s.scheduler == nil || s.reconciler == nil {
		t.Error("expected pipeline, scheduler, and reconciler to be initialized")
	}
}

func TestMountWithoutConnectionReportsError(t *testing.T) {
	s := newTestSession()
	err := s.Mount(func() *vdom.VNode {
		return vdom.Element("box", nil)
	})
	if err == nil {
		t.Fatal("expected Mount to report an error when CommitBatch has no connection")
	}
	if s.tree != nil {
		t.Error("tree should not be updated on a rejected commit")
	}
}

func TestQueueEventFullReturnsError(t *testing.T) {
	s := New(nil, &Config{MaxEventQueue: 1, MaxBatchHistory: 10}, slog.Default())
	if err := s.QueueEvent(nil); err != nil {
		t.Fatalf("first QueueEvent: unexpected error %v", err)
	}
	if err := s.QueueEvent(nil); err != ErrEventQueueFull {
		t.Fatalf("second QueueEvent error = %v, want ErrEventQueueFull", err)
	}
}

func TestDispatchFullReturnsError(t *testing.T) {
	s := New(nil, &Config{MaxEventQueue: 1, MaxBatchHistory: 10}, slog.Default())
	if err := s.Dispatch(func() {}); err != nil {
		t.Fatalf("first Dispatch: unexpected error %v", err)
	}
	if err := s.Dispatch(func() {}); err != ErrEventQueueFull {
		t.Fatalf("second Dispatch error = %v, want ErrEventQueueFull", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := newTestSession()
	s.Close()
	s.Close() // must not panic or double-close s.done

	select {
	case <-s.Done():
	default:
		t.Error("expected Done() to be closed after Close()")
	}
	if !s.IsClosed() {
		t.Error("expected IsClosed() to report true")
	}
}

func TestCloseDefersFinalizeUntilWorkDrains(t *testing.T) {
	s := newTestSession()
	s.beginWork()
	s.Close()

	if !s.IsClosed() {
		t.Fatal("expected IsClosed() to report true immediately after Close()")
	}
	if s.conn != nil {
		t.Error("expected conn to be nil or closed")
	}

	// finalizeClose must tolerate a session that never mounted a root.
	s.endWork()
}
