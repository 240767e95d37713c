// Package schedule is the cooperative single-threaded update scheduler
// (C6): five priority queues drained by a frame-tick budget, with priority
// derived from an explicit component capability or a type-name heuristic.
//
// Grounded on the prior pkg/server/session.go event loop: its
// renderCh/dispatchCh buffered channels and select-with-default
// "already scheduled, drop the duplicate signal" pattern are the direct
// ancestor of this package's per-priority dedup-by-frame-id queues,
// generalized from one render signal into five priority tiers drained in
// order within a frame budget, and from Dispatch(fn)'s single queue into
// RequestRender's priority-routed enqueue.
package schedule

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Priority orders scheduled updates (orig §4.6). Lower values run first.
type Priority uint8

const (
	Immediate Priority = iota
	High
	Normal
	Low
	Idle
)

// Delay is each priority's nominal scheduling delay, used only for
// documentation/observability — the drain loop itself is budget-driven,
// not delay-driven.
func (p Priority) Delay() time.Duration {
	switch p {
	case Immediate:
		return 0
	case High:
		return time.Millisecond
	case Normal:
		return 2 * time.Millisecond
	case Low:
		return 5 * time.Millisecond
	default:
		return 16 * time.Millisecond
	}
}

func (p Priority) String() string {
	switch p {
	case Immediate:
		return "Immediate"
	case High:
		return "High"
	case Normal:
		return "Normal"
	case Low:
		return "Low"
	case Idle:
		return "Idle"
	default:
		return "Unknown"
	}
}

// PriorityFor derives a priority from an explicit capability (if declared)
// or falls back to the type-name heuristic (orig §4.6 rule 2).
func PriorityFor(componentType string, explicit *Priority) Priority {
	if explicit != nil {
		return *explicit
	}
	lower := strings.ToLower(componentType)
	switch {
	case containsAny(lower, "input", "textfield", "scroll"):
		return Immediate
	case containsAny(lower, "button", "modal", "nav"):
		return High
	case strings.Contains(lower, "debug"):
		return Idle
	default:
		return Normal
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Update is one scheduled re-render request.
type Update struct {
	FrameID  uint64
	Priority Priority
	Run      func()
}

// Scheduler holds five priority queues and drains them within a per-tick
// time budget. It is not safe for concurrent RequestRender calls from
// multiple goroutines racing a Tick — orig §5's single render thread owns
// both.
type Scheduler struct {
	mu     sync.Mutex
	queues [5][]Update
	queued map[uint64]bool // frame ids already enqueued this tick, for the
	// teacher's "already scheduled, drop the duplicate" collapse rule

	budget time.Duration
	log    *slog.Logger

	// live reports whether a frame id still corresponds to a live
	// component instance; a pending update for a disposed frame is
	// discarded instead of run (orig §5 cancellation).
	live func(frameID uint64) bool
}

// New creates a Scheduler with the given per-tick frame budget. live
// reports whether a frame id is still a live component instance; it may be
// nil, in which case no updates are ever cancelled.
func New(budget time.Duration, live func(frameID uint64) bool) *Scheduler {
	return &Scheduler{
		queued: make(map[uint64]bool),
		budget: budget,
		log:    slog.Default().With("component", "schedule"),
		live:   live,
	}
}

// RequestRender enqueues a render of frameID at a priority derived from
// componentType, collapsing multiple requests for the same frame within a
// tick into one (orig §4.6: "multiple updates to same component per tick
// collapse to one render").
func (s *Scheduler) RequestRender(frameID uint64, componentType string, run func()) {
	s.RequestRenderAt(frameID, PriorityFor(componentType, nil), run)
}

// RequestRenderAt is RequestRender with an explicit priority, for callers
// that already know a component's declared priority capability.
func (s *Scheduler) RequestRenderAt(frameID uint64, p Priority, run func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queued[frameID] {
		return
	}
	s.queued[frameID] = true
	s.queues[p] = append(s.queues[p], Update{FrameID: frameID, Priority: p, Run: run})
}

// Pending reports whether any queue has work.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.queues {
		if len(q) > 0 {
			return true
		}
	}
	return false
}

// QueueDepths reports the number of updates currently queued at each
// priority, indexed by Priority (Immediate..Idle). Exposed for the
// devtools inspector; not used by the scheduler itself.
func (s *Scheduler) QueueDepths() [5]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var depths [5]int
	for p, q := range s.queues {
		depths[p] = len(q)
	}
	return depths
}

// Cancel drops any pending update for frameID, e.g. when its component is
// disposed before the update runs.
func (s *Scheduler) Cancel(frameID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queued, frameID)
	for p := range s.queues {
		s.queues[p] = removeFrame(s.queues[p], frameID)
	}
}

func removeFrame(q []Update, frameID uint64) []Update {
	out := q[:0]
	for _, u := range q {
		if u.FrameID != frameID {
			out = append(out, u)
		}
	}
	return out
}

// Tick drains the queues per orig §4.6's frame model: Immediate runs to
// completion regardless of budget, then High/Normal/Low/Idle run while
// budget remains. It returns true if any queue still has work when the
// budget runs out, meaning the caller should schedule another Tick.
func (s *Scheduler) Tick() (more bool) {
	deadline := time.Now().Add(s.budget)

	s.drainFully(Immediate)

	for _, p := range []Priority{High, Normal, Low, Idle} {
		if !s.drainWithinBudget(p, deadline) {
			return s.Pending()
		}
	}
	return s.Pending()
}

// drainFully runs every update queued at priority p, ignoring the budget —
// Immediate updates must never be deferred.
func (s *Scheduler) drainFully(p Priority) {
	for {
		u, ok := s.pop(p)
		if !ok {
			return
		}
		s.run(u)
	}
}

// drainWithinBudget runs updates queued at priority p until the queue is
// empty or the deadline passes, returning false if it stopped early.
func (s *Scheduler) drainWithinBudget(p Priority, deadline time.Time) bool {
	for {
		if time.Now().After(deadline) {
			return false
		}
		u, ok := s.pop(p)
		if !ok {
			return true
		}
		s.run(u)
	}
}

func (s *Scheduler) pop(p Priority) (Update, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queues[p]
	if len(q) == 0 {
		return Update{}, false
	}
	u := q[0]
	s.queues[p] = q[1:]
	delete(s.queued, u.FrameID)
	return u, true
}

func (s *Scheduler) run(u Update) {
	if s.live != nil && !s.live(u.FrameID) {
		s.log.Debug("discarding update for destroyed frame", "frame_id", u.FrameID)
		return
	}
	u.Run()
}
