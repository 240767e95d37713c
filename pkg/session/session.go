package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/commit"
	"github.com/loomkit/loom/pkg/engine"
	"github.com/loomkit/loom/pkg/errs"
	"github.com/loomkit/loom/pkg/metrics"
	"github.com/loomkit/loom/pkg/portal"
	"github.com/loomkit/loom/pkg/reconcile"
	"github.com/loomkit/loom/pkg/schedule"
	"github.com/loomkit/loom/pkg/trace"
	"github.com/loomkit/loom/pkg/vdom"
)

// Session represents a single bridge connection and the component tree
// mounted against it. Grounded on the prior Session in
// pkg/server/session.go: the connection/close-lifecycle fields and the
// beginWork/endWork/beginClose/finalizeClose split carry over unchanged;
// the rendering fields (root frame, reconciler, commit pipeline, scheduler)
// replace the prior Owner/ComponentInstance tree with pkg/engine +
// pkg/commit's generalized equivalents.
type Session struct {
	ID         string
	CreatedAt  time.Time
	lastActive atomic.Int64 // UnixNano, read/written via UpdateLastActive/LastActive

	conn   *websocket.Conn
	mu     sync.Mutex // protects conn writes
	closed atomic.Bool

	sendSeq atomic.Uint64
	ackSeq  atomic.Uint64
	history *BatchHistory

	renderFn    func() *vdom.VNode
	root        *engine.Frame
	tree        *vdom.VNode
	viewIDs     *vdom.ViewIDAllocator
	reconciler  *reconcile.Reconciler
	portals     *portal.Manager
	pipeline    *commit.Pipeline
	scheduler   *schedule.Scheduler
	portalOrder []vdom.PortalID

	events     chan *bridge.Event
	dispatchCh chan func()
	renderCh   chan struct{}
	done       chan struct{}

	inFlight     atomic.Int32
	finalizeOnce sync.Once

	data   map[string]any
	dataMu sync.RWMutex

	eventCount atomic.Uint64
	bytesSent  atomic.Uint64
	bytesRecv  atomic.Uint64

	metrics *metrics.Recorder
	tracer  *trace.Tracer

	config *Config
	logger *slog.Logger
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// New creates a Session bound to conn. Call Mount to attach a root
// component and send its initial batch.
func New(conn *websocket.Conn, config *Config, logger *slog.Logger) *Session {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	now := time.Now()
	id := generateSessionID()

	viewIDs := vdom.NewViewIDAllocator()
	portals := portal.New()
	reconciler := reconcile.New(viewIDs, reconcile.WithPortals(portals))

	s := &Session{
		ID:         id,
		CreatedAt:  now,
		conn:       conn,
		history:    NewBatchHistory(config.MaxBatchHistory),
		viewIDs:    viewIDs,
		reconciler: reconciler,
		portals:    portals,
		events:     make(chan *bridge.Event, config.MaxEventQueue),
		dispatchCh: make(chan func(), config.MaxEventQueue),
		renderCh:   make(chan struct{}, 1),
		done:       make(chan struct{}),
		data:       make(map[string]any),
		config:     config,
		logger:     logger.With("session_id", id),
	}
	s.lastActive.Store(now.UnixNano())

	s.pipeline = commit.New(reconciler, portals, s, nil)
	s.scheduler = schedule.New(config.RenderBudget, func(frameID uint64) bool {
		return s.root != nil && s.root.ID() == frameID && !s.IsClosed()
	})

	return s
}

// SetMetrics attaches a Prometheus recorder and records the session as
// opened. nil disables instrumentation; Recorder's methods are nil-receiver
// safe so this can be skipped entirely by callers that don't want metrics.
func (s *Session) SetMetrics(m *metrics.Recorder) {
	s.metrics = m
	s.metrics.SessionOpened()
}

// SetTracer attaches an OpenTelemetry tracer. nil disables tracing.
func (s *Session) SetTracer(t *trace.Tracer) { s.tracer = t }

// Mount attaches render as the session's root component and performs the
// initial mount commit.
func (s *Session) Mount(render func() *vdom.VNode) error {
	s.renderFn = render
	s.root = engine.NewFrame(nil)
	s.root.RequestUpdate = s.scheduleRender
	return s.commitOnce()
}

// scheduleRender is injected as the root frame's RequestUpdate: a state
// update anywhere in the tree schedules a re-render and wakes the event
// loop, mirroring the prior signal-write -> markDirty -> renderCh path.
func (s *Session) scheduleRender() {
	s.scheduler.RequestRender(s.root.ID(), "root", func() { s.commitOnce() })
	select {
	case s.renderCh <- struct{}{}:
	default:
	}
}

// commitOnce re-runs the root render function and drives one pass through
// the commit pipeline. A panicking render is recovered into errs.RenderThrew
// and does not take down the session, matching orig §8's error-boundary
// guidance for uncaught render failures.
func (s *Session) commitOnce() error {
	if s.IsClosed() {
		return nil
	}

	span := s.tracer.StartCommit(context.Background(), s.ID)

	var next *vdom.VNode
	renderErr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errs.New(errs.RenderThrew, "panic: %v\n%s", r, debug.Stack())
			}
		}()
		return engine.Render(s.root, func() { next = s.renderFn() })
	}()
	if renderErr != nil {
		s.logger.Error("render failed", "error", renderErr)
		span.End(renderErr)
		return renderErr
	}

	allQueuesEmpty := !s.scheduler.Pending()
	res, err := s.pipeline.Commit(s.tree, next, bridge.ViewID(0), 0, s.portalOrder, []*engine.Frame{s.root}, allQueuesEmpty)
	if err != nil {
		s.logger.Warn("commit failed", "error", err)
		span.End(err)
		return err
	}
	if res.Accepted {
		s.tree = next
	}
	span.SetOpCount(len(res.Ops))
	span.End(nil)
	return nil
}

// drainRenders ticks the scheduler until its render budget is exhausted or
// every queued update has run, then re-checks for a stable commit (the
// insertion-effect latch needs a pass where Pending() is already false).
func (s *Session) drainRenders() {
	for s.scheduler.Tick() {
	}
	if s.root != nil && !s.scheduler.Pending() {
		s.commitOnce()
	}
}

// SetPortalOrder sets the deterministic anchor-resolution order passed to
// the commit pipeline on every subsequent commit.
func (s *Session) SetPortalOrder(order []vdom.PortalID) {
	s.portalOrder = order
}

// beginWork/endWork bracket any unit of session work (a render, a handler
// dispatch) so Close can tell whether it's safe to tear down the component
// tree. Grounded on the prior identically named guard in
// pkg/server/session.go, which exists to stop shutdown from racing a render.
func (s *Session) beginWork() {
	s.inFlight.Add(1)
}

func (s *Session) endWork() {
	if s.inFlight.Add(-1) == 0 && s.closed.Load() {
		s.finalizeClose()
	}
}

// Close begins session shutdown: it signals the IO loops to stop and closes
// the connection immediately, but defers disposing the component tree until
// no session work is in flight.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)

	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()

	if s.inFlight.Load() == 0 {
		s.finalizeClose()
	}
}

func (s *Session) finalizeClose() {
	s.finalizeOnce.Do(func() {
		nodeCount := len(vdom.CollectViewIDs(s.tree))
		if s.root != nil {
			s.root.Dispose()
		}
		s.metrics.SessionClosed(nodeCount)
		s.logger.Info("session finalized")
	})
}

// IsClosed reports whether Close has been called.
func (s *Session) IsClosed() bool { return s.closed.Load() }

// Done returns a channel closed when the session begins shutdown.
func (s *Session) Done() <-chan struct{} { return s.done }

// UpdateLastActive records the current time as the session's last activity.
func (s *Session) UpdateLastActive() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the session's last recorded activity.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// QueueEvent enqueues a decoded inbound event for processing on the event
// loop. Returns ErrEventQueueFull if the queue is saturated, matching the
// teacher's backpressure behavior (drop and tell the sender, rather than
// block the read loop).
func (s *Session) QueueEvent(ev *bridge.Event) error {
	select {
	case s.events <- ev:
		s.eventCount.Add(1)
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Dispatch queues fn to run on the event loop, the session-side analogue of
// the prior ctx.Dispatch: used by callbacks that fire outside the event
// loop (e.g. a goroutine completing background work) to safely touch state
// that hooks and effects assume is only ever touched on the render thread.
func (s *Session) Dispatch(fn func()) error {
	select {
	case s.dispatchCh <- fn:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// handleEvent dispatches a decoded event to its bound handler and flushes
// any renders the handler scheduled, recovering a panicking handler into a
// logged HandlerError rather than letting it reach the event loop.
func (s *Session) handleEvent(ev *bridge.Event) {
	s.beginWork()
	defer s.endWork()

	start := time.Now()
	span := s.tracer.StartEvent(context.Background(), s.ID, ev.Name, int64(ev.ViewID))

	var handlerErr error
	defer func() {
		if r := recover(); r != nil {
			herr := &HandlerError{SessionID: s.ID, ViewID: int64(ev.ViewID), EventName: ev.Name, Panic: r, Stack: debug.Stack()}
			s.logger.Error("handler panicked", "error", herr)
			handlerErr = herr
		}
		span.End(handlerErr)
		s.metrics.RecordEvent(ev.Name, time.Since(start), handlerErr)
	}()

	dispatchEvent(s.tree, ev)
	s.drainRenders()
}

// executeDispatch runs fn with the same panic-isolation as handleEvent.
func (s *Session) executeDispatch(fn func()) {
	s.beginWork()
	defer s.endWork()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatched function panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	fn()
	s.drainRenders()
}

// Tree returns the currently committed VNode tree, for the devtools
// inspector. Callers must not mutate the returned tree.
func (s *Session) Tree() *vdom.VNode { return s.tree }

// QueueDepths reports the scheduler's per-priority pending update counts,
// for the devtools inspector.
func (s *Session) QueueDepths() [5]int { return s.scheduler.QueueDepths() }

// Portals returns the session's portal manager, for the devtools inspector
// to read anchor/portal bindings via Manager.Snapshot.
func (s *Session) Portals() *portal.Manager { return s.portals }

// Set stores a value in the session's general-purpose data map.
func (s *Session) Set(key string, value any) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.data[key] = value
}

// Get retrieves a value from the session's general-purpose data map.
func (s *Session) Get(key string) (any, bool) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Delete removes a value from the session's general-purpose data map.
func (s *Session) Delete(key string) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	delete(s.data, key)
}
