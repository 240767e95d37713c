package engine

import (
	"log/slog"

	"github.com/loomkit/loom/pkg/errs"
)

// EffectPhase orders when an effect runs relative to layout (orig §4.2,
// §4.7 step 7): normal effects after layout settles, layout effects before
// the frame is presented, insertion effects once per tree on first mount.
type EffectPhase uint8

const (
	PhaseNormal EffectPhase = iota
	PhaseLayout
	PhaseInsertion
)

// Effect is a scheduled side effect with an explicit dependency array,
// replacing the prior automatic signal-read tracking (pkg/vango/effect.go's
// sources []*signalBase) with React-style structural deps comparison, per
// orig §4.2. Effects are never retried: a panicking run or cleanup is
// recovered, logged as errs.EffectThrew, and the effect is still marked ran.
type Effect struct {
	Phase EffectPhase
	Fn    func() func()

	deps     []any
	prevDeps []any
	hasRun   bool
	cleanup  func()
}

// NewEffect creates an effect bound to deps. fn may return a cleanup
// function, run before the next invocation of fn or on dispose.
func NewEffect(phase EffectPhase, fn func() func(), deps []any) *Effect {
	return &Effect{Phase: phase, Fn: fn, deps: deps}
}

// ShouldRun reports whether deps changed since the last run (or this is the
// first run). A nil deps array always runs, matching React's "no deps array
// means every render" convention rather than "empty array means never again"
// — callers that want run-once pass an empty, non-nil slice.
func (e *Effect) ShouldRun() bool {
	if !e.hasRun {
		return true
	}
	if e.deps == nil {
		return true
	}
	if len(e.deps) != len(e.prevDeps) {
		return true
	}
	for i := range e.deps {
		if e.deps[i] != e.prevDeps[i] {
			return true
		}
	}
	return false
}

// Run first invokes any cleanup left by the prior run, then executes the
// effect, recovering a panic in either into a logged, non-fatal EffectThrew.
//
// Run is exported so pkg/commit can drain and run the phase buckets it
// pulls from Frame.DrainPending without this package needing to know
// anything about commit ordering.
func (e *Effect) Run() {
	e.run()
}

func (e *Effect) run() {
	if e.cleanup != nil {
		e.runCleanup()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("effect panicked", "error", errs.New(errs.EffectThrew, "%v", r), "phase", e.Phase)
		}
	}()

	// Marked ran before fn executes, so a panicking run still counts.
	e.hasRun = true
	e.prevDeps = e.deps
	e.cleanup = e.Fn()
}

// runCleanup invokes the effect's prior cleanup, recovering any panic the
// same way run does.
func (e *Effect) runCleanup() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("effect cleanup panicked", "error", errs.New(errs.EffectThrew, "cleanup: %v", r), "phase", e.Phase)
		}
	}()
	fn := e.cleanup
	e.cleanup = nil
	fn()
}

// dispose runs any outstanding cleanup once, on frame teardown.
func (e *Effect) dispose() {
	if e.cleanup != nil {
		e.runCleanup()
	}
}

// SetDeps updates the effect's dependency array ahead of the next ShouldRun
// check; used by hooks.go's UseEffect family to hand in the render's fresh
// deps before deciding whether to schedule a re-run.
func (e *Effect) SetDeps(deps []any) {
	e.deps = deps
}
