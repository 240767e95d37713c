package engine

import (
	"log/slog"
	"sync/atomic"

	"github.com/loomkit/loom/pkg/vdom"
)

// Scheduler is the subset of pkg/schedule.Scheduler the engine needs: a way
// to request a re-render of a frame at some priority. Defined here, not
// imported, so pkg/engine has no dependency on pkg/schedule;
// *schedule.Scheduler satisfies it.
type Scheduler interface {
	RequestRender(frameID uint64, componentType string, run func())
}

// Engine is the single explicit, passed-by-reference runtime context that
// replaces the prior package-level globals (pkg/vango's globalMetrics,
// getCurrentOwner thread-local accessor) per orig §9's design note: "one
// passed-by-reference context instead of global mutable singletons." An
// Engine owns the view id allocator, the root frame, and a monotonic system-
// change version counter; the scheduler and extension registry are supplied
// by their owning packages at construction to keep this package's import
// graph a leaf.
type Engine struct {
	Config Config
	Log    *slog.Logger

	ViewIDs *vdom.ViewIDAllocator
	Root    *Frame

	Scheduler Scheduler

	systemVersion atomic.Int64
}

// New creates an Engine, its root frame, and its view id allocator.
func New(cfg Config, sched Scheduler) *Engine {
	e := &Engine{
		Config:    cfg,
		Log:       slog.Default().With("component", "engine"),
		ViewIDs:   vdom.NewViewIDAllocator(),
		Scheduler: sched,
	}
	e.Root = NewFrame(nil)
	return e
}

// NewFrame allocates a frame under the engine's tree, wiring its
// RequestUpdate callback through the engine's Scheduler so UseState/UseStore
// setters can request a re-render without this package knowing about
// priorities or queues. render is handed to Scheduler.RequestRender as the
// update to run when the scheduler gets to it.
func (e *Engine) NewFrame(parent *Frame, typeName string, render func()) *Frame {
	f := NewFrame(parent)
	if e.Scheduler != nil {
		f.RequestUpdate = func() {
			e.Scheduler.RequestRender(f.ID(), typeName, render)
		}
	}
	return f
}

// BumpSystemVersion advances the process-wide system-change version counter
// (bridge.SystemChange's Version field source of truth) and returns the new
// value.
func (e *Engine) BumpSystemVersion() int64 {
	return e.systemVersion.Add(1)
}

// SystemVersion returns the current system-change version without advancing it.
func (e *Engine) SystemVersion() int64 {
	return e.systemVersion.Load()
}

// Dispose tears down the engine's whole frame tree.
func (e *Engine) Dispose() {
	e.Root.Dispose()
}
