// Package commit is the seven-phase commit pipeline (C7): it turns one
// reconciler diff pass into an applied batch of mutation ops, then drains
// the affected frames' effect queues in the normal/layout/insertion order
// orig §4.7 step 7 specifies.
//
// Grounded on the prior pkg/server/session.go flush(): its bounded
// maxCycles render-then-effects loop and RunPendingEffects/HasPendingEffects
// re-check are the direct ancestor of this pipeline's phase ordering and
// cooperative re-tick behavior, generalized from a single DOM-patch list
// into the seven named phases and the normal/layout/insertion effect
// sub-ordering orig §4.7 step 7 adds.
package commit

import (
	"log/slog"
	"sort"

	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/engine"
	"github.com/loomkit/loom/pkg/errs"
	"github.com/loomkit/loom/pkg/portal"
	"github.com/loomkit/loom/pkg/reconcile"
	"github.com/loomkit/loom/pkg/vdom"
)

// Sender is the outbound half of the bridge contract (C8) a Pipeline drives.
type Sender interface {
	BeginBatch() error
	CommitBatch(ops []bridge.Op) (bool, error)
}

// LayoutRunner triggers a single layout pass on the external layout engine
// for the whole tree (orig §4.7 step 6: one call, not per-view).
type LayoutRunner interface {
	RunLayout() error
}

// Pipeline drives one diff pass's ops through the seven ordered phases and
// the effect sub-ordering that follows them.
type Pipeline struct {
	Reconciler *reconcile.Reconciler
	Portals    *portal.Manager
	Sender     Sender
	Layout     LayoutRunner
	Log        *slog.Logger

	// stable gates insertion effects: they run once, the first time a
	// commit finds every scheduler queue empty (orig §9 Open Question 4's
	// tree-level latch), not on every commit.
	stable bool
}

// New creates a Pipeline. portals and layout may be nil if the tree being
// committed has no portals or no external layout engine to drive.
func New(r *reconcile.Reconciler, portals *portal.Manager, sender Sender, layout LayoutRunner) *Pipeline {
	return &Pipeline{
		Reconciler: r,
		Portals:    portals,
		Sender:     sender,
		Layout:     layout,
		Log:        slog.Default().With("component", "commit"),
	}
}

// Result reports what a Commit call did.
type Result struct {
	Ops      []bridge.Op
	Accepted bool
}

// Commit runs orig §4.7 phases 1-6 (parse through layout) synchronously
// against one diff of old→next, then phase 7 (effects) against
// touchedFrames — the frames whose Render produced next, directly or as
// descendants. allQueuesEmpty is the scheduler's report of whether any
// priority queue still has work; when true, insertion effects are allowed
// to fire on this commit (the tree-level latch arms exactly once).
func (p *Pipeline) Commit(old, next *vdom.VNode, parent bridge.ViewID, index int, portalOrder []vdom.PortalID, touchedFrames []*engine.Frame, allQueuesEmpty bool) (Result, error) {
	ops := p.Reconciler.Diff(old, next, parent, index)

	ops = dedupeOps(ops)
	if err := validateReferentialIntegrity(old, ops); err != nil {
		return Result{}, err
	}
	ops = orderByPhase(ops)

	if p.Portals != nil && len(portalOrder) > 0 {
		ops = append(ops, p.Portals.ReconcileAnchors(portalOrder)...)
	}

	if err := p.Sender.BeginBatch(); err != nil {
		return Result{}, errs.New(errs.BridgeRejected, "begin_batch: %v", err).Wrap(err)
	}
	accepted, err := p.Sender.CommitBatch(ops)
	if err != nil || !accepted {
		// Atomicity (orig §4.7): the native side may retain a partially
		// modified tree; the engine does not roll back its own bookkeeping
		// here, it reports failure so the caller can compensate with a
		// remount on the next pass.
		if err == nil {
			err = errs.New(errs.BridgeRejected, "native side rejected batch")
		}
		p.Log.Warn("commit batch rejected", "error", err, "op_count", len(ops))
		return Result{Ops: ops, Accepted: false}, err
	}

	if p.Layout != nil {
		if lerr := p.Layout.RunLayout(); lerr != nil {
			p.Log.Error("layout pass failed", "error", lerr)
		}
	}

	p.runEffects(touchedFrames, allQueuesEmpty)

	return Result{Ops: ops, Accepted: true}, nil
}

// dedupeOps removes exact duplicate ops, keeping the first occurrence, per
// orig §4.7 phase 1's "collect ops, deduplicate."
func dedupeOps(ops []bridge.Op) []bridge.Op {
	seen := make(map[bridge.Op]bool, len(ops))
	out := make([]bridge.Op, 0, len(ops))
	for _, op := range ops {
		if seen[op] {
			continue
		}
		seen[op] = true
		out = append(out, op)
	}
	return out
}

// validateReferentialIntegrity checks that every Attach op's child refers
// to a view that is live by the end of this batch: either it already
// existed in old, or it is created by a Create op in ops, and it is not
// then deleted within the same batch (orig §4.7 phase 1).
func validateReferentialIntegrity(old *vdom.VNode, ops []bridge.Op) error {
	live := make(map[bridge.ViewID]bool)
	for id := range vdom.CollectViewIDs(old) {
		live[bridge.ViewID(id)] = true
	}
	for _, op := range ops {
		switch op.Kind {
		case bridge.OpCreate:
			live[op.ViewID] = true
		case bridge.OpDelete:
			delete(live, op.ViewID)
		}
	}
	for _, op := range ops {
		if op.Kind == bridge.OpAttach && !live[op.ChildID] {
			return errs.New(errs.BridgeRejected,
				"Attach references child view %d with no live Create", op.ChildID)
		}
	}
	return nil
}

// phaseRank orders ops into orig §4.7's phases 2-5: view lifecycle
// (Delete, then Create), Update, Attach, then the two event ops.
func phaseRank(k bridge.OpKind) int {
	switch k {
	case bridge.OpDelete:
		return 0
	case bridge.OpCreate:
		return 1
	case bridge.OpUpdate:
		return 2
	case bridge.OpAttach:
		return 3
	case bridge.OpBindEvent, bridge.OpUnbindEvent:
		return 4
	default:
		return 5
	}
}

// orderByPhase stable-sorts ops by phase while preserving the reconciler's
// relative (parent-before-child) order within each phase.
func orderByPhase(ops []bridge.Op) []bridge.Op {
	out := make([]bridge.Op, len(ops))
	copy(out, ops)
	sort.SliceStable(out, func(i, j int) bool {
		return phaseRank(out[i].Kind) < phaseRank(out[j].Kind)
	})
	return out
}

// runEffects drains each touched frame's normal effects, then every
// touched frame's layout effects, then — only once, on the first commit
// where allQueuesEmpty is true — insertion effects across the whole
// touched set (orig §4.7 step 7).
func (p *Pipeline) runEffects(touchedFrames []*engine.Frame, allQueuesEmpty bool) {
	for _, f := range touchedFrames {
		for _, e := range f.DrainPending(engine.PhaseNormal) {
			e.Run()
		}
	}
	for _, f := range touchedFrames {
		for _, e := range f.DrainPending(engine.PhaseLayout) {
			e.Run()
		}
	}
	if !p.stable && allQueuesEmpty {
		p.stable = true
		for _, f := range touchedFrames {
			for _, e := range f.DrainPending(engine.PhaseInsertion) {
				e.Run()
			}
		}
	}
}
