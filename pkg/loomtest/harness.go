package loomtest

import (
	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/commit"
	"github.com/loomkit/loom/pkg/engine"
	"github.com/loomkit/loom/pkg/portal"
	"github.com/loomkit/loom/pkg/reconcile"
	"github.com/loomkit/loom/pkg/vdom"
)

// Harness drives one root component through the hook runtime, reconciler,
// and commit pipeline exactly as pkg/session does, but against a FakeBridge
// instead of a websocket connection. Use it to assert on the exact ops a
// mount or update produces.
type Harness struct {
	Bridge  *FakeBridge
	Portals *portal.Manager

	root       *engine.Frame
	tree       *vdom.VNode
	viewIDs    *vdom.ViewIDAllocator
	reconciler *reconcile.Reconciler
	pipeline   *commit.Pipeline
}

// New creates a Harness with a fresh FakeBridge, portal manager, and
// reconciler, matching the wiring pkg/session.New performs against a real
// connection.
func New() *Harness {
	viewIDs := vdom.NewViewIDAllocator()
	portals := portal.New()
	reconciler := reconcile.New(viewIDs, reconcile.WithPortals(portals))
	bridgeFake := NewFakeBridge()

	return &Harness{
		Bridge:     bridgeFake,
		Portals:    portals,
		viewIDs:    viewIDs,
		reconciler: reconciler,
		pipeline:   commit.New(reconciler, portals, bridgeFake, nil),
	}
}

// Mount renders render for the first time and commits the result. Call
// Update for every subsequent render of the same root.
func (h *Harness) Mount(render func() *vdom.VNode) error {
	h.root = engine.NewFrame(nil)
	h.root.RequestUpdate = func() {}
	return h.commit(render)
}

// Update re-renders render against the previously mounted tree and commits
// the diff. Panics if called before Mount.
func (h *Harness) Update(render func() *vdom.VNode) error {
	if h.root == nil {
		panic("loomtest: Update called before Mount")
	}
	return h.commit(render)
}

func (h *Harness) commit(render func() *vdom.VNode) error {
	var next *vdom.VNode
	if err := engine.Render(h.root, func() { next = render() }); err != nil {
		return err
	}

	res, err := h.pipeline.Commit(h.tree, next, bridge.ViewID(0), 0, nil, []*engine.Frame{h.root}, true)
	if err != nil {
		return err
	}
	if res.Accepted {
		h.tree = next
	}
	return nil
}

// Tree returns the currently committed tree.
func (h *Harness) Tree() *vdom.VNode { return h.tree }

// Dispose tears down the mounted root's hooks and effect cleanups.
func (h *Harness) Dispose() {
	if h.root != nil {
		h.root.Dispose()
	}
}
