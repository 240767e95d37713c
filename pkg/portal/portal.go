// Package portal is the anchor/portal manager (C10): anchors are named
// mount points declared by the native tree, portals redirect a subtree's
// children to mount under a named anchor instead of their lexical parent.
//
// No teacher package models this concept; it is new code, grounded on the
// same map-of-slices-guarded-by-mutex idiom pkg/vango and pkg/middleware
// both use for their own registries, and on pkg/vdom.KindPortal/PortalID/
// Anchor (the node shape pkg/reconcile already dispatches on) for the data
// it manages.
package portal

import (
	"log/slog"
	"sync"

	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/vdom"
)

type portalEntry struct {
	anchor   string
	children []bridge.ViewID
}

// Manager tracks anchor view ids and the portals currently targeting them,
// and computes the Attach ops needed to keep each anchor's child list in
// sync with its portals' declaration-order contents (orig §4.10).
//
// Manager implements pkg/reconcile.PortalManager.
type Manager struct {
	mu sync.Mutex

	anchors map[string]bridge.ViewID
	portals map[vdom.PortalID]portalEntry

	log *slog.Logger
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{
		anchors: make(map[string]bridge.ViewID),
		portals: make(map[vdom.PortalID]portalEntry),
		log:     slog.Default().With("component", "portal"),
	}
}

// RegisterAnchor records that a native view with the given anchor id has
// been created. Called from the commit pipeline's Create phase whenever a
// node carries an anchor prop.
func (m *Manager) RegisterAnchor(anchor string, id bridge.ViewID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.anchors[anchor] = id
}

// UnregisterAnchor removes an anchor when its native view is deleted.
func (m *Manager) UnregisterAnchor(anchor string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.anchors, anchor)
}

// Resolve returns the native view id the given anchor currently resolves
// to, satisfying pkg/reconcile.PortalManager. It does not record the
// portal's targeting — SetContents does that, since the reconciler calls
// Resolve once per mount/diff but the commit pipeline owns per-commit
// anchor recomputation.
func (m *Manager) Resolve(id vdom.PortalID, anchor string) (bridge.ViewID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	viewID, ok := m.anchors[anchor]
	return viewID, ok
}

// SetContents records that portal id now owns children (in declaration
// order) targeting anchor, replacing whatever it owned before. Call this
// once per commit for every portal present in the new tree.
func (m *Manager) SetContents(id vdom.PortalID, anchor string, children []bridge.ViewID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.portalTargetingSameAnchor(anchor, id); ok {
		m.log.Warn("duplicate portal target, last writer wins",
			"anchor", anchor, "existing_portal", existing, "new_portal", id)
	}

	m.portals[id] = portalEntry{anchor: anchor, children: append([]bridge.ViewID(nil), children...)}
}

// portalTargetingSameAnchor reports another portal id, if any, currently
// targeting anchor other than id itself — used to detect the concurrent-
// targeting case orig §4.10 calls a logged warning, not an error.
func (m *Manager) portalTargetingSameAnchor(anchor string, id vdom.PortalID) (vdom.PortalID, bool) {
	for otherID, entry := range m.portals {
		if otherID != id && entry.anchor == anchor {
			return otherID, true
		}
	}
	return "", false
}

// AnchorSnapshot is a read-only view of one portal's current binding, for
// the devtools inspector.
type AnchorSnapshot struct {
	Portal   vdom.PortalID
	Anchor   string
	Children []bridge.ViewID
}

// Snapshot returns the current anchor-id map and every portal's binding,
// copied out from under the lock. Read-only diagnostic use only — not
// called from any hot commit path.
func (m *Manager) Snapshot() (anchors map[string]bridge.ViewID, portals []AnchorSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	anchors = make(map[string]bridge.ViewID, len(m.anchors))
	for k, v := range m.anchors {
		anchors[k] = v
	}

	portals = make([]AnchorSnapshot, 0, len(m.portals))
	for id, entry := range m.portals {
		portals = append(portals, AnchorSnapshot{
			Portal:   id,
			Anchor:   entry.anchor,
			Children: append([]bridge.ViewID(nil), entry.children...),
		})
	}
	return anchors, portals
}

// RemovePortal drops a portal's recorded contents, e.g. when it unmounts.
func (m *Manager) RemovePortal(id vdom.PortalID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.portals, id)
}

// ReconcileAnchors recomputes every touched anchor's child list as the
// concatenation, in declaration order, of the portal contents currently
// targeting it, and returns the Attach ops needed to bring the anchor's
// native child list in line (orig §4.10). Declaration order here is the
// order of the portal ids in order; portals not listed in order contribute
// nothing, and anchors are processed in the order they are first reached.
func (m *Manager) ReconcileAnchors(order []vdom.PortalID) []bridge.Op {
	m.mu.Lock()
	defer m.mu.Unlock()

	byAnchor := make(map[string][]bridge.ViewID)
	seenAnchorOrder := make([]string, 0)
	for _, id := range order {
		entry, ok := m.portals[id]
		if !ok {
			continue
		}
		if _, exists := byAnchor[entry.anchor]; !exists {
			seenAnchorOrder = append(seenAnchorOrder, entry.anchor)
		}
		byAnchor[entry.anchor] = append(byAnchor[entry.anchor], entry.children...)
	}

	var ops []bridge.Op
	for _, anchor := range seenAnchorOrder {
		anchorID, ok := m.anchors[anchor]
		if !ok {
			continue
		}
		for index, childID := range byAnchor[anchor] {
			ops = append(ops, bridge.NewAttachOp(anchorID, childID, index))
		}
	}
	return ops
}
