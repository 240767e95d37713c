package session

import (
	"log/slog"

	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/vdom"
)

// Handler is the internal event handler type every supported prop-handler
// signature is normalized to, adapted from the prior wrapHandler in
// pkg/server/handler.go. The DOM-specific event structs that file dispatches
// to (MouseEvent, KeyboardEvent, FormData, ...) don't apply here: the bridge
// carries one open-ended payload map per §6, since the native event taxonomy
// is host-defined rather than enumerated by this package.
type Handler func(payload map[string]any)

// wrapHandler normalizes a prop value declared under an "on..." key to a
// Handler. Unrecognized types log a warning and become a no-op, matching the
// teacher's production (non-panic) fallback path.
func wrapHandler(value any) Handler {
	switch h := value.(type) {
	case func():
		return func(map[string]any) { h() }
	case func(map[string]any):
		return h
	case Handler:
		return h
	default:
		slog.Warn("unrecognized event handler prop type, handler will not be called", "type", value)
		return func(map[string]any) {}
	}
}

// dispatchEvent looks up the handler for (ev.ViewID, ev.Name) in tree's live
// props and invokes it. Handlers are read straight out of the current
// render's Props map rather than kept in a side registry, since a fresh
// closure is rebound into Props on every render anyway (orig §4.7's
// BindEvent/UnbindEvent only tells the native side whether a handler exists,
// not what it closes over).
func dispatchEvent(tree *vdom.VNode, ev *bridge.Event) bool {
	node := vdom.FindByViewID(tree, vdom.ViewID(ev.ViewID))
	if node == nil || node.Props == nil {
		return false
	}
	value, ok := node.Props[ev.Name]
	if !ok {
		return false
	}
	wrapHandler(value)(ev.Payload)
	return true
}
