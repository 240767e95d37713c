// Package loomtest provides testing helpers for driving the reconciler and
// commit pipeline directly, without a websocket connection.
//
// Grounded on the prior pkg/vtest, a component-render test harness
// built around a mock session and fluent ExpectContains-style assertions
// on rendered HTML. This package keeps the same shape — a mock transport
// plus fluent assertions — but asserts on bridge.Op batches instead of
// HTML strings, since this engine's render output is a mutation-op patch
// list, not a DOM string.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := loomtest.New()
//	    err := h.Mount(func() *vdom.VNode {
//	        return vdom.Element("label", vdom.Props{"text": "0"})
//	    })
//	    if err != nil {
//	        t.Fatalf("mount: %v", err)
//	    }
//	    loomtest.ExpectOpKind(t, h.Bridge.LastBatch(), bridge.OpCreate)
//	}
package loomtest
