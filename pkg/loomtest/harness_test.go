package loomtest_test

import (
	"testing"

	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/loomtest"
	"github.com/loomkit/loom/pkg/vdom"
)

func TestMountProducesCreateOps(t *testing.T) {
	h := loomtest.New()
	err := h.Mount(func() *vdom.VNode {
		return vdom.Element("box", vdom.Props{"text": "hello"})
	})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	ops := h.Bridge.LastBatch()
	loomtest.ExpectOpKind(t, ops, bridge.OpCreate)
	loomtest.ExpectCreate(t, ops, "box")
}

func TestUpdateProducesUpdateOp(t *testing.T) {
	h := loomtest.New()
	render := func(text string) func() *vdom.VNode {
		return func() *vdom.VNode {
			return vdom.Element("label", vdom.Props{"text": text})
		}
	}

	if err := h.Mount(render("one")); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	h.Bridge.Reset()

	if err := h.Update(render("two")); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ops := h.Bridge.LastBatch()
	loomtest.ExpectOpKind(t, ops, bridge.OpUpdate)
	loomtest.ExpectNoOpKind(t, ops, bridge.OpCreate)
}

func TestUpdateToFewerChildrenProducesDelete(t *testing.T) {
	h := loomtest.New()
	render := func(n int) func() *vdom.VNode {
		return func() *vdom.VNode {
			children := make([]*vdom.VNode, n)
			for i := range children {
				children[i] = vdom.Element("item", vdom.Props{"key": i}, )
			}
			return vdom.Element("list", nil, children...)
		}
	}

	if err := h.Mount(render(3)); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	h.Bridge.Reset()

	if err := h.Update(render(1)); err != nil {
		t.Fatalf("Update: %v", err)
	}

	loomtest.ExpectOpKind(t, h.Bridge.LastBatch(), bridge.OpDelete)
}

func TestDisposeDoesNotPanicOnUnmounted(t *testing.T) {
	h := loomtest.New()
	h.Dispose() // never mounted; must tolerate a nil root
}

func TestFakeBridgeCommitErr(t *testing.T) {
	h := loomtest.New()
	h.Bridge.CommitErr = bridge.ErrUnknownOp

	err := h.Mount(func() *vdom.VNode {
		return vdom.Element("box", nil)
	})
	if err == nil {
		t.Fatal("expected Mount to report the bridge's commit error")
	}
}
