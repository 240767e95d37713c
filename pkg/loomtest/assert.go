package loomtest

import (
	"fmt"
	"testing"

	"github.com/loomkit/loom/pkg/bridge"
)

// ExpectOpKind asserts that ops contains at least one op of the given kind.
func ExpectOpKind(t testing.TB, ops []bridge.Op, kind bridge.OpKind) {
	t.Helper()
	for _, op := range ops {
		if op.Kind == kind {
			return
		}
	}
	t.Errorf("expected an op of kind %s, got:\n%s", kind, formatOps(ops))
}

// ExpectNoOpKind asserts that ops contains no op of the given kind.
func ExpectNoOpKind(t testing.TB, ops []bridge.Op, kind bridge.OpKind) {
	t.Helper()
	for _, op := range ops {
		if op.Kind == kind {
			t.Errorf("expected no op of kind %s, got:\n%s", kind, formatOps(ops))
			return
		}
	}
}

// ExpectOpCount asserts that ops has exactly n elements.
func ExpectOpCount(t testing.TB, ops []bridge.Op, n int) {
	t.Helper()
	if len(ops) != n {
		t.Errorf("expected %d ops, got %d:\n%s", n, len(ops), formatOps(ops))
	}
}

// ExpectCreate asserts that ops contains an OpCreate for the given native
// widget type.
func ExpectCreate(t testing.TB, ops []bridge.Op, viewType string) {
	t.Helper()
	for _, op := range ops {
		if op.Kind == bridge.OpCreate && op.Type == viewType {
			return
		}
	}
	t.Errorf("expected a Create op for type %q, got:\n%s", viewType, formatOps(ops))
}

// ExpectViewID asserts that ops contains at least one op referencing the
// given view id, regardless of kind.
func ExpectViewID(t testing.TB, ops []bridge.Op, id bridge.ViewID) {
	t.Helper()
	for _, op := range ops {
		if op.ViewID == id || op.ParentID == id || op.ChildID == id {
			return
		}
	}
	t.Errorf("expected an op referencing view id %d, got:\n%s", id, formatOps(ops))
}

func formatOps(ops []bridge.Op) string {
	s := ""
	for _, op := range ops {
		s += fmt.Sprintf("  %s view=%d type=%q parent=%d child=%d index=%d\n",
			op.Kind, op.ViewID, op.Type, op.ParentID, op.ChildID, op.Index)
	}
	if s == "" {
		return "  (no ops)\n"
	}
	return s
}
