package registry

import (
	"strings"
	"testing"

	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/reconcile"
	"github.com/loomkit/loom/pkg/vdom"
)

type prefixPropDiff struct {
	prefix string
	calls  int
}

func (p *prefixPropDiff) ShouldHandle(componentType string) bool {
	return strings.HasPrefix(componentType, p.prefix)
}

func (p *prefixPropDiff) InterceptPropDiff(componentType string, old, next vdom.Props) (map[string]any, bool) {
	p.calls++
	return map[string]any{"overridden": true}, true
}

func TestPropDiffInterceptorsFiltersByShouldHandle(t *testing.T) {
	r := New()
	matching := &prefixPropDiff{prefix: "native."}
	other := &prefixPropDiff{prefix: "web."}
	r.RegisterPropDiffInterceptor(matching)
	r.RegisterPropDiffInterceptor(other)

	got := r.PropDiffInterceptors("native.Button")

	if len(got) != 1 {
		t.Fatalf("got %d interceptors, want 1", len(got))
	}
	if got[0] != matching {
		t.Error("expected the matching interceptor, got a different one")
	}
}

func TestPropDiffInterceptorsEmptyWhenNoneMatch(t *testing.T) {
	r := New()
	r.RegisterPropDiffInterceptor(&prefixPropDiff{prefix: "web."})

	got := r.PropDiffInterceptors("native.Button")
	if len(got) != 0 {
		t.Errorf("got %d interceptors, want 0", len(got))
	}
}

type fakeReconcileHandler struct {
	claims string
}

func (f *fakeReconcileHandler) ShouldHandle(componentType string) bool {
	return componentType == f.claims
}

func (f *fakeReconcileHandler) Reconcile(old, next *vdom.VNode, parent bridge.ViewID, index int, recurse reconcile.DefaultReconcile) []bridge.Op {
	return nil
}

func TestReconcileHandlersReturnsAllUnfiltered(t *testing.T) {
	r := New()
	a := &fakeReconcileHandler{claims: "Carousel"}
	b := &fakeReconcileHandler{claims: "Modal"}
	r.RegisterReconcileHandler(a)
	r.RegisterReconcileHandler(b)

	got := r.ReconcileHandlers()
	if len(got) != 2 {
		t.Fatalf("got %d handlers, want 2 (ReconcileHandlers should not pre-filter)", len(got))
	}
}

type lifecycleSpy struct {
	mounted []bridge.ViewID
}

func (l *lifecycleSpy) ShouldHandle(componentType string) bool { return componentType == "Video" }
func (l *lifecycleSpy) OnMount(viewID bridge.ViewID, componentType string) {
	l.mounted = append(l.mounted, viewID)
}
func (l *lifecycleSpy) OnUpdate(bridge.ViewID, string)  {}
func (l *lifecycleSpy) OnUnmount(bridge.ViewID, string) {}

func TestLifecycleInterceptorsDispatch(t *testing.T) {
	r := New()
	spy := &lifecycleSpy{}
	r.RegisterLifecycleInterceptor(spy)

	interceptors := r.LifecycleInterceptors("Video")
	if len(interceptors) != 1 {
		t.Fatalf("got %d interceptors, want 1", len(interceptors))
	}
	interceptors[0].OnMount(bridge.ViewID(3), "Video")

	if len(spy.mounted) != 1 || spy.mounted[0] != bridge.ViewID(3) {
		t.Errorf("mounted = %v, want [3]", spy.mounted)
	}

	if len(r.LifecycleInterceptors("Audio")) != 0 {
		t.Error("expected no interceptors for a non-matching type")
	}
}

type stateChangeSpy struct {
	keys []string
}

func (s *stateChangeSpy) ShouldHandle(string) bool { return true }
func (s *stateChangeSpy) OnStateChange(componentType, key string, value any) {
	s.keys = append(s.keys, key)
}

func TestStateChangeHandlersDispatch(t *testing.T) {
	r := New()
	spy := &stateChangeSpy{}
	r.RegisterStateChangeHandler(spy)

	handlers := r.StateChangeHandlers("AnyType")
	if len(handlers) != 1 {
		t.Fatalf("got %d handlers, want 1", len(handlers))
	}
	handlers[0].OnStateChange("AnyType", "count", 5)
	if len(spy.keys) != 1 || spy.keys[0] != "count" {
		t.Errorf("keys = %v, want [count]", spy.keys)
	}
}

type namedHookFactory struct {
	name string
}

func (f *namedHookFactory) ShouldHandle(componentType string) bool { return true }
func (f *namedHookFactory) CreateHook(componentType, hookName string) any {
	if hookName == f.name {
		return "created:" + hookName
	}
	return nil
}

func TestHookFactoriesDispatch(t *testing.T) {
	r := New()
	r.RegisterHookFactory(&namedHookFactory{name: "useHaptics"})

	factories := r.HookFactories("Button")
	if len(factories) != 1 {
		t.Fatalf("got %d factories, want 1", len(factories))
	}
	if got := factories[0].CreateHook("Button", "useHaptics"); got != "created:useHaptics" {
		t.Errorf("CreateHook() = %v, want created:useHaptics", got)
	}
}

func TestRegistryTablesAreIndependent(t *testing.T) {
	r := New()
	r.RegisterPropDiffInterceptor(&prefixPropDiff{prefix: ""})

	if len(r.ReconcileHandlers()) != 0 {
		t.Error("registering a prop-diff interceptor should not populate the reconcile table")
	}
	if len(r.LifecycleInterceptors("anything")) != 0 {
		t.Error("registering a prop-diff interceptor should not populate the lifecycle table")
	}
}
