// Package registry is the extension/interceptor lookup table (C4): five
// independent registration tables, each entry guarded by its own
// ShouldHandle(componentType) predicate, dispatched order-independently.
//
// No teacher package models this concept under this name —
// internal/registry in the prior version is a remote-component installer,
// unrelated — so this is new code: each table is a slice in registration
// order, filtered on lookup by each entry's ShouldHandle, in the
// guarded-mutex, functional-registration idiom pkg/middleware and pkg/vango
// both use for their own registration tables.
package registry

import (
	"sync"

	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/reconcile"
	"github.com/loomkit/loom/pkg/vdom"
)

// PropDiffInterceptor overrides prop-diff computation for matching
// component types, short-circuiting the reconciler's default JSON-keyed
// diff (pkg/reconcile's diffProps).
type PropDiffInterceptor interface {
	ShouldHandle(componentType string) bool
	InterceptPropDiff(componentType string, old, next vdom.Props) (diff map[string]any, handled bool)
}

// ReconcileHandler overrides reconciliation entirely for matching component
// types (orig §4.5 rule 2). Aliased directly to pkg/reconcile.Handler so a
// registered entry can be passed straight to reconcile.WithHandlers.
type ReconcileHandler = reconcile.Handler

// LifecycleInterceptor observes mount/update/unmount transitions for
// matching component types.
type LifecycleInterceptor interface {
	ShouldHandle(componentType string) bool
	OnMount(viewID bridge.ViewID, componentType string)
	OnUpdate(viewID bridge.ViewID, componentType string)
	OnUnmount(viewID bridge.ViewID, componentType string)
}

// StateChangeHandler observes hook-state or store changes for matching
// component types, an extension point for cross-cutting concerns (devtools
// inspection, audit logging) that want to see every state write.
type StateChangeHandler interface {
	ShouldHandle(componentType string) bool
	OnStateChange(componentType, key string, value any)
}

// HookFactory supplies additional hook slot kinds for matching component
// types, an escape hatch for host-specific hooks beyond the six built into
// pkg/engine.
type HookFactory interface {
	ShouldHandle(componentType string) bool
	CreateHook(componentType, hookName string) any
}

// Registry holds the five lookup tables. The zero value is not usable; use
// New.
type Registry struct {
	mu sync.RWMutex

	propDiff    []PropDiffInterceptor
	reconcilers []ReconcileHandler
	lifecycle   []LifecycleInterceptor
	stateChange []StateChangeHandler
	hookFactory []HookFactory
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// RegisterPropDiffInterceptor adds i to the prop-diff table.
func (r *Registry) RegisterPropDiffInterceptor(i PropDiffInterceptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.propDiff = append(r.propDiff, i)
}

// RegisterReconcileHandler adds h to the reconcile-handler table.
func (r *Registry) RegisterReconcileHandler(h ReconcileHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconcilers = append(r.reconcilers, h)
}

// RegisterLifecycleInterceptor adds i to the lifecycle table.
func (r *Registry) RegisterLifecycleInterceptor(i LifecycleInterceptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lifecycle = append(r.lifecycle, i)
}

// RegisterStateChangeHandler adds h to the state-change table.
func (r *Registry) RegisterStateChangeHandler(h StateChangeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateChange = append(r.stateChange, h)
}

// RegisterHookFactory adds f to the hook-factory table.
func (r *Registry) RegisterHookFactory(f HookFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hookFactory = append(r.hookFactory, f)
}

// PropDiffInterceptors returns the registered interceptors that claim
// componentType, in registration order.
func (r *Registry) PropDiffInterceptors(componentType string) []PropDiffInterceptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []PropDiffInterceptor
	for _, i := range r.propDiff {
		if i.ShouldHandle(componentType) {
			out = append(out, i)
		}
	}
	return out
}

// ReconcileHandlers returns every registered handler, unfiltered —
// reconcile.Handler already carries its own ShouldHandle, which
// pkg/reconcile's dispatcher consults itself.
func (r *Registry) ReconcileHandlers() []ReconcileHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ReconcileHandler, len(r.reconcilers))
	copy(out, r.reconcilers)
	return out
}

// LifecycleInterceptors returns the registered interceptors that claim
// componentType.
func (r *Registry) LifecycleInterceptors(componentType string) []LifecycleInterceptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []LifecycleInterceptor
	for _, i := range r.lifecycle {
		if i.ShouldHandle(componentType) {
			out = append(out, i)
		}
	}
	return out
}

// StateChangeHandlers returns the registered handlers that claim componentType.
func (r *Registry) StateChangeHandlers(componentType string) []StateChangeHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []StateChangeHandler
	for _, h := range r.stateChange {
		if h.ShouldHandle(componentType) {
			out = append(out, h)
		}
	}
	return out
}

// HookFactories returns the registered factories that claim componentType.
func (r *Registry) HookFactories(componentType string) []HookFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []HookFactory
	for _, f := range r.hookFactory {
		if f.ShouldHandle(componentType) {
			out = append(out, f)
		}
	}
	return out
}
