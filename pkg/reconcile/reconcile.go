// Package reconcile diffs an old virtual tree against a new one and emits
// the mutation ops (§6) needed to bring the native side in line, while
// preserving component identity and view ids across renders.
//
// Grounded on the prior pkg/vdom/diff.go: the same-kind dispatch shape,
// prop diff with event-handler presence handling, and keyed-children
// key-map matching are generalized here from DOM patch emission to the six
// bridge.Op kinds.
package reconcile

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/loomkit/loom/pkg/bridge"
	"github.com/loomkit/loom/pkg/vdom"
)

// Option configures a Reconciler.
type Option func(*reconcilerOptions)

type reconcilerOptions struct {
	portals  PortalManager
	handlers []Handler
}

// PortalManager resolves a portal's target anchor to the native view id it
// should attach under. Implemented by pkg/portal; kept as an interface here
// so pkg/reconcile never imports pkg/portal.
type PortalManager interface {
	Resolve(id vdom.PortalID, anchor string) (bridge.ViewID, bool)
}

// DefaultReconcile lets a Handler delegate back into the default algorithm
// for all or part of a subtree.
type DefaultReconcile func(old, next *vdom.VNode, parent bridge.ViewID, index int) []bridge.Op

// Handler lets a registered component type override reconciliation entirely
// (orig §4.5 rule 2). Implemented by pkg/registry entries.
type Handler interface {
	ShouldHandle(componentType string) bool
	Reconcile(old, next *vdom.VNode, parent bridge.ViewID, index int, recurse DefaultReconcile) []bridge.Op
}

// Equaler lets a Component declare structural equality with a prior
// instance, independent of Go's == on the underlying value. When the new
// node's Comp satisfies this and reports equal, and the caller has
// confirmed no hook/store state changed, the reconciler skips the subtree
// entirely (orig §4.5.3).
type Equaler interface {
	Equal(prior vdom.Component) bool
}

// WithPortals registers the portal manager ops should resolve anchors
// through.
func WithPortals(pm PortalManager) Option {
	return func(o *reconcilerOptions) { o.portals = pm }
}

// WithHandlers registers reconciliation handlers, consulted in order before
// the default algorithm.
func WithHandlers(handlers ...Handler) Option {
	return func(o *reconcilerOptions) { o.handlers = append(o.handlers, handlers...) }
}

// Reconciler diffs vdom trees into bridge.Op batches.
type Reconciler struct {
	ids  *vdom.ViewIDAllocator
	opts reconcilerOptions
}

// New creates a Reconciler allocating native view ids from ids.
func New(ids *vdom.ViewIDAllocator, options ...Option) *Reconciler {
	r := &Reconciler{ids: ids}
	for _, opt := range options {
		opt(&r.opts)
	}
	return r
}

// Diff compares old against next and returns the ops to apply. old may be
// nil (initial mount). parent is the nearest native ancestor view id;
// index is next's position among parent's native children.
func (r *Reconciler) Diff(old, next *vdom.VNode, parent bridge.ViewID, index int) []bridge.Op {
	var ops []bridge.Op
	r.diff(old, next, parent, index, &ops)
	return ops
}

func (r *Reconciler) diff(old, next *vdom.VNode, parent bridge.ViewID, index int, ops *[]bridge.Op) {
	if old == nil && next == nil {
		return
	}

	if next != nil && next.Kind == vdom.KindPortal {
		r.diffPortal(old, next, parent, index, ops)
		return
	}

	if next != nil {
		if h := r.matchHandler(next); h != nil {
			recurse := func(o, n *vdom.VNode, p bridge.ViewID, i int) []bridge.Op {
				var sub []bridge.Op
				r.diff(o, n, p, i, &sub)
				return sub
			}
			*ops = append(*ops, h.Reconcile(old, next, parent, index, recurse)...)
			return
		}
	}

	if old == nil {
		r.mount(next, parent, index, ops)
		return
	}
	if next == nil {
		r.unmount(old, ops)
		return
	}

	if old.Kind != next.Kind || (old.Kind == vdom.KindElement && old.Type != next.Type) {
		r.unmount(old, ops)
		r.mount(next, parent, index, ops)
		return
	}

	switch old.Kind {
	case vdom.KindText:
		next.ViewID = old.ViewID
	case vdom.KindElement:
		r.diffElement(old, next, ops)
	case vdom.KindFragment:
		next.ViewID = old.ViewID
		r.diffChildren(old, next, parent, ops)
	case vdom.KindComponent:
		r.diffComponent(old, next, parent, index, ops)
	case vdom.KindErrorBoundary:
		r.diffErrorBoundary(old, next, parent, index, ops)
	}
}

func (r *Reconciler) matchHandler(next *vdom.VNode) Handler {
	if next.Kind != vdom.KindComponent || next.Comp == nil {
		return nil
	}
	typeName := componentTypeName(next.Comp)
	for _, h := range r.opts.handlers {
		if h.ShouldHandle(typeName) {
			return h
		}
	}
	return nil
}

func componentTypeName(c vdom.Component) string {
	return reflect.TypeOf(c).String()
}

// mount recursively creates native peers for next and attaches them under
// parent at index, returning the full op sequence depth-first.
func (r *Reconciler) mount(next *vdom.VNode, parent bridge.ViewID, index int, ops *[]bridge.Op) {
	if next == nil {
		return
	}

	switch next.Kind {
	case vdom.KindText:
		// Text has no native peer of its own and emits no op; its content
		// is not sent to the native side.
		next.ViewID = vdom.NoView

	case vdom.KindElement:
		id := r.ids.Next()
		next.ViewID = id
		propsJSON, _ := propsToJSON(next.Props)
		*ops = append(*ops, bridge.NewCreateOp(toBridgeID(id), next.Type, propsJSON))
		*ops = append(*ops, bridge.NewAttachOp(parent, toBridgeID(id), index))
		for _, event := range eventNames(next.Props) {
			*ops = append(*ops, bridge.NewBindEventOp(toBridgeID(id), event))
		}
		childParent := toBridgeID(id)
		for i, child := range next.Children {
			r.mount(child, childParent, i, ops)
		}

	case vdom.KindFragment:
		next.ViewID = vdom.NoView
		for i, child := range next.Children {
			r.mount(child, parent, index+i, ops)
		}

	case vdom.KindComponent:
		next.ViewID = vdom.NoView
		if next.Comp == nil {
			return
		}
		rendered := renderSafely(next.Comp)
		next.Children = []*vdom.VNode{rendered}
		r.mount(rendered, parent, index, ops)

	case vdom.KindErrorBoundary:
		next.ViewID = vdom.NoView
		var child *vdom.VNode
		if len(next.Children) > 0 {
			child = next.Children[0]
		}
		sub, err := r.guard(func() []bridge.Op {
			var s []bridge.Op
			r.mount(child, parent, index, &s)
			return s
		})
		if err != nil {
			child = r.runFallback(next, err)
			sub, _ = r.guard(func() []bridge.Op {
				var s []bridge.Op
				r.mount(child, parent, index, &s)
				return s
			})
		}
		next.Children = []*vdom.VNode{child}
		*ops = append(*ops, sub...)

	case vdom.KindPortal:
		r.diffPortal(nil, next, parent, index, ops)
	}
}

// guard runs fn, recovering a panic raised anywhere in the subtree it
// mounts/diffs (including Component.Render, already guarded by
// renderSafely, but also anything a reconcile Handler does) and reporting
// it as an error instead of propagating further up the tree.
func (r *Reconciler) guard(fn func() []bridge.Op) (ops []bridge.Op, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = toError(rec)
		}
	}()
	ops = fn()
	return
}

// runFallback renders the boundary's fallback for err, itself guarded —
// a panicking fallback degrades to a plain text node rather than crashing
// the commit.
func (r *Reconciler) runFallback(boundary *vdom.VNode, err error) *vdom.VNode {
	if boundary.Fallback == nil {
		return vdom.TextNode(err.Error())
	}
	var out *vdom.VNode
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				out = vdom.TextNode(fmt.Sprintf("error boundary fallback panicked: %v", rec))
			}
		}()
		out = boundary.Fallback(err)
	}()
	return out
}

// unmount recursively deletes native peers for old, deepest-first so a
// parent's Delete never races an unprocessed child Delete.
func (r *Reconciler) unmount(old *vdom.VNode, ops *[]bridge.Op) {
	if old == nil {
		return
	}
	switch old.Kind {
	case vdom.KindElement:
		for _, child := range old.Children {
			r.unmount(child, ops)
		}
		if old.ViewID != vdom.NoView {
			*ops = append(*ops, bridge.NewDeleteOp(toBridgeID(old.ViewID)))
		}
	case vdom.KindComponent, vdom.KindFragment, vdom.KindErrorBoundary:
		for _, child := range old.Children {
			r.unmount(child, ops)
		}
	case vdom.KindPortal:
		for _, child := range old.Children {
			r.unmount(child, ops)
		}
	}
}

func (r *Reconciler) diffElement(old, next *vdom.VNode, ops *[]bridge.Op) {
	next.ViewID = old.ViewID
	id := toBridgeID(old.ViewID)

	if diffJSON, changed := diffProps(old.Props, next.Props); changed {
		*ops = append(*ops, bridge.NewUpdateOp(id, diffJSON))
	}

	oldEvents := eventSet(old.Props)
	newEvents := eventSet(next.Props)
	for event := range newEvents {
		if !oldEvents[event] {
			*ops = append(*ops, bridge.NewBindEventOp(id, event))
		}
	}
	for event := range oldEvents {
		if !newEvents[event] {
			*ops = append(*ops, bridge.NewUnbindEventOp(id, event))
		}
	}

	r.diffChildren(old, next, id, ops)
}

func (r *Reconciler) diffComponent(old, next *vdom.VNode, parent bridge.ViewID, index int, ops *[]bridge.Op) {
	next.ViewID = old.ViewID

	if next.Comp != nil && old.Comp != nil {
		if eq, ok := next.Comp.(Equaler); ok && eq.Equal(old.Comp) {
			// Skip condition (orig §4.5.3): structural equality declared and
			// no hook/store state changed upstream of this call — retain the
			// previously rendered subtree unchanged.
			next.Children = old.Children
			return
		}
	}

	var oldRendered *vdom.VNode
	if len(old.Children) > 0 {
		oldRendered = old.Children[0]
	}

	var newRendered *vdom.VNode
	if next.Comp != nil {
		newRendered = renderSafely(next.Comp)
	}
	next.Children = []*vdom.VNode{newRendered}

	r.diff(oldRendered, newRendered, parent, index, ops)
}

func (r *Reconciler) diffErrorBoundary(old, next *vdom.VNode, parent bridge.ViewID, index int, ops *[]bridge.Op) {
	next.ViewID = old.ViewID

	var oldChild, newChild *vdom.VNode
	if len(old.Children) > 0 {
		oldChild = old.Children[0]
	}
	if len(next.Children) > 0 {
		newChild = next.Children[0]
	}

	sub, err := r.guard(func() []bridge.Op {
		var s []bridge.Op
		r.diff(oldChild, newChild, parent, index, &s)
		return s
	})
	if err != nil {
		// The child already had a committed native peer (oldChild); tear
		// it down before mounting the fallback in its place.
		var s []bridge.Op
		r.unmount(oldChild, &s)
		newChild = r.runFallback(next, err)
		r.mount(newChild, parent, index, &s)
		sub = s
	}

	next.Children = []*vdom.VNode{newChild}
	*ops = append(*ops, sub...)
}

func toError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}

func renderSafely(c vdom.Component) (out *vdom.VNode) {
	defer func() {
		if err := recover(); err != nil {
			out = vdom.TextNode(fmt.Sprintf("render error: %v", err))
		}
	}()
	return c.Render()
}

func toBridgeID(id vdom.ViewID) bridge.ViewID {
	return bridge.ViewID(id)
}

func (r *Reconciler) diffPortal(old, next *vdom.VNode, parent bridge.ViewID, index int, ops *[]bridge.Op) {
	target := parent
	if r.opts.portals != nil {
		if resolved, ok := r.opts.portals.Resolve(next.Portal, next.Anchor); ok {
			target = resolved
		}
	}

	var oldChildren []*vdom.VNode
	if old != nil && old.Kind == vdom.KindPortal {
		oldChildren = old.Children
	} else if old != nil {
		// A non-portal node is being replaced by a portal: its native peer
		// (if any) cannot be reused for a redirected subtree, so tear it
		// down and mount the portal's children fresh.
		r.unmount(old, ops)
	}
	r.diffChildSlice(oldChildren, next.Children, target, ops)
	next.ViewID = vdom.NoView
}

func (r *Reconciler) diffChildren(old, next *vdom.VNode, parent bridge.ViewID, ops *[]bridge.Op) {
	r.diffChildSlice(old.Children, next.Children, parent, ops)
}

// diffChildSlice reconciles a child list using a unified key space: real
// keys plus synthetic "__kidx_N" keys for keyless children, numbered by
// their position within the keyless subsequence (orig §4.5.2 tie-break).
// Matching by this unified key, rather than splitting into keyed/unkeyed
// passes, lets keyless runs retain identity across renders instead of
// always being replaced.
func (r *Reconciler) diffChildSlice(prev, next []*vdom.VNode, parent bridge.ViewID, ops *[]bridge.Op) {
	prevKeys := effectiveKeys(prev)
	nextKeys := effectiveKeys(next)

	prevByKey := make(map[string]int, len(prev))
	for i := range prev {
		prevByKey[prevKeys[i]] = i
	}

	matched := make(map[int]bool, len(prev))

	for i, child := range next {
		key := nextKeys[i]
		if prevIdx, found := prevByKey[key]; found {
			matched[prevIdx] = true
			prevChild := prev[prevIdx]
			if prevIdx != i {
				if prevChild.ViewID != vdom.NoView {
					*ops = append(*ops, bridge.NewAttachOp(parent, toBridgeID(prevChild.ViewID), i))
				}
			}
			r.diff(prevChild, child, parent, i, ops)
		} else {
			r.mount(child, parent, i, ops)
		}
	}

	for i, child := range prev {
		if !matched[i] {
			r.unmount(child, ops)
		}
	}
}

func effectiveKeys(children []*vdom.VNode) []string {
	keys := make([]string, len(children))
	keylessSeen := 0
	for i, child := range children {
		if child != nil && child.Key != "" {
			keys[i] = "k:" + child.Key
		} else {
			keys[i] = fmt.Sprintf("__kidx_%d", keylessSeen)
			keylessSeen++
		}
	}
	return keys
}

// propsToJSON serializes props for Create/Update ops, excluding event
// handler keys — those never travel as prop values (their presence drives
// BindEvent/UnbindEvent instead).
func propsToJSON(props vdom.Props) (string, error) {
	if len(props) == 0 {
		return "{}", nil
	}
	clean := make(map[string]any, len(props))
	for k, v := range props {
		if vdom.IsEventHandlerKey(k) {
			continue
		}
		clean[k] = v
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// diffProps returns a JSON object of only the changed keys (added or
// updated get their new value, removed keys get JSON null) and whether
// there was any change at all.
func diffProps(old, next vdom.Props) (string, bool) {
	changed := make(map[string]any)

	for k, oldVal := range old {
		if vdom.IsEventHandlerKey(k) {
			continue
		}
		nextVal, exists := next[k]
		if !exists {
			changed[k] = nil
		} else if !propsEqual(oldVal, nextVal) {
			changed[k] = nextVal
		}
	}
	for k, nextVal := range next {
		if vdom.IsEventHandlerKey(k) {
			continue
		}
		if _, exists := old[k]; !exists {
			changed[k] = nextVal
		}
	}

	if len(changed) == 0 {
		return "", false
	}
	data, err := json.Marshal(changed)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

func eventNames(props vdom.Props) []string {
	var names []string
	for k := range props {
		if vdom.IsEventHandlerKey(k) {
			names = append(names, k)
		}
	}
	return names
}

func eventSet(props vdom.Props) map[string]bool {
	set := make(map[string]bool)
	for k := range props {
		if vdom.IsEventHandlerKey(k) {
			set[k] = true
		}
	}
	return set
}
