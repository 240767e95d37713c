package engine

// This file is the public hook API (orig §4.2): use_state, use_ref,
// use_memo, use_effect, use_layout_effect, use_insertion_effect, use_store,
// use_context. Each claims the next slot on CurrentFrame() via Frame.slot,
// so a hook called out of order or conditionally trips the same
// HookContractViolation path as a slot-count mismatch.
//
// Grounded on pkg/vango's top-level CreateSignal/CreateEffect/CreateMemo
// helpers, which likewise wrap Owner-level primitives behind free functions
// that operate on "whatever owner is current."

// stateCell is the boxed value behind UseState.
type stateCell[T any] struct {
	value T
}

// UseState allocates a State hook slot on first render, returning the
// current value and a setter that requests a re-render of this instance.
func UseState[T any](initial T) (T, func(T)) {
	f := requireFrame("UseState")
	s, err := f.slot(HookState)
	if err != nil {
		panic(err)
	}
	if s.value == nil {
		s.value = &stateCell[T]{value: initial}
	}
	cell := s.value.(*stateCell[T])

	set := func(v T) {
		cell.value = v
		if f.RequestUpdate != nil {
			f.RequestUpdate()
		}
	}
	return cell.value, set
}

// UseRef allocates a Ref hook slot holding a mutable box that survives
// across renders without itself triggering a re-render when mutated.
func UseRef[T any](initial T) *Ref[T] {
	f := requireFrame("UseRef")
	s, err := f.slot(HookRef)
	if err != nil {
		panic(err)
	}
	if s.value == nil {
		s.value = &Ref[T]{Current: initial}
	}
	return s.value.(*Ref[T])
}

// Ref is a mutable box returned by UseRef.
type Ref[T any] struct {
	Current T
}

// UseMemo allocates a Memo hook slot, recomputing value via compute only
// when deps change by the same structural comparison Effect uses.
func UseMemo[T any](compute func() T, deps []any) T {
	f := requireFrame("UseMemo")
	s, err := f.slot(HookMemo)
	if err != nil {
		panic(err)
	}
	cell, ok := s.value.(*memoCell[T])
	if !ok {
		cell = &memoCell[T]{}
		s.value = cell
	}
	if !cell.computed || depsChanged(cell.deps, deps) {
		cell.value = compute()
		cell.deps = deps
		cell.computed = true
	}
	return cell.value
}

type memoCell[T any] struct {
	value    T
	deps     []any
	computed bool
}

func depsChanged(prev, next []any) bool {
	if next == nil {
		return true
	}
	if len(prev) != len(next) {
		return true
	}
	for i := range next {
		if prev[i] != next[i] {
			return true
		}
	}
	return false
}

// UseEffect schedules fn to run in the commit pipeline's normal-effects
// phase after layout settles, whenever deps change.
func UseEffect(fn func() func(), deps []any) {
	useEffectPhase(PhaseNormal, fn, deps)
}

// UseLayoutEffect schedules fn to run in the layout-effects phase, before
// the frame is presented.
func UseLayoutEffect(fn func() func(), deps []any) {
	useEffectPhase(PhaseLayout, fn, deps)
}

// UseInsertionEffect schedules fn to run once, the first time the whole
// tree becomes stable (orig §4.7 step 7's tree-level latch).
func UseInsertionEffect(fn func() func(), deps []any) {
	useEffectPhase(PhaseInsertion, fn, deps)
}

func useEffectPhase(phase EffectPhase, fn func() func(), deps []any) {
	f := requireFrame("UseEffect")
	s, err := f.slot(HookEffect)
	if err != nil {
		panic(err)
	}
	e, ok := s.value.(*Effect)
	if !ok {
		e = NewEffect(phase, fn, deps)
		s.value = e
	} else {
		e.Fn = fn
	}
	e.SetDeps(deps)
	if e.ShouldRun() {
		f.scheduleEffect(e)
	}
}

// UseStore is the StoreSub hook: it claims a slot, records an access-log
// entry against the current frame, subscribes to the store on first render,
// and unsubscribes on frame disposal.
func UseStore[T any](s *Store[T]) T {
	f := requireFrame("UseStore")
	slot, err := f.slot(HookStoreSub)
	if err != nil {
		panic(err)
	}
	s.recordAccess(f.id, "")
	if slot.value == nil {
		unsubscribe := s.Subscribe(func(T) {
			if f.RequestUpdate != nil {
				f.RequestUpdate()
			}
		})
		f.OnCleanup(unsubscribe)
		slot.value = struct{}{}
	}
	return s.Get()
}

// UseContext is sugar for the package-level Use function, matching the
// naming orig §4.2 lists (use_context) alongside the other seven hooks.
func UseContext[T any](c *Context[T]) T {
	return Use(c)
}

func requireFrame(hook string) *Frame {
	if currentFrame == nil {
		panic(hook + " called with no frame rendering — hooks must run during a component's Render")
	}
	return currentFrame
}
