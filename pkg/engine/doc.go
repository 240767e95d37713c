// Package engine is the hook runtime (C2) and store/context propagation (C3).
//
// Each component instance owns a *Frame: a slot-indexed hook record. A render
// runs between Frame.Begin and Frame.End; each hook call claims the next slot
// in order. First render allocates slots as hooks are called; every later
// render of the same instance must call hooks in exactly the same kind
// sequence — Frame.End reports a fatal HookContractViolation otherwise.
//
// Grounded on the prior pkg/vango/owner.go: Owner's hookSlots/hookSlotIdx
// storage and TrackHook/StartRender/EndRender order validation are the direct
// ancestor of Frame's slot discipline, generalized from an
// always-on-but-advisory dev-mode check into a mandatory fatal rule,
// and narrowed from the prior nine HookType variants (Signal, Memo,
// Effect, Resource, Form, URLParam, Ref, Context, Action) down to the six
// hook slot variants orig §3 names (State, Effect, Ref, Memo, StoreSub,
// ContextSub) — Resource/Form/URLParam/Action are routing and form-binding
// concerns outside this module's scope.
//
// Effects adapt pkg/vango/effect.go's Effect/cleanup/dispose shape but swap
// its automatic signal-read dependency tracking for an explicit deps array
// compared structurally, per orig §4.2's React-style contract. Store
// coalescing reuses the batch-depth counter from pkg/vango/batch.go
// unchanged, since it already implements the "collapse to one notification
// per microtask" rule orig §4.3 calls for. Context is grounded on
// pkg/vango/context.go and context_api.go's owner-chain value lookup and
// generic Context[T] Provider/Use API.
package engine
