package engine

import "github.com/loomkit/loom/pkg/vdom"

// currentFrame is the frame of the component instance currently rendering,
// valid only on the single cooperative render thread (orig §5: render and
// commit never run concurrently). Grounded on the prior getCurrentOwner
// thread-local accessor in pkg/vango/owner.go, narrowed from a goroutine-
// local to a single package var since this runtime's render loop is itself
// single-threaded by design, not merely by convention.
var currentFrame *Frame

// withFrame runs fn with currentFrame set to f, restoring the previous
// frame afterward so nested renders (a component rendering a child inline)
// still resolve hooks against the right frame.
func withFrame(f *Frame, fn func()) {
	prev := currentFrame
	currentFrame = f
	defer func() { currentFrame = prev }()
	fn()
}

// CurrentFrame returns the frame of the component currently rendering, or
// nil outside of a render.
func CurrentFrame() *Frame { return currentFrame }

// Render runs fn as one render pass of f: it resets f's slot cursor, makes f
// the current frame for the duration of fn so hooks called inside fn resolve
// against it, and checks the Identity invariant on exit. Callers (pkg/session
// and pkg/loomtest) use this as the single entry point for re-running a
// component instance's render function.
func Render(f *Frame, fn func()) error {
	f.Begin()
	withFrame(f, fn)
	return f.End()
}

// contextKey gives each Context[T] a unique comparable identity to use as
// its Frame.values map key, the same trick as the prior contextKey[T]
// wrapper in pkg/vango/context_api.go.
type contextKey[T any] struct{ ctx *Context[T] }

// Context is dependency injection through the frame tree: Provider stores a
// value on the current frame, Use looks it up via the frame's parent chain.
// Grounded on pkg/vango/context_api.go's Context[T]/CreateContext/Provider/Use.
type Context[T any] struct {
	key          any
	defaultValue T
}

// CreateContext creates a context with the given default, returned by Use
// when no ancestor frame has called Provider.
func CreateContext[T any](defaultValue T) *Context[T] {
	c := &Context[T]{defaultValue: defaultValue}
	c.key = contextKey[T]{ctx: c}
	return c
}

// Provider stores value on the current frame so descendant Use calls see
// it. It must be called during render, with a live currentFrame.
func (c *Context[T]) Provider(value T) {
	if currentFrame == nil {
		return
	}
	currentFrame.SetValue(c.key, value)
}

// Use is the ContextSub hook: it claims a hook slot (so its position in the
// render's hook sequence is validated like any other hook) and resolves the
// nearest ancestor Provider's value, or the context's default.
func Use[T any](c *Context[T]) T {
	f := currentFrame
	if f == nil {
		return c.defaultValue
	}
	if _, err := f.slot(HookContextSub); err != nil {
		panic(err)
	}
	if v, ok := f.GetValue(c.key); ok {
		if typed, ok := v.(T); ok {
			return typed
		}
	}
	return c.defaultValue
}

// Default returns the context's default value.
func (c *Context[T]) Default() T { return c.defaultValue }

// ProviderNode is Provider plus wrapping children in a fragment, matching
// the prior Context[T].Provider ergonomics in pkg/vango/context_api.go —
// adapted to the current vdom.Fragment(...*VNode) signature, which fixes a
// latent bug in the prior version (it calls vdom.Fragment(children...)
// with children typed ...any against a Fragment that takes ...*VNode).
func (c *Context[T]) ProviderNode(value T, children ...*vdom.VNode) *vdom.VNode {
	c.Provider(value)
	return vdom.Fragment(children...)
}
