// Package errs is the error taxonomy (§7): a fixed set of kinds, each with a
// registered template (code, category, message, doc pointer), and a typed
// error wrapping the template plus call-site detail.
//
// Grounded on the prior internal/errors package: registry.go's
// map[string]ErrorTemplate keyed by codes, and error.go's New/Wrap/Error
// shape are reused verbatim in spirit, with the prior compiler/CLI/
// hydration codes (E001-E162) replaced by this taxonomy's seven rows
// (L001-L007) and a Fatal flag standing in for the policy column.
package errs

import "fmt"

// Kind is one row of the error taxonomy (§7).
type Kind string

const (
	HookContractViolation Kind = "HookContractViolation"
	RenderThrew           Kind = "RenderThrew"
	EffectThrew           Kind = "EffectThrew"
	BridgeRejected        Kind = "BridgeRejected"
	UnknownComponentType  Kind = "UnknownComponentType"
	DuplicatePortalTarget Kind = "DuplicatePortalTarget"
	ReentrantCommit       Kind = "ReentrantCommit"
)

// Template is a registered description of one error kind.
type Template struct {
	Code    string
	Kind    Kind
	Message string
	Fatal   bool // surfaced as a typed error to the caller/nearest boundary rather than just logged
	DocURL  string
}

// registry maps taxonomy kinds to their templates (§7's table, one row each).
var registry = map[Kind]Template{
	HookContractViolation: {
		Code:    "L001",
		Kind:    HookContractViolation,
		Message: "mismatched hook slot count or kind across renders",
		Fatal:   true,
		DocURL:  "https://loomkit.dev/docs/errors/L001",
	},
	RenderThrew: {
		Code:    "L002",
		Kind:    RenderThrew,
		Message: "component render panicked",
		Fatal:   false, // caught at the nearest error boundary, not fatal to the process
		DocURL:  "https://loomkit.dev/docs/errors/L002",
	},
	EffectThrew: {
		Code:    "L003",
		Kind:    EffectThrew,
		Message: "effect or cleanup panicked",
		Fatal:   false,
		DocURL:  "https://loomkit.dev/docs/errors/L003",
	},
	BridgeRejected: {
		Code:    "L004",
		Kind:    BridgeRejected,
		Message: "native side rejected a commit batch",
		Fatal:   false,
		DocURL:  "https://loomkit.dev/docs/errors/L004",
	},
	UnknownComponentType: {
		Code:    "L005",
		Kind:    UnknownComponentType,
		Message: "native widget type not registered with host",
		Fatal:   true,
		DocURL:  "https://loomkit.dev/docs/errors/L005",
	},
	DuplicatePortalTarget: {
		Code:    "L006",
		Kind:    DuplicatePortalTarget,
		Message: "two portals targeting the same anchor",
		Fatal:   false,
		DocURL:  "https://loomkit.dev/docs/errors/L006",
	},
	ReentrantCommit: {
		Code:    "L007",
		Kind:    ReentrantCommit,
		Message: "commit triggered while a commit was already in progress",
		Fatal:   false,
		DocURL:  "https://loomkit.dev/docs/errors/L007",
	},
}

// Lookup returns the registered template for kind.
func Lookup(kind Kind) (Template, bool) {
	t, ok := registry[kind]
	return t, ok
}

// Error is a typed error carrying its taxonomy template plus call-site detail.
type Error struct {
	Template Template
	Detail   string
	Wrapped  error
}

// New creates an Error for kind with a formatted detail message.
func New(kind Kind, format string, args ...any) *Error {
	t := registry[kind] // zero Template (empty Code/Message) if somehow unregistered
	return &Error{Template: t, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying error for errors.Is/As unwrapping.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Template.Code, e.Template.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Template.Code, e.Template.Message, e.Detail)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// IsFatal reports whether this kind is fatal for the affected instance/subtree
// per the taxonomy's policy column, rather than merely logged.
func (e *Error) IsFatal() bool {
	return e.Template.Fatal
}
