package errs

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		wantCode string
		wantOK   bool
	}{
		{"hook contract violation", HookContractViolation, "L001", true},
		{"render threw", RenderThrew, "L002", true},
		{"effect threw", EffectThrew, "L003", true},
		{"bridge rejected", BridgeRejected, "L004", true},
		{"unknown component type", UnknownComponentType, "L005", true},
		{"duplicate portal target", DuplicatePortalTarget, "L006", true},
		{"reentrant commit", ReentrantCommit, "L007", true},
		{"unregistered kind", Kind("NotReal"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, ok := Lookup(tt.kind)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if tmpl.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tmpl.Code, tt.wantCode)
			}
		})
	}
}

func TestNewFormatsDetail(t *testing.T) {
	err := New(HookContractViolation, "expected %d hooks, got %d", 3, 2)
	want := "L001: mismatched hook slot count or kind across renders: expected 3 hooks, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewUnregisteredKind(t *testing.T) {
	err := New(Kind("NotReal"), "detail")
	if err.Template.Code != "" {
		t.Errorf("expected empty code for unregistered kind, got %q", err.Template.Code)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("native transport closed")
	err := New(BridgeRejected, "batch 7").Wrap(cause)

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should find the wrapped cause")
	}
}

func TestIsFatal(t *testing.T) {
	fatal := New(UnknownComponentType, "widget %q", "Carousel")
	if !fatal.IsFatal() {
		t.Errorf("UnknownComponentType should be fatal")
	}

	nonFatal := New(EffectThrew, "boom")
	if nonFatal.IsFatal() {
		t.Errorf("EffectThrew should not be fatal")
	}
}
