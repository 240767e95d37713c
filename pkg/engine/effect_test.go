package engine

import "testing"

func TestEffectShouldRunFirstTime(t *testing.T) {
	e := NewEffect(PhaseNormal, func() func() { return nil }, []any{1})
	if !e.ShouldRun() {
		t.Error("a fresh effect should run")
	}
}

func TestEffectShouldRunNilDepsAlwaysRuns(t *testing.T) {
	e := NewEffect(PhaseNormal, func() func() { return nil }, nil)
	e.run()
	if !e.ShouldRun() {
		t.Error("nil deps should always report ShouldRun")
	}
}

func TestEffectShouldRunSkipsWhenDepsUnchanged(t *testing.T) {
	e := NewEffect(PhaseNormal, func() func() { return nil }, []any{1, "a"})
	e.run()
	e.SetDeps([]any{1, "a"})
	if e.ShouldRun() {
		t.Error("unchanged deps should not trigger a re-run")
	}
}

func TestEffectShouldRunOnDepsChange(t *testing.T) {
	e := NewEffect(PhaseNormal, func() func() { return nil }, []any{1})
	e.run()
	e.SetDeps([]any{2})
	if !e.ShouldRun() {
		t.Error("changed deps should trigger a re-run")
	}
}

func TestEffectRunsCleanupBeforeNextRun(t *testing.T) {
	cleaned := false
	runs := 0
	e := NewEffect(PhaseNormal, func() func() {
		runs++
		return func() { cleaned = true }
	}, []any{1})

	e.run()
	if cleaned {
		t.Error("cleanup should not run before a second invocation")
	}
	e.SetDeps([]any{2})
	e.run()
	if !cleaned {
		t.Error("expected prior cleanup to run before second run")
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
}

func TestEffectPanicIsRecoveredAndMarksRan(t *testing.T) {
	e := NewEffect(PhaseNormal, func() func() {
		panic("boom")
	}, []any{1})

	e.run() // must not panic

	if !e.hasRun {
		t.Error("a panicking effect should still be marked as run")
	}
}

func TestEffectDisposeRunsOutstandingCleanupOnce(t *testing.T) {
	calls := 0
	e := NewEffect(PhaseNormal, func() func() {
		return func() { calls++ }
	}, []any{1})
	e.run()

	e.dispose()
	e.dispose()

	if calls != 1 {
		t.Errorf("cleanup ran %d times, want 1", calls)
	}
}
