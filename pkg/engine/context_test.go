package engine

import "testing"

func TestContextUseReturnsDefaultWithoutProvider(t *testing.T) {
	ctx := CreateContext("light")
	f := NewFrame(nil)

	var got string
	render(f, func() { got = Use(ctx) })

	if got != "light" {
		t.Errorf("got %q, want light", got)
	}
}

func TestContextProviderIsVisibleToDescendants(t *testing.T) {
	ctx := CreateContext("light")
	parent := NewFrame(nil)
	child := NewFrame(parent)

	render(parent, func() { ctx.Provider("dark") })

	var got string
	render(child, func() { got = Use(ctx) })

	if got != "dark" {
		t.Errorf("got %q, want dark", got)
	}
}

func TestContextChildProviderShadowsParent(t *testing.T) {
	ctx := CreateContext("light")
	parent := NewFrame(nil)
	child := NewFrame(parent)
	grandchild := NewFrame(child)

	render(parent, func() { ctx.Provider("dark") })
	render(child, func() { ctx.Provider("solarized") })

	var got string
	render(grandchild, func() { got = Use(ctx) })

	if got != "solarized" {
		t.Errorf("got %q, want solarized", got)
	}
}

func TestContextDistinctContextsDoNotCollide(t *testing.T) {
	theme := CreateContext("light")
	locale := CreateContext("en")
	provider := NewFrame(nil)
	consumer := NewFrame(provider)

	render(provider, func() {
		theme.Provider("dark")
		locale.Provider("fr")
	})

	var gotTheme, gotLocale string
	render(consumer, func() {
		gotTheme = Use(theme)
		gotLocale = Use(locale)
	})

	if gotTheme != "dark" || gotLocale != "fr" {
		t.Errorf("gotTheme=%q gotLocale=%q, want dark, fr", gotTheme, gotLocale)
	}
}

func TestContextProviderNodeWrapsChildrenInFragment(t *testing.T) {
	ctx := CreateContext(0)
	provider := NewFrame(nil)
	consumer := NewFrame(provider)

	render(provider, func() {
		node := ctx.ProviderNode(1)
		if node == nil {
			t.Fatal("ProviderNode returned nil")
		}
	})

	var got int
	render(consumer, func() { got = Use(ctx) })
	if got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}
