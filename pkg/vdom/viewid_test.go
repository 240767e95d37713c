package vdom

import "testing"

func TestViewIDAllocatorMonotonic(t *testing.T) {
	a := NewViewIDAllocator()
	seen := make(map[ViewID]bool)
	for i := 0; i < 100; i++ {
		id := a.Next()
		if id == 0 {
			t.Fatalf("allocator must never hand out the root id 0, got %d", id)
		}
		if seen[id] {
			t.Fatalf("id %d allocated twice", id)
		}
		seen[id] = true
	}
	if a.Current() != ViewID(100) {
		t.Errorf("Current() = %d, want 100", a.Current())
	}
}

func TestCollectAndFindByViewID(t *testing.T) {
	child := &VNode{Kind: KindElement, Type: "Text", ViewID: 2}
	root := &VNode{Kind: KindElement, Type: "View", ViewID: 1, Children: []*VNode{child}}

	ids := CollectViewIDs(root)
	if len(ids) != 2 {
		t.Fatalf("CollectViewIDs returned %d entries, want 2", len(ids))
	}
	if FindByViewID(root, 2) != child {
		t.Error("FindByViewID(2) did not return child")
	}
	if FindByViewID(root, 99) != nil {
		t.Error("FindByViewID(99) should be nil")
	}
}

func TestCountInteractive(t *testing.T) {
	tree := &VNode{
		Kind: KindElement, Type: "View", ViewID: 1,
		Children: []*VNode{
			{Kind: KindElement, Type: "Button", ViewID: 2, Props: Props{"onPress": func() {}}},
			{Kind: KindElement, Type: "Text", ViewID: 3},
		},
	}
	if got := CountInteractive(tree); got != 1 {
		t.Errorf("CountInteractive = %d, want 1", got)
	}
}
