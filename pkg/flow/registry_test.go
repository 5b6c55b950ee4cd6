package flow

import (
	"errors"
	"testing"
)

func TestRegistry_DefaultSeed(t *testing.T) {
	reg, err := NewRegistry(DefaultSeed()...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 node, got %d", reg.Len())
	}
	n := reg.List()[0]
	if n.ID != 0 || n.Position != (Point{}) || n.Label != DefaultLabel {
		t.Errorf("unexpected seed node: %+v", n)
	}
}

func TestRegistry_ListKeepsInsertionOrder(t *testing.T) {
	reg, err := NewRegistry(NewNode(5, "", 0, 0), NewNode(2, "", 0, 0), NewNode(9, "", 0, 0))
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := []int{5, 2, 9}
	for i, n := range reg.List() {
		if n.ID != want[i] {
			t.Errorf("List()[%d].ID = %d, want %d", i, n.ID, want[i])
		}
	}
}

func TestRegistry_Get(t *testing.T) {
	reg, _ := NewRegistry(NewNode(3, "three", 1, 2))

	n, err := reg.Get(3)
	if err != nil {
		t.Fatalf("Get(3): %v", err)
	}
	if n.Label != "three" {
		t.Errorf("Label = %q, want three", n.Label)
	}

	if _, err := reg.Get(4); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Get(4) error = %v, want ErrNodeNotFound", err)
	}
}

func TestRegistry_GetReturnsAuthoritativeNode(t *testing.T) {
	reg, _ := NewRegistry(NewNode(0, "", 0, 0))
	reg.MustGet(0).Position = Point{7, 7}

	if got := reg.List()[0].Position; got != (Point{7, 7}) {
		t.Errorf("List sees %v, want mutation through MustGet", got)
	}
}

func TestRegistry_InitializeRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(NewNode(1, "", 0, 0), NewNode(1, "", 5, 5))
	if !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestRegistry_InitializeRejectsNegativeIDs(t *testing.T) {
	_, err := NewRegistry(NewNode(0, "", 0, 0), NewNode(-1, "", 5, 5))
	if !errors.Is(err, ErrInvalidNodeID) {
		t.Fatalf("expected ErrInvalidNodeID, got %v", err)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   int
		want bool
	}{
		{0, true},
		{42, true},
		{-1, false},
	}

	for _, tt := range tests {
		if got := ValidID(tt.id); got != tt.want {
			t.Errorf("ValidID(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestRegistry_InitializeResetsLive(t *testing.T) {
	seed := NewNode(0, "", 10, 20)
	seed.Live = Point{99, 99}

	reg, _ := NewRegistry(seed)
	if got := reg.MustGet(0).Displayed(); got != (Point{10, 20}) {
		t.Errorf("Displayed() = %v, want committed position", got)
	}
}

func TestRegistry_MustGetPanics(t *testing.T) {
	reg, _ := NewRegistry()
	defer func() {
		if recover() == nil {
			t.Error("expected MustGet to panic on a missing id")
		}
	}()
	reg.MustGet(0)
}
