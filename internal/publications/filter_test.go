package publications

import "testing"

func TestFilterState(t *testing.T) {
	s := NewFilterState()
	if s.Active != All {
		t.Errorf("NewFilterState().Active = %q, want %q", s.Active, All)
	}

	if !s.ToggleAbstract("2") {
		t.Error("first ToggleAbstract() = false, want open")
	}
	if !s.IsOpen("2") || s.IsOpen("3") {
		t.Errorf("IsOpen mismatch: %v", s.OpenAbstracts)
	}
	if s.ToggleAbstract("2") {
		t.Error("second ToggleAbstract() = true, want closed")
	}

	s.ToggleAbstract("5")
	next := s.WithActive("vision")
	if next.Active != "vision" || next.IsOpen("5") {
		t.Errorf("WithActive() = %+v, want vision with no open panels", next)
	}
	if !s.IsOpen("5") {
		t.Error("WithActive() modified the original state")
	}
}

func TestFilter(t *testing.T) {
	entries := parseEntries(t, testBib)
	got := Filter(entries, "vision")
	if len(got) != 1 || got[0].Key != "e3" {
		t.Errorf("Filter(vision) = %v, want [e3]", got)
	}
	if got := Filter(entries, "unknown"); len(got) != 0 {
		t.Errorf("Filter(unknown) returned %d entries", len(got))
	}
}
