package store

import "testing"

func TestSessionStoreSetAndClear(t *testing.T) {
	s := NewSessionStore()
	if s.Active() != "" {
		t.Fatalf("fresh store should hold no session, got %q", s.Active())
	}

	s.Set("session_a")
	if s.Active() != "session_a" {
		t.Fatalf("Active() = %q, want session_a", s.Active())
	}

	s.Clear()
	if s.Active() != "" {
		t.Fatalf("Clear should empty the store, got %q", s.Active())
	}
}

func TestSessionStoreNotifiesOnChange(t *testing.T) {
	s := NewSessionStore()

	var seen []string
	s.Subscribe(func(id string) { seen = append(seen, id) })

	s.Set("a")
	s.Set("b")
	s.Clear()

	want := []string{"a", "b", ""}
	if len(seen) != len(want) {
		t.Fatalf("got %d notifications, want %d: %v", len(seen), len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestSessionStoreSameIDIsNoOp(t *testing.T) {
	s := NewSessionStore()
	count := 0
	s.Subscribe(func(string) { count++ })

	s.Set("a")
	s.Set("a")
	s.Set("a")

	if count != 1 {
		t.Fatalf("setting the same id should notify once, got %d", count)
	}
}

func TestSessionStoreUnsubscribe(t *testing.T) {
	s := NewSessionStore()
	count := 0
	unsubscribe := s.Subscribe(func(string) { count++ })

	s.Set("a")
	unsubscribe()
	s.Set("b")

	if count != 1 {
		t.Fatalf("unsubscribed callback fired, count = %d", count)
	}
}

func TestPanelStoreToggle(t *testing.T) {
	p := NewPanelStore()
	if p.Open() {
		t.Fatal("panel should start closed")
	}

	var states []bool
	p.Subscribe(func(open bool) { states = append(states, open) })

	p.Toggle()
	p.Set(false)
	p.Set(false) // no-op

	if len(states) != 2 || states[0] != true || states[1] != false {
		t.Fatalf("unexpected notifications: %v", states)
	}
}
