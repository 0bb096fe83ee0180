package torch

import "testing"

func TestFake_RecordsTransitions(t *testing.T) {
	f := NewFake()

	if err := f.Set(true); err != nil {
		t.Fatalf("Set(true) failed: %v", err)
	}
	if err := f.Set(false); err != nil {
		t.Fatalf("Set(false) failed: %v", err)
	}

	trs := f.Transitions()
	if len(trs) != 2 {
		t.Fatalf("Expected 2 transitions, got %d", len(trs))
	}
	if !trs[0].On || trs[1].On {
		t.Errorf("Expected on,off sequence, got %v,%v", trs[0].On, trs[1].On)
	}
	if f.Last() {
		t.Error("Expected last commanded value false")
	}
}

func TestFake_ScriptedFailures(t *testing.T) {
	f := NewFake()
	f.FailNext(2)

	if err := f.Set(true); err == nil {
		t.Fatal("Expected first Set to fail")
	}
	if err := f.Set(true); err == nil {
		t.Fatal("Expected second Set to fail")
	}
	if err := f.Set(true); err != nil {
		t.Fatalf("Expected third Set to succeed, got %v", err)
	}

	// Failed calls must not be recorded as transitions
	if got := len(f.Transitions()); got != 1 {
		t.Errorf("Expected 1 recorded transition, got %d", got)
	}
}

func TestFake_Availability(t *testing.T) {
	f := NewFake()
	if !f.Available() {
		t.Fatal("Fake should be available by default")
	}

	f.SetUnavailable(true)
	if f.Available() {
		t.Fatal("Fake should report unavailable")
	}
}

func TestFake_Reset(t *testing.T) {
	f := NewFake()
	_ = f.Set(true)
	f.FailAlways(true)
	f.Reset()

	if len(f.Transitions()) != 0 {
		t.Error("Reset should clear transitions")
	}
	if err := f.Set(true); err != nil {
		t.Errorf("Reset should clear scripted failures, got %v", err)
	}
}
