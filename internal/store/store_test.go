package store

import "testing"

func TestApplyDiscardsStaleResponses(t *testing.T) {
	s := New[string]()
	first := s.Begin()
	second := s.Begin()

	if !s.Apply(second, "new") {
		t.Fatalf("expected newest response to apply")
	}
	if s.Apply(first, "old") {
		t.Fatalf("expected older response to be discarded")
	}
	v, ok := s.Get()
	if !ok || v != "new" {
		t.Fatalf("unexpected value %q (loaded=%v)", v, ok)
	}
}

func TestSubscribersSeeAppliedValues(t *testing.T) {
	s := New[int]()
	var seen []int
	unsubscribe := s.Subscribe(func(v int) { seen = append(seen, v) })

	s.Apply(s.Begin(), 1)
	s.Apply(s.Begin(), 2)
	unsubscribe()
	s.Apply(s.Begin(), 3)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("unexpected notifications: %v", seen)
	}
}

func TestReleaseClearsWhenLastHolderLeaves(t *testing.T) {
	s := New[[]string]()
	s.Acquire()
	s.Acquire()
	s.Apply(s.Begin(), []string{"a"})

	if refs := s.Release(); refs != 1 {
		t.Fatalf("expected one holder left, got %d", refs)
	}
	if _, ok := s.Get(); !ok {
		t.Fatalf("value should survive while a holder remains")
	}
	if refs := s.Release(); refs != 0 {
		t.Fatalf("expected zero holders, got %d", refs)
	}
	if _, ok := s.Get(); ok {
		t.Fatalf("value should be cleared after last release")
	}
	if refs := s.Release(); refs != 0 {
		t.Fatalf("release below zero: %d", refs)
	}
}

func TestSequencerAcceptsOnlyFreshest(t *testing.T) {
	var q Sequencer
	a := q.Begin()
	b := q.Begin()
	if !q.Accept(b) {
		t.Fatalf("expected b to be accepted")
	}
	if q.Accept(a) {
		t.Fatalf("expected a to be rejected after b")
	}
	if !q.Accept(b) {
		t.Fatalf("re-accepting the same sequence should be allowed")
	}
}
