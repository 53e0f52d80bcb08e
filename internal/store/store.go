// Package store holds client-side copies of backend-owned entities that
// several screens read through.
package store

import "sync"

// Store is a reference-counted holder for one entity with observer
// notification. Responses are applied in sequence order: a response whose
// sequence number is older than the newest applied one is discarded.
type Store[T any] struct {
	mu       sync.Mutex
	value    T
	loaded   bool
	refs     int
	issued   uint64
	applied  uint64
	nextSub  int
	watchers map[int]func(T)
}

func New[T any]() *Store[T] {
	return &Store[T]{watchers: make(map[int]func(T))}
}

// Acquire registers a holder and returns the new reference count.
func (s *Store[T]) Acquire() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs++
	return s.refs
}

// Release drops a holder. The cached value is cleared when the last holder
// leaves so the next holder starts from a fresh fetch.
func (s *Store[T]) Release() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refs > 0 {
		s.refs--
	}
	if s.refs == 0 {
		var zero T
		s.value = zero
		s.loaded = false
	}
	return s.refs
}

// Refs returns the current reference count.
func (s *Store[T]) Refs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Begin issues the sequence number for a new request.
func (s *Store[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Apply stores v if seq is not older than the newest applied response and
// notifies subscribers. It reports whether v was applied.
func (s *Store[T]) Apply(seq uint64, v T) bool {
	s.mu.Lock()
	if seq < s.applied {
		s.mu.Unlock()
		return false
	}
	s.applied = seq
	s.value = v
	s.loaded = true
	watchers := make([]func(T), 0, len(s.watchers))
	for _, fn := range s.watchers {
		watchers = append(watchers, fn)
	}
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(v)
	}
	return true
}

// Get returns the current value and whether one has been applied since the
// store was last emptied.
func (s *Store[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.loaded
}

// Subscribe registers fn for every applied value and returns the function
// that removes it.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// Sequencer is the sequence guard on its own, for resources that have no
// shared holder.
type Sequencer struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

func (q *Sequencer) Begin() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.issued++
	return q.issued
}

// Accept reports whether a response tagged seq is the freshest seen so far,
// and records it if so.
func (q *Sequencer) Accept(seq uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if seq < q.applied {
		return false
	}
	q.applied = seq
	return true
}
