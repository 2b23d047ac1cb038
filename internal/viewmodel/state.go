// Package viewmodel holds the observable state behind each screen and
// reconciles remote data with the local fallbacks. Operations run
// synchronously on the caller's goroutine; cancelling the context abandons
// the backend call.
package viewmodel

import (
	"sync"
)

// State is an observable value. Subscribers are called after every change,
// outside the lock, in subscription order.
type State[T any] struct {
	mu    sync.RWMutex
	value T
	subs  []subscription[T]
	next  int
}

type subscription[T any] struct {
	id int
	fn func(T)
}

func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial}
}

func (s *State[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *State[T]) Set(v T) {
	s.mu.Lock()
	s.value = v
	subs := append([]subscription[T](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
}

// Update replaces the value with fn(current) atomically and returns the new
// value.
func (s *State[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	v := fn(s.value)
	s.value = v
	subs := append([]subscription[T](nil), s.subs...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(v)
	}
	return v
}

// Subscribe registers fn and returns a function that removes it.
func (s *State[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs = append(s.subs, subscription[T]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}
