package state

// Package state provides a small observable snapshot store. It backs the auth
// session and the UI store: listeners are notified synchronously after each
// committed mutation, in registration order, with the new snapshot.

import "sync"

type listener[T any] struct {
	id int
	fn func(T)
}

// Store holds a value of type T and a set of subscribers. Mutations are total
// replacements of the value; listeners never observe a half-applied state.
//
// Notification runs on the mutating goroutine while holding the commit lock,
// so listeners must not call Set, Update, or Subscribe from their callback.
// Reading Current from a callback is fine.
type Store[T any] struct {
	mu        sync.Mutex // serializes commit + delivery
	valueMu   sync.RWMutex
	value     T
	listeners []listener[T]
	nextID    int
}

// New constructs a Store with the given initial value.
func New[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Current returns a snapshot of the stored value.
func (s *Store[T]) Current() T {
	s.valueMu.RLock()
	defer s.valueMu.RUnlock()
	return s.value
}

// Set replaces the stored value and notifies subscribers.
func (s *Store[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update applies fn to the current value, commits the result, and notifies
// subscribers in registration order with the new snapshot.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.valueMu.Lock()
	next := fn(s.value)
	s.value = next
	s.valueMu.Unlock()

	for _, l := range s.listeners {
		l.fn(next)
	}
}

// Subscribe registers fn and returns an unsubscribe function. Delivery order
// follows registration order; unsubscribing is idempotent.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
