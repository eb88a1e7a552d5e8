package rink

import "sync"

// Mailbox is a single-slot handoff from a network goroutine to the game loop.
// Post overwrites any value not yet taken: last write wins and intermediate
// values may never be observed.
type Mailbox[T any] struct {
	mu          sync.Mutex
	val         T
	full        bool
	posted      uint64
	overwritten uint64
}

// Post stores v, replacing a pending value.
func (m *Mailbox[T]) Post(v T) {
	m.mu.Lock()
	if m.full {
		m.overwritten++
	}
	m.val = v
	m.full = true
	m.posted++
	m.mu.Unlock()
}

// Take removes and returns the pending value, if any.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if !m.full {
		return zero, false
	}
	v := m.val
	m.val = zero
	m.full = false
	return v, true
}

// Counts returns how many values were posted and how many were replaced
// before being taken.
func (m *Mailbox[T]) Counts() (posted, overwritten uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.posted, m.overwritten
}
