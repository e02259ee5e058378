// Shared and exclusive borrows of a Binding.
package types

import (
	"errors"
	"fmt"
)

// Ref is a read-only view of a Binding's value. Any number of Refs may be
// outstanding at once; while any is, the owner cannot be moved, mutated,
// dropped, or exclusively borrowed.
type Ref[T any] struct {
	owner    *Binding[T]
	released bool
}

// MutRef is the single mutable view of a Binding's value. While it is
// outstanding no other borrow is granted and the owner cannot be read,
// moved, mutated, or dropped.
type MutRef[T any] struct {
	owner    *Binding[T]
	released bool
}

// Borrow takes a shared borrow. Fails if b is exclusively borrowed, moved,
// or dropped.
func (b *Binding[T]) Borrow() (*Ref[T], error) {
	b.mu.Lock()
	if b.state != StateOwned && b.state != StateShared {
		tr, err := b.reject(OpBorrow, nil)
		b.mu.Unlock()
		b.notify(tr)
		return nil, err
	}
	from := b.state
	b.readers++
	b.state = StateShared
	tr := b.transition(OpBorrow, from, nil)
	b.mu.Unlock()
	b.notify(tr)
	return &Ref[T]{owner: b}, nil
}

// BorrowMut takes the exclusive borrow. Requires StateOwned.
func (b *Binding[T]) BorrowMut() (*MutRef[T], error) {
	b.mu.Lock()
	if b.state != StateOwned {
		tr, err := b.reject(OpBorrowMut, nil)
		b.mu.Unlock()
		b.notify(tr)
		return nil, err
	}
	b.state = StateExclusive
	tr := b.transition(OpBorrowMut, StateOwned, nil)
	b.mu.Unlock()
	b.notify(tr)
	return &MutRef[T]{owner: b}, nil
}

// Get reads the borrowed value.
func (r *Ref[T]) Get() (T, error) {
	b := r.owner
	b.mu.Lock()
	defer b.mu.Unlock()
	if r.released {
		var zero T
		return zero, fmt.Errorf("read %s: %w", b.name, ErrReleased)
	}
	return b.value, nil
}

// Release ends the borrow. The last shared release returns the owner to
// StateOwned, or drops it if its scope closed while borrowed; the error is
// the drop's release error. Release is idempotent.
func (r *Ref[T]) Release() error {
	b := r.owner
	b.mu.Lock()
	if r.released {
		b.mu.Unlock()
		return nil
	}
	r.released = true
	b.readers--
	if b.readers == 0 {
		b.state = StateOwned
	}
	tr := b.transition(OpRelease, StateShared, nil)
	return b.endBorrow(tr)
}

// Get reads the exclusively borrowed value.
func (m *MutRef[T]) Get() (T, error) {
	b := m.owner
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.released {
		var zero T
		return zero, fmt.Errorf("read %s: %w", b.name, ErrReleased)
	}
	return b.value, nil
}

// Set writes v through the borrow.
func (m *MutRef[T]) Set(v T) error {
	b := m.owner
	b.mu.Lock()
	if m.released {
		b.mu.Unlock()
		return fmt.Errorf("write %s: %w", b.name, ErrReleased)
	}
	b.value = v
	tr := b.transition(OpWrite, StateExclusive, nil)
	b.mu.Unlock()
	b.notify(tr)
	return nil
}

// Update replaces the value with fn applied to it.
func (m *MutRef[T]) Update(fn func(T) T) error {
	v, err := m.Get()
	if err != nil {
		return err
	}
	return m.Set(fn(v))
}

// Release ends the exclusive borrow and returns the owner to StateOwned,
// or drops it if its scope closed while borrowed. Release is idempotent.
func (m *MutRef[T]) Release() error {
	b := m.owner
	b.mu.Lock()
	if m.released {
		b.mu.Unlock()
		return nil
	}
	m.released = true
	b.state = StateOwned
	tr := b.transition(OpReleaseMut, StateExclusive, nil)
	return b.endBorrow(tr)
}

// endBorrow runs a pending scope drop once the owner is back to
// StateOwned, unlocks b, and notifies. The caller must hold b.mu.
func (b *Binding[T]) endBorrow(tr Transition) error {
	if b.state != StateOwned || !b.dropPending {
		b.mu.Unlock()
		b.notify(tr)
		return nil
	}
	v, dropTr := b.dropLocked()
	b.mu.Unlock()
	b.notify(tr)
	b.notify(dropTr)
	return b.closeValue(v)
}

// WithRef runs fn with a shared borrow of b. The borrow is released when fn
// returns, on every path including a panic.
func WithRef[T any](b *Binding[T], fn func(r *Ref[T]) error) (err error) {
	r, err := b.Borrow()
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, r.Release()) }()
	return fn(r)
}

// WithMut runs fn with the exclusive borrow of b. The borrow is released
// when fn returns, on every path including a panic.
func WithMut[T any](b *Binding[T], fn func(m *MutRef[T]) error) (err error) {
	m, err := b.BorrowMut()
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, m.Release()) }()
	return fn(m)
}
