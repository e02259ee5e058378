// Ownership slots: single owner, shared and exclusive borrows, moves.
package types

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
)

// State is the ownership state of a Binding.
type State uint8

// Binding states. A binding starts Owned; Moved and Dropped are terminal.
const (
	StateOwned State = iota
	StateShared
	StateExclusive
	StateMoved
	StateDropped
)

var stateNames = map[State]string{
	StateOwned:     "owned",
	StateShared:    "shared",
	StateExclusive: "exclusive",
	StateMoved:     "moved",
	StateDropped:   "dropped",
}

// String returns the state name used in logs and the journal.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "?"
}

// ParseState converts a state name back into a State.
// Returns ErrInvalidState for unknown names.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, ErrInvalidState
}

// MarshalText encodes the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Ownership violations. Every rejected operation returns one of these wrapped
// with the operation and binding name, and leaves the binding unchanged.
var (
	ErrMoved           = errors.New("value has been moved")
	ErrDropped         = errors.New("value has been dropped")
	ErrSharedBorrow    = errors.New("value is shared-borrowed")
	ErrExclusiveBorrow = errors.New("value is exclusively borrowed")
	ErrReleased        = errors.New("borrow has been released")
	ErrInvalidState    = errors.New("invalid state value")
)

// Binding is the sole owner of a value of type T.
//
// Go has no borrow checker, so the discipline is checked at run time: an
// operation that would conflict with an outstanding borrow, or that touches
// a moved or dropped binding, fails with a sentinel error and has no effect.
// All methods are safe to call from multiple goroutines; a conflicting
// request fails immediately rather than waiting.
type Binding[T any] struct {
	mu       sync.Mutex
	id       string
	name     string
	state    State
	readers  int
	value    T
	observer Observer
	scope    *Scope

	// dropPending is set when the owning scope closed while a borrow was
	// outstanding; the last release drops the binding.
	dropPending bool
}

// BindingOption configures a Binding at construction.
type BindingOption func(*bindingOptions)

type bindingOptions struct {
	name     string
	observer Observer
}

// WithName sets the human-readable binding name used in errors and
// transitions. Defaults to the binding ID.
func WithName(name string) BindingOption {
	return func(o *bindingOptions) { o.name = name }
}

// WithObserver routes the binding's transitions to obs.
func WithObserver(obs Observer) BindingOption {
	return func(o *bindingOptions) { o.observer = obs }
}

// Own creates an Owned binding holding v.
func Own[T any](v T, opts ...BindingOption) *Binding[T] {
	b, tr := newBinding(v, opts...)
	b.notify(tr)
	return b
}

// newBinding builds an Owned binding and its own transition without
// notifying the observer.
func newBinding[T any](v T, opts ...BindingOption) (*Binding[T], Transition) {
	var o bindingOptions
	for _, opt := range opts {
		opt(&o)
	}
	b := &Binding[T]{
		id:       generateID(),
		name:     o.name,
		state:    StateOwned,
		value:    v,
		observer: o.observer,
	}
	if b.name == "" {
		b.name = b.id
	}
	return b, b.transition(OpOwn, StateOwned, nil)
}

// ID returns the binding's UUID v7.
func (b *Binding[T]) ID() string { return b.id }

// Name returns the binding name.
func (b *Binding[T]) Name() string { return b.name }

// State returns the current ownership state.
func (b *Binding[T]) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Readers returns the number of outstanding shared borrows.
func (b *Binding[T]) Readers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readers
}

// Get returns a copy of the owned value. Reading through the owner is
// allowed while shared borrows are outstanding, but not while exclusively
// borrowed.
func (b *Binding[T]) Get() (T, error) {
	b.mu.Lock()
	var zero T
	if b.state != StateOwned && b.state != StateShared {
		tr, err := b.reject(OpGet, nil)
		b.mu.Unlock()
		b.notify(tr)
		return zero, err
	}
	v := b.value
	b.mu.Unlock()
	return v, nil
}

// Set replaces the owned value. Requires StateOwned.
func (b *Binding[T]) Set(v T) error {
	b.mu.Lock()
	if b.state != StateOwned {
		tr, err := b.reject(OpSet, nil)
		b.mu.Unlock()
		b.notify(tr)
		return err
	}
	b.value = v
	tr := b.transition(OpSet, StateOwned, nil)
	b.mu.Unlock()
	b.notify(tr)
	return nil
}

// Move transfers ownership to a new binding and invalidates b. The new
// binding inherits b's name, observer, and scope unless opts override the
// name or observer. If b's scope has closed the move is rejected with
// ErrScopeClosed and b keeps its value.
func (b *Binding[T]) Move(opts ...BindingOption) (*Binding[T], error) {
	b.mu.Lock()
	if b.state != StateOwned {
		tr, err := b.reject(OpMove, nil)
		b.mu.Unlock()
		b.notify(tr)
		return nil, err
	}

	inherited := append([]BindingOption{WithName(b.name), WithObserver(b.observer)}, opts...)
	next, ownTr := newBinding(b.value, inherited...)
	if b.scope != nil {
		if err := b.scope.Defer(next.name, next.releaseFromScope); err != nil {
			tr, rerr := b.reject(OpMove, err)
			b.mu.Unlock()
			b.notify(tr)
			return nil, rerr
		}
		next.scope = b.scope
	}

	b.clearValue()
	b.state = StateMoved
	tr := b.transition(OpMove, StateOwned, nil)
	b.mu.Unlock()
	b.notify(tr)
	next.notify(ownTr)
	return next, nil
}

// Take moves the value out of b to the caller, leaving b in StateMoved.
func (b *Binding[T]) Take() (T, error) {
	b.mu.Lock()
	var zero T
	if b.state != StateOwned {
		tr, err := b.reject(OpTake, nil)
		b.mu.Unlock()
		b.notify(tr)
		return zero, err
	}
	v := b.value
	b.clearValue()
	b.state = StateMoved
	tr := b.transition(OpTake, StateOwned, nil)
	b.mu.Unlock()
	b.notify(tr)
	return v, nil
}

// Drop destroys the binding. If the value implements io.Closer it is closed
// exactly once; a nil pointer value is not closed. Dropping a moved binding
// is a no-op because it owns nothing, and dropping twice is idempotent.
// Dropping while borrowed is rejected.
func (b *Binding[T]) Drop() error {
	return b.drop(false)
}

// releaseFromScope is the scope's release hook. A binding that is still
// borrowed when its scope closes is dropped by the last borrow release.
func (b *Binding[T]) releaseFromScope() error {
	return b.drop(true)
}

func (b *Binding[T]) drop(deferWhileBorrowed bool) error {
	b.mu.Lock()
	switch b.state {
	case StateMoved, StateDropped:
		b.mu.Unlock()
		return nil
	case StateShared, StateExclusive:
		if deferWhileBorrowed {
			b.dropPending = true
			b.mu.Unlock()
			return nil
		}
		tr, err := b.reject(OpDrop, nil)
		b.mu.Unlock()
		b.notify(tr)
		return err
	}
	v, tr := b.dropLocked()
	b.mu.Unlock()
	b.notify(tr)
	return b.closeValue(v)
}

// dropLocked moves an Owned binding to StateDropped and returns the value
// to release. The caller must hold b.mu.
func (b *Binding[T]) dropLocked() (T, Transition) {
	v := b.value
	b.clearValue()
	b.state = StateDropped
	b.dropPending = false
	return v, b.transition(OpDrop, StateOwned, nil)
}

// closeValue closes v if it is a non-nil io.Closer.
func (b *Binding[T]) closeValue(v T) error {
	closer, ok := any(v).(io.Closer)
	if !ok || isNil(closer) {
		return nil
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("drop %s: %w", b.name, err)
	}
	return nil
}

// isNil reports whether x holds a typed nil.
func isNil(x any) bool {
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Duplicable is implemented by values that support explicit duplication.
type Duplicable[T any] interface {
	Duplicate() T
}

// Duplicate creates a fresh Owned binding holding b's value duplicated
// through T.Duplicate. Only the explicit call copies; Move never does.
// Allowed while shared-borrowed, since duplication only reads.
func Duplicate[T Duplicable[T]](b *Binding[T], opts ...BindingOption) (*Binding[T], error) {
	b.mu.Lock()
	if b.state != StateOwned && b.state != StateShared {
		tr, err := b.reject(OpDuplicate, nil)
		b.mu.Unlock()
		b.notify(tr)
		return nil, err
	}
	dup := b.value.Duplicate()
	tr := b.transition(OpDuplicate, b.state, nil)
	name, observer := b.name, b.observer
	b.mu.Unlock()
	b.notify(tr)

	return Own(dup, append([]BindingOption{WithName(name + "-dup"), WithObserver(observer)}, opts...)...), nil
}

// clearValue zeroes the slot so a moved or dropped binding retains nothing.
// The caller must hold b.mu.
func (b *Binding[T]) clearValue() {
	var zero T
	b.value = zero
}

// violation maps the current state to the sentinel describing why an
// operation cannot proceed. The caller must hold b.mu.
func (b *Binding[T]) violation() error {
	switch b.state {
	case StateMoved:
		return ErrMoved
	case StateDropped:
		return ErrDropped
	case StateShared:
		return ErrSharedBorrow
	case StateExclusive:
		return ErrExclusiveBorrow
	default:
		return ErrInvalidState
	}
}

// reject builds the wrapped error and the rejected transition for op. A nil
// cause means the current state's violation. The caller must hold b.mu and
// notify the transition after unlocking.
func (b *Binding[T]) reject(op string, cause error) (Transition, error) {
	if cause == nil {
		cause = b.violation()
	}
	return b.transition(op, b.state, cause), fmt.Errorf("%s %s: %w", op, b.name, cause)
}

// transition snapshots a state change. The caller must hold b.mu, except
// during construction.
func (b *Binding[T]) transition(op string, from State, violation error) Transition {
	tr := Transition{
		BindingID: b.id,
		Binding:   b.name,
		Op:        op,
		From:      from,
		To:        b.state,
		Readers:   b.readers,
		At:        now(),
	}
	if violation != nil {
		tr.Violation = violation.Error()
	}
	return tr
}

func (b *Binding[T]) notify(tr Transition) {
	if b.observer != nil {
		b.observer.Observe(tr)
	}
}
