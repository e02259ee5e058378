// Scope-bound resource release.
package types

import (
	"errors"
	"fmt"
	"sync"
)

// ErrScopeClosed is returned when a resource is registered with a scope that
// has already released its resources.
var ErrScopeClosed = errors.New("scope is closed")

// Scope releases registered resources exactly once, in reverse order of
// acquisition, when it closes. Bindings created with OwnIn are dropped at
// scope exit unless they were moved out first. A binding still borrowed at
// scope exit is dropped when its last borrow is released.
type Scope struct {
	mu        sync.Mutex
	name      string
	observer  Observer
	resources []resource
	closed    bool
}

type resource struct {
	name    string
	release func() error
}

// ScopeOption configures a Scope.
type ScopeOption func(*Scope)

// ScopeName labels the scope in release errors.
func ScopeName(name string) ScopeOption {
	return func(s *Scope) { s.name = name }
}

// ScopeObserver sets the default observer for bindings owned by the scope.
func ScopeObserver(obs Observer) ScopeOption {
	return func(s *Scope) { s.observer = obs }
}

// NewScope creates an open scope.
func NewScope(opts ...ScopeOption) *Scope {
	s := &Scope{name: "scope"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the scope label.
func (s *Scope) Name() string { return s.name }

// Observer returns the scope's default observer, which may be nil.
func (s *Scope) Observer() Observer { return s.observer }

// Defer registers release to run when the scope closes.
// Returns ErrScopeClosed if the scope has already closed.
func (s *Scope) Defer(name string, release func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("defer %s in %s: %w", name, s.name, ErrScopeClosed)
	}
	s.resources = append(s.resources, resource{name: name, release: release})
	return nil
}

// Len returns the number of resources awaiting release.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resources)
}

// Close releases every registered resource in reverse order. All resources
// are attempted even when one fails; the failures are joined. Close is
// idempotent.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	resources := s.resources
	s.resources = nil
	s.mu.Unlock()

	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		if err := r.release(); err != nil {
			errs = append(errs, fmt.Errorf("release %s in %s: %w", r.name, s.name, err))
		}
	}
	return errors.Join(errs...)
}

// RunScope runs fn inside a fresh scope and closes it on every exit path:
// normal return, early error return, or panic. Release errors are joined
// with fn's error.
func RunScope(fn func(s *Scope) error, opts ...ScopeOption) (err error) {
	s := NewScope(opts...)
	defer func() {
		err = errors.Join(err, s.Close())
	}()
	return fn(s)
}

// OwnIn creates an Owned binding whose Drop runs when s closes. The binding
// uses the scope's observer unless opts set one. If s is already closed the
// binding is still returned, untracked, together with ErrScopeClosed.
func OwnIn[T any](s *Scope, v T, opts ...BindingOption) (*Binding[T], error) {
	b := Own(v, append([]BindingOption{WithObserver(s.observer)}, opts...)...)
	if err := s.Defer(b.name, b.releaseFromScope); err != nil {
		return b, err
	}
	b.mu.Lock()
	b.scope = s
	b.mu.Unlock()
	return b, nil
}
