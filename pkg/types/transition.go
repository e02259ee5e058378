// Ownership transitions and the observers that receive them.
package types

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transition operation names.
const (
	OpOwn        = "own"
	OpGet        = "get"
	OpSet        = "set"
	OpMove       = "move"
	OpTake       = "take"
	OpDrop       = "drop"
	OpDuplicate  = "duplicate"
	OpBorrow     = "borrow"
	OpBorrowMut  = "borrow_mut"
	OpRelease    = "release"
	OpReleaseMut = "release_mut"
	OpWrite      = "write"
)

// Transition records one operation on a binding.
type Transition struct {
	// TransitionID is a UUID v7 assigned by the journal on insert.
	TransitionID string `json:"transition_id,omitempty"`

	// BindingID is the UUID v7 of the binding.
	BindingID string `json:"binding_id"`

	// Binding is the binding name.
	Binding string `json:"binding"`

	// Op is one of the Op constants.
	Op string `json:"op"`

	// From is the state before the operation.
	From State `json:"from"`

	// To is the state after the operation. Equal to From for rejections.
	To State `json:"to"`

	// Readers is the shared borrow count after the operation.
	Readers int `json:"readers"`

	// Violation is the rejection reason; empty when the operation succeeded.
	Violation string `json:"violation,omitempty"`

	// At is when the operation happened.
	At time.Time `json:"at"`
}

// Rejected reports whether the operation was refused.
func (t Transition) Rejected() bool {
	return t.Violation != ""
}

// Observer receives binding transitions. Observe is called synchronously and
// must not call back into the binding that produced the transition.
type Observer interface {
	Observe(t Transition)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(t Transition)

// Observe calls f(t).
func (f ObserverFunc) Observe(t Transition) { f(t) }

// Tee fans a transition out to every non-nil observer in order.
func Tee(observers ...Observer) Observer {
	var live []Observer
	for _, o := range observers {
		if o != nil {
			live = append(live, o)
		}
	}
	return ObserverFunc(func(t Transition) {
		for _, o := range live {
			o.Observe(t)
		}
	})
}

// Recorder is an in-memory Observer that keeps every transition.
type Recorder struct {
	mu          sync.Mutex
	transitions []Transition
}

// Observe appends t.
func (r *Recorder) Observe(t Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, t)
}

// Transitions returns a copy of the recorded transitions.
func (r *Recorder) Transitions() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Transition(nil), r.transitions...)
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]string, len(r.transitions))
	for i, t := range r.transitions {
		ops[i] = t.Op
	}
	return ops
}

// now is overridable in tests.
var now = func() time.Time { return time.Now().UTC() }

// generateID returns a UUID v7, falling back to v4.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
