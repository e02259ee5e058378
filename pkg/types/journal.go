package types

import "errors"

// Journal persists binding transitions. It is an Observer, so it can be
// installed on a Scope or Binding directly.
type Journal interface {
	Observer

	// Attach connects the journal to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, Fetch and Clear return ErrJournalDetached.
	Detach() error

	// Fetch returns transitions matching the filter in recording order.
	// Recognized keys: FilterBinding, FilterBindingID, FilterOp, FilterRejected,
	// FilterLimit.
	// An empty filter returns every transition.
	Fetch(filter map[string]any) ([]Transition, error)

	// Clear removes every recorded transition.
	Clear() error

	// Err returns the first error from Observe, which cannot return one.
	Err() error
}

// Filter keys accepted by Journal.Fetch.
const (
	FilterBinding   = "binding"
	FilterBindingID = "binding_id"
	FilterOp        = "op"
	FilterRejected  = "rejected"
	FilterLimit     = "limit"
)

// Journal lifecycle and query errors.
var (
	ErrJournalDetached = errors.New("journal is detached")
	ErrAlreadyAttached = errors.New("journal is already attached")
	ErrInvalidFilter   = errors.New("invalid filter value type")
)
