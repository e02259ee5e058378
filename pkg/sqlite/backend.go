// Package sqlite provides the public API for the SQLite transition journal.
// This package exposes the factory function for creating journals while
// keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/ownbox/internal/sqlite"
	"github.com/mesh-intelligence/ownbox/pkg/types"
)

// NewJournal creates a new SQLite journal instance.
// The journal is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	journal := sqlite.NewJournal()
//	err := journal.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".ownbox-db",
//	})
//	defer journal.Detach()
//
//	err = types.RunScope(func(s *types.Scope) error {
//	    b, err := types.OwnIn(s, 4)
//	    ...
//	}, types.ScopeObserver(journal))
func NewJournal() types.Journal {
	return sqlite.NewJournal()
}
