// Package sqlite implements the SQLite transition journal for ownbox.
package sqlite

// Schema DDL. Statements are idempotent so an existing journal is reused
// across runs.
const (
	createTransitions = `CREATE TABLE IF NOT EXISTS transitions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    transition_id TEXT NOT NULL UNIQUE,
    binding_id TEXT NOT NULL,
    binding TEXT NOT NULL,
    op TEXT NOT NULL,
    from_state TEXT NOT NULL,
    to_state TEXT NOT NULL,
    readers INTEGER NOT NULL,
    violation TEXT,
    at TEXT NOT NULL
);`

	idxTransitionsBinding   = `CREATE INDEX IF NOT EXISTS idx_transitions_binding ON transitions(binding);`
	idxTransitionsBindingID = `CREATE INDEX IF NOT EXISTS idx_transitions_binding_id ON transitions(binding_id);`
	idxTransitionsOp        = `CREATE INDEX IF NOT EXISTS idx_transitions_op ON transitions(op);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createTransitions,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTransitionsBinding,
	idxTransitionsBindingID,
	idxTransitionsOp,
}
