package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/ownbox/pkg/types"
)

// DatabaseFile is the journal file name inside the data directory.
const DatabaseFile = "journal.db"

var _ types.Journal = (*Journal)(nil)

// Journal implements types.Journal on a SQLite database file.
type Journal struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// observeErr holds the first failure from Observe.
	observeErr error
}

// NewJournal creates a new SQLite journal instance.
// The journal is not attached; call Attach with a Config to initialize.
func NewJournal() *Journal {
	return &Journal{}
}

// Attach validates config, creates DataDir if needed, opens the database,
// and applies the schema. Existing transitions are kept.
// Returns ErrAlreadyAttached if already attached.
func (j *Journal) Attach(config types.Config) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}

	// One connection keeps writes serialized and in recording order.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		return errors.Join(err, db.Close())
	}

	j.db = db
	j.config = config
	j.observeErr = nil
	j.attached = true
	return nil
}

// Detach closes the database. After Detach, Fetch and Clear return
// ErrJournalDetached and Observe drops transitions. Detach is idempotent.
func (j *Journal) Detach() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return nil
	}

	j.attached = false
	db := j.db
	j.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing journal: %w", err)
	}
	return nil
}

// Path returns the database file path of the attached journal.
func (j *Journal) Path() string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	dataDir := j.config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	return filepath.Join(dataDir, DatabaseFile)
}

// Err returns the first error recorded by Observe since Attach.
func (j *Journal) Err() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.observeErr
}

// applySchema creates tables and indexes.
func applySchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}

// generateUUID generates a new UUID v7 for transition IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
