package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/ownbox/pkg/types"
)

const selectTransitions = "SELECT transition_id, binding_id, binding, op, from_state, to_state, readers, violation, at FROM transitions"

// Observe records t. A detached journal drops the transition silently.
// Insert failures are kept and reported by Err, since Observe cannot
// return an error.
func (j *Journal) Observe(t types.Transition) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return
	}

	if t.TransitionID == "" {
		t.TransitionID = generateUUID()
	}
	if t.At.IsZero() {
		t.At = time.Now().UTC()
	}

	var violation *string
	if t.Violation != "" {
		violation = &t.Violation
	}

	_, err := j.db.Exec(
		`INSERT INTO transitions (transition_id, binding_id, binding, op, from_state, to_state, readers, violation, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TransitionID, t.BindingID, t.Binding, t.Op,
		t.From.String(), t.To.String(), t.Readers, violation,
		t.At.Format(time.RFC3339Nano),
	)
	if err != nil && j.observeErr == nil {
		j.observeErr = fmt.Errorf("recording %s %s: %w", t.Op, t.Binding, err)
	}
}

// Fetch returns transitions matching filter in recording order.
// Returns ErrInvalidFilter if a filter value has the wrong type.
func (j *Journal) Fetch(filter map[string]any) ([]types.Transition, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if !j.attached {
		return nil, types.ErrJournalDetached
	}

	query := selectTransitions
	var conditions []string
	var args []any

	for _, key := range []struct {
		name   string
		column string
	}{
		{types.FilterBinding, "binding"},
		{types.FilterBindingID, "binding_id"},
		{types.FilterOp, "op"},
	} {
		v, ok := filter[key.name]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		conditions = append(conditions, key.column+" = ?")
		args = append(args, s)
	}

	if v, ok := filter[types.FilterRejected]; ok {
		rejected, ok := v.(bool)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if rejected {
			conditions = append(conditions, "violation IS NOT NULL")
		} else {
			conditions = append(conditions, "violation IS NULL")
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY seq ASC"

	if v, ok := filter[types.FilterLimit]; ok {
		limit, ok := v.(int)
		if !ok {
			return nil, types.ErrInvalidFilter
		}
		if limit > 0 {
			query += fmt.Sprintf(" LIMIT %d", limit)
		}
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying transitions: %w", err)
	}
	defer rows.Close()

	var out []types.Transition
	for rows.Next() {
		t, err := hydrateTransition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transitions: %w", err)
	}
	return out, nil
}

// Clear removes every recorded transition.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.attached {
		return types.ErrJournalDetached
	}
	if _, err := j.db.Exec("DELETE FROM transitions"); err != nil {
		return fmt.Errorf("clearing transitions: %w", err)
	}
	return nil
}

// hydrateTransition converts a row from sql.Rows into a types.Transition.
func hydrateTransition(rows *sql.Rows) (types.Transition, error) {
	var t types.Transition
	var from, to, at string
	var violation sql.NullString
	if err := rows.Scan(&t.TransitionID, &t.BindingID, &t.Binding, &t.Op, &from, &to, &t.Readers, &violation, &at); err != nil {
		return t, fmt.Errorf("scanning transition: %w", err)
	}

	var err error
	if t.From, err = types.ParseState(from); err != nil {
		return t, fmt.Errorf("parsing from_state %q: %w", from, err)
	}
	if t.To, err = types.ParseState(to); err != nil {
		return t, fmt.Errorf("parsing to_state %q: %w", to, err)
	}
	if violation.Valid {
		t.Violation = violation.String
	}
	if t.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return t, fmt.Errorf("parsing at: %w", err)
	}
	return t, nil
}
