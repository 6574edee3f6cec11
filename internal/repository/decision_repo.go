package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

type DecisionSQLite struct {
	db *sql.DB
}

func NewDecisionSQLite(sqlDB *sql.DB) *DecisionSQLite { return &DecisionSQLite{db: sqlDB} }

var _ DecisionRepo = (*DecisionSQLite)(nil)

const insertDecisionSQL = `
		INSERT INTO decisions (id, decided_at, should_run, reason, reading, policy)
		VALUES (?, ?, ?, ?, ?, ?)
	`

// Append persists one decision verbatim. Reading and policy are stored as
// JSON so the record survives schema drift in either struct.
func (r *DecisionSQLite) Append(ctx context.Context, d models.Decision) error {
	if d.DecisionID == "" {
		d.DecisionID = uuid.NewString()
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	} else {
		d.DecidedAt = d.DecidedAt.UTC()
	}

	readingJSON, err := json.Marshal(d.Reading)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	policyJSON, err := json.Marshal(d.Policy)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertDecisionSQL,
		d.DecisionID,
		d.DecidedAt.Format(sqliteTimeLayout),
		d.ShouldRun,
		d.Reason,
		string(readingJSON),
		string(policyJSON),
	)
	return err
}

// List returns decisions in [from, to] (either bound may be zero), oldest
// first.
func (r *DecisionSQLite) List(ctx context.Context, from, to time.Time) ([]models.Decision, error) {
	var (
		conds []string
		args  []any
	)
	// Same text layout as Append stores, so boundary rows compare equal.
	if !from.IsZero() {
		conds = append(conds, "decided_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "decided_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeLayout))
	}

	q := `SELECT id, decided_at, should_run, reason, reading, policy FROM decisions`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY decided_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Decision, 0, 64)
	for rows.Next() {
		var (
			d                     models.Decision
			readingStr, policyStr string
		)
		if err := rows.Scan(&d.DecisionID, &d.DecidedAt, &d.ShouldRun, &d.Reason, &readingStr, &policyStr); err != nil {
			return nil, err
		}
		d.DecidedAt = d.DecidedAt.UTC()
		if err := json.Unmarshal([]byte(readingStr), &d.Reading); err != nil {
			return nil, fmt.Errorf("unmarshal reading for decision %s: %w", d.DecisionID, err)
		}
		if err := json.Unmarshal([]byte(policyStr), &d.Policy); err != nil {
			return nil, fmt.Errorf("unmarshal policy for decision %s: %w", d.DecisionID, err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
