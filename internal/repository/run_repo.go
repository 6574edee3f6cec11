package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// sqliteTimeLayout is the TIMESTAMP format stored in sqlite columns.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type RunSQLite struct {
	db *sql.DB
}

func NewRunSQLite(sqlDB *sql.DB) *RunSQLite { return &RunSQLite{db: sqlDB} }

var _ RunRepo = (*RunSQLite)(nil)

const insertRunSQL = `
		INSERT INTO runs (id, phase, task, dataset, hardware, region, started_at,
			energy_kwh, kgco2e, water_l, runtime_s, method,
			quality_metric_name, quality_metric_value, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

// Append inserts one evidence row. A missing RunID or Timestamp is filled
// in; everything else is stored as given.
func (r *RunSQLite) Append(ctx context.Context, rec models.RunRecord) error {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	} else {
		rec.Timestamp = rec.Timestamp.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertRunSQL,
		rec.RunID,
		strings.TrimSpace(rec.Phase),
		strings.TrimSpace(rec.Task),
		rec.Dataset,
		rec.Hardware,
		rec.Region,
		rec.Timestamp.Format(sqliteTimeLayout),
		rec.EnergyKWh,
		rec.KgCO2e,
		rec.WaterL,
		rec.RuntimeS,
		string(rec.Method),
		rec.QualityMetricName,
		rec.QualityMetricValue,
		rec.Notes,
	)
	return err
}

// List returns runs in [from, to] (either bound may be zero), oldest first.
func (r *RunSQLite) List(ctx context.Context, from, to time.Time) ([]models.RunRecord, error) {
	var (
		conds []string
		args  []any
	)
	// Bounds must be bound in the same text layout the rows are stored in,
	// or the lexical comparison excludes rows at exactly the boundary.
	if !from.IsZero() {
		conds = append(conds, "started_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimeLayout))
	}
	if !to.IsZero() {
		conds = append(conds, "started_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimeLayout))
	}

	q := `SELECT id, phase, task, dataset, hardware, region, started_at,
		energy_kwh, kgco2e, water_l, runtime_s, method,
		quality_metric_name, quality_metric_value, notes FROM runs`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY started_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.RunRecord, 0, 64)
	for rows.Next() {
		var (
			rec    models.RunRecord
			method string
		)
		if err := rows.Scan(
			&rec.RunID, &rec.Phase, &rec.Task, &rec.Dataset, &rec.Hardware, &rec.Region,
			&rec.Timestamp, &rec.EnergyKWh, &rec.KgCO2e, &rec.WaterL, &rec.RuntimeS,
			&method, &rec.QualityMetricName, &rec.QualityMetricValue, &rec.Notes,
		); err != nil {
			return nil, err
		}
		rec.Method = models.Method(method)
		rec.Timestamp = rec.Timestamp.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
