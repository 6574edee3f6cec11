package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(sqlDB *sql.DB) *ReadingSQLite { return &ReadingSQLite{db: sqlDB} }

var _ ReadingRepo = (*ReadingSQLite)(nil)

const latestReadingRowID = 1

const (
	upsertReadingSQL = `
		INSERT INTO latest_reading (id, value_gco2_per_kwh, source, observed_at, region)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			value_gco2_per_kwh=excluded.value_gco2_per_kwh,
			source=excluded.source,
			observed_at=excluded.observed_at,
			region=excluded.region
	`

	selectReadingSQL = `
		SELECT value_gco2_per_kwh, source, observed_at, region
		FROM latest_reading WHERE id=?
	`
)

// Save upserts the single latest-reading row (id always 1).
func (r *ReadingSQLite) Save(ctx context.Context, reading models.IntensityReading) error {
	ts := reading.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertReadingSQL,
		latestReadingRowID,
		reading.Value,
		string(reading.Source),
		ts.Format(sqliteTimeLayout),
		reading.Region,
	)
	return err
}

// Load fetches the latest reading. A zero reading with no error means no
// snapshot has been saved yet.
func (r *ReadingSQLite) Load(ctx context.Context) (models.IntensityReading, error) {
	row := r.db.QueryRowContext(ctx, selectReadingSQL, latestReadingRowID)

	var (
		reading models.IntensityReading
		source  string
	)
	if err := row.Scan(&reading.Value, &source, &reading.Timestamp, &reading.Region); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.IntensityReading{}, nil
		}
		return models.IntensityReading{}, err
	}
	reading.Source = models.Source(source)
	reading.Timestamp = reading.Timestamp.UTC()
	return reading, nil
}
