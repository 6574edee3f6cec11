package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// CSV serves readings from a local time-series file with columns
// timestamp,intensity[,region]. The file is read on every call so an
// updated series takes effect without restarting.
//
// A series spanning less than 24 hours is treated as a repeating daily
// cycle: each row stands for its time-of-day on every day.
type CSV struct {
	path   string
	region string

	now func() time.Time // overridable in tests
}

func NewCSV(path, region string) *CSV {
	return &CSV{path: path, region: region, now: time.Now}
}

// Column names required (or recognized) in the header.
const (
	colTimestamp = "timestamp"
	colIntensity = "intensity"
	colRegion    = "region"
)

// Accepted timestamp layouts, tried in order.
var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

type csvRow struct {
	ts     time.Time
	value  float64
	region string
}

// GetIntensity returns the row in effect now, or the minimum-intensity row
// inside [now, now+horizonHours] when horizonHours > 0.
func (c *CSV) GetIntensity(ctx context.Context, horizonHours int) (models.IntensityReading, error) {
	select {
	case <-ctx.Done():
		return models.IntensityReading{}, ctx.Err()
	default:
	}

	rows, err := c.load()
	if err != nil {
		return models.IntensityReading{}, err
	}

	now := c.now().UTC()
	cycle := seriesSpan(rows) < 24*time.Hour

	if horizonHours > 0 {
		return c.minWithinHorizon(rows, now, horizonHours, cycle)
	}
	return c.currentRow(rows, now, cycle)
}

func (c *CSV) load() ([]csvRow, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, &DataError{Path: c.path, Reason: "open", Err: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &DataError{Path: c.path, Reason: "read", Err: err}
	}
	if len(records) == 0 {
		return nil, &DataError{Path: c.path, Reason: "empty file"}
	}

	tsIdx, valIdx, regIdx := -1, -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case colTimestamp:
			tsIdx = i
		case colIntensity:
			valIdx = i
		case colRegion:
			regIdx = i
		}
	}
	if tsIdx < 0 || valIdx < 0 {
		return nil, &DataError{Path: c.path,
			Reason: fmt.Sprintf("missing required columns %q and/or %q", colTimestamp, colIntensity)}
	}

	rows := make([]csvRow, 0, len(records)-1)
	for n, rec := range records[1:] {
		ts, err := parseCSVTime(rec[tsIdx])
		if err != nil {
			return nil, &DataError{Path: c.path, Reason: fmt.Sprintf("row %d: bad timestamp %q", n+2, rec[tsIdx]), Err: err}
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[valIdx]), 64)
		if err != nil {
			return nil, &DataError{Path: c.path, Reason: fmt.Sprintf("row %d: bad intensity %q", n+2, rec[valIdx]), Err: err}
		}
		if value < 0 {
			return nil, &DataError{Path: c.path, Reason: fmt.Sprintf("row %d: negative intensity %v", n+2, value)}
		}
		row := csvRow{ts: ts.UTC(), value: value}
		if regIdx >= 0 && regIdx < len(rec) {
			row.region = strings.TrimSpace(rec[regIdx])
		}
		rows = append(rows, row)
	}

	// Region filter applies only when the column exists.
	if c.region != "" && regIdx >= 0 {
		filtered := rows[:0]
		for _, row := range rows {
			if strings.EqualFold(row.region, c.region) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	if len(rows) == 0 {
		return nil, &DataError{Path: c.path, Reason: fmt.Sprintf("no rows for region %q", c.region)}
	}
	return rows, nil
}

func parseCSVTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range csvTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func seriesSpan(rows []csvRow) time.Duration {
	if len(rows) == 0 {
		return 0
	}
	minTS, maxTS := rows[0].ts, rows[0].ts
	for _, r := range rows[1:] {
		if r.ts.Before(minTS) {
			minTS = r.ts
		}
		if r.ts.After(maxTS) {
			maxTS = r.ts
		}
	}
	return maxTS.Sub(minTS)
}

// anchorToDay maps ts's time-of-day onto the day of ref.
func anchorToDay(ts, ref time.Time) time.Time {
	y, m, d := ref.Date()
	return time.Date(y, m, d, ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
}

// occurrenceAtOrBefore returns the latest daily occurrence of ts's
// time-of-day that is not after now.
func occurrenceAtOrBefore(ts, now time.Time) time.Time {
	occ := anchorToDay(ts, now)
	if occ.After(now) {
		occ = occ.Add(-24 * time.Hour)
	}
	return occ
}

// nextOccurrence returns the earliest daily occurrence of ts's time-of-day
// that is not before now.
func nextOccurrence(ts, now time.Time) time.Time {
	occ := anchorToDay(ts, now)
	if occ.Before(now) {
		occ = occ.Add(24 * time.Hour)
	}
	return occ
}

func (c *CSV) currentRow(rows []csvRow, now time.Time, cycle bool) (models.IntensityReading, error) {
	var (
		found   bool
		best    csvRow
		bestOcc time.Time
	)
	for _, row := range rows {
		occ := row.ts
		if cycle {
			occ = occurrenceAtOrBefore(row.ts, now)
		} else if row.ts.After(now) {
			continue
		}
		if !found || occ.After(bestOcc) {
			found = true
			best = row
			bestOcc = occ
		}
	}
	if !found {
		return models.IntensityReading{}, &DataError{Path: c.path, Reason: "no row at or before now"}
	}
	return models.IntensityReading{
		Value:     best.value,
		Source:    models.SourceCSV,
		Timestamp: bestOcc,
		Region:    c.readingRegion(best),
	}, nil
}

// minWithinHorizon picks the minimum-intensity row whose (possibly
// wrapped) occurrence falls in [now, now+horizon]. Ties break to the
// earliest occurrence, independent of row order in the file.
func (c *CSV) minWithinHorizon(rows []csvRow, now time.Time, horizonHours int, cycle bool) (models.IntensityReading, error) {
	until := now.Add(time.Duration(horizonHours) * time.Hour)

	var (
		found   bool
		best    csvRow
		bestOcc time.Time
	)
	for _, row := range rows {
		occ := row.ts
		if cycle {
			occ = nextOccurrence(row.ts, now)
		}
		if occ.Before(now) || occ.After(until) {
			continue
		}
		if !found || row.value < best.value || (row.value == best.value && occ.Before(bestOcc)) {
			found = true
			best = row
			bestOcc = occ
		}
	}
	if !found {
		return models.IntensityReading{}, &DataError{Path: c.path,
			Reason: fmt.Sprintf("no rows within %dh horizon", horizonHours)}
	}
	return models.IntensityReading{
		Value:     best.value,
		Source:    models.SourceForecast,
		Timestamp: bestOcc,
		Region:    c.readingRegion(best),
	}, nil
}

func (c *CSV) readingRegion(row csvRow) string {
	if row.region != "" {
		return row.region
	}
	return c.region
}
