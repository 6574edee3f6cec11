// Package evidence provides file-based recorders for completed runs and
// scheduling decisions: an append-only CSV evidence log and a JSON
// decision log. The sqlite-backed recorders live in internal/repository;
// these are the formats the CLI writes.
package evidence

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// evidenceHeader is the column order of the evidence CSV. Stable: audit
// tooling downstream keys on these names.
var evidenceHeader = []string{
	"run_id",
	"phase",
	"task",
	"dataset",
	"hardware",
	"region",
	"timestamp_utc",
	"kWh",
	"kgCO2e",
	"water_L",
	"runtime_s",
	"quality_metric_name",
	"quality_metric_value",
	"notes",
}

// CSVRecorder appends one row per completed run to a CSV file, writing
// the header once when the file is created.
type CSVRecorder struct {
	mu   sync.Mutex
	path string
}

func NewCSVRecorder(path string) *CSVRecorder {
	return &CSVRecorder{path: path}
}

// Append writes one evidence row. Named to satisfy the same interface as
// the sqlite run repository.
func (r *CSVRecorder) Append(ctx context.Context, rec models.RunRecord) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create evidence dir: %w", err)
		}
	}

	_, statErr := os.Stat(r.path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open evidence file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(evidenceHeader); err != nil {
			return fmt.Errorf("write evidence header: %w", err)
		}
	}
	if err := w.Write(evidenceRow(rec)); err != nil {
		return fmt.Errorf("write evidence row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func evidenceRow(rec models.RunRecord) []string {
	waterL := ""
	if rec.WaterL > 0 {
		waterL = strconv.FormatFloat(rec.WaterL, 'f', 6, 64)
	}
	return []string{
		rec.RunID,
		rec.Phase,
		rec.Task,
		rec.Dataset,
		rec.Hardware,
		rec.Region,
		rec.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatFloat(rec.EnergyKWh, 'f', 8, 64),
		strconv.FormatFloat(rec.KgCO2e, 'f', 8, 64),
		waterL,
		strconv.FormatFloat(rec.RuntimeS, 'f', 6, 64),
		rec.QualityMetricName,
		strconv.FormatFloat(rec.QualityMetricValue, 'f', 6, 64),
		rec.Notes,
	}
}
