package evidence

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

func sampleRecord(id string) models.RunRecord {
	return models.RunRecord{
		RunID:              id,
		Phase:              "optimized",
		Task:               "regression",
		Dataset:            "synthetic",
		Hardware:           "CPU_amd64",
		Region:             "GB",
		Timestamp:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		EnergyKWh:          0.00020833,
		KgCO2e:             0.00003125,
		RuntimeS:           7.5,
		QualityMetricName:  "MAE",
		QualityMetricValue: 4.112,
		Notes:              "proxy",
	}
}

func readAllRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return rows
}

func TestCSVRecorder_HeaderWrittenOnce(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "evidence.csv")
	rec := NewCSVRecorder(path)

	if err := rec.Append(context.Background(), sampleRecord("run-1")); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := rec.Append(context.Background(), sampleRecord("run-2")); err != nil {
		t.Fatalf("second append: %v", err)
	}

	rows := readAllRows(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	for i, col := range evidenceHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "run-1" || rows[2][0] != "run-2" {
		t.Errorf("rows out of order: %q, %q", rows[1][0], rows[2][0])
	}
}

func TestCSVRecorder_RowFormatting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "evidence.csv")
	if err := NewCSVRecorder(path).Append(context.Background(), sampleRecord("run-1")); err != nil {
		t.Fatalf("append: %v", err)
	}

	row := readAllRows(t, path)[1]
	if got := row[6]; got != "2026-03-01T12:00:00Z" {
		t.Errorf("timestamp = %q", got)
	}
	if got := row[7]; got != "0.00020833" {
		t.Errorf("kWh = %q", got)
	}
	if got := row[8]; got != "0.00003125" {
		t.Errorf("kgCO2e = %q", got)
	}
	if got := row[9]; got != "" {
		t.Errorf("water column = %q, want empty when unmeasured", got)
	}
	if got := row[10]; got != "7.500000" {
		t.Errorf("runtime = %q", got)
	}
}

func TestCSVRecorder_CreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "results", "nested", "evidence.csv")
	if err := NewCSVRecorder(path).Append(context.Background(), sampleRecord("run-1")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(readAllRows(t, path)) != 2 {
		t.Error("expected header plus one row")
	}
}

func TestDecisionLog_AppendsEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "decisions.json")
	log := NewDecisionLog(path)

	naive := models.Decision{
		Reading: models.IntensityReading{Value: 250, Region: "GB"},
	}
	green := models.Decision{
		Reading:   models.IntensityReading{Value: 120, Region: "GB"},
		DecidedAt: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
	}

	if err := log.Append(naive, green, 300); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := log.Append(naive, naive, 0); err != nil {
		t.Fatalf("second append: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var entries []DecisionLogEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	first := entries[0]
	if first.NaiveRun.CarbonIntensity != 250 || first.GreenRun.CarbonIntensity != 120 {
		t.Errorf("intensities = %v / %v", first.NaiveRun.CarbonIntensity, first.GreenRun.CarbonIntensity)
	}
	if first.GreenRun.DeferredSeconds != 300 {
		t.Errorf("deferred = %d, want 300", first.GreenRun.DeferredSeconds)
	}
	if first.Savings.GCO2PerKWhAvoided != 130 {
		t.Errorf("savings = %v, want 130", first.Savings.GCO2PerKWhAvoided)
	}
	if entries[1].Savings.GCO2PerKWhAvoided != 0 {
		t.Errorf("no-deferral savings = %v, want 0", entries[1].Savings.GCO2PerKWhAvoided)
	}
}

func TestDecisionLog_MalformedFileDiscarded(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "decisions.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	log := NewDecisionLog(path)
	d := models.Decision{Reading: models.IntensityReading{Value: 100}}
	if err := log.Append(d, d, 0); err != nil {
		t.Fatalf("append: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var entries []DecisionLogEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
}
