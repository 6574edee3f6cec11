package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// DecisionLogEntry compares a naive (run-now) decision against the
// carbon-aware one actually acted on.
type DecisionLogEntry struct {
	Timestamp time.Time    `json:"timestamp"`
	Region    string       `json:"region,omitempty"`
	NaiveRun  DecisionSide `json:"naive_run"`
	GreenRun  DecisionSide `json:"green_run"`
	Savings   Savings      `json:"savings"`
}

type DecisionSide struct {
	CarbonIntensity float64 `json:"carbon_intensity"`
	DeferredSeconds int     `json:"deferred_seconds,omitempty"`
}

type Savings struct {
	GCO2PerKWhAvoided float64 `json:"gco2_per_kwh_avoided"`
}

// DecisionLog appends entries to a JSON array file, rewriting the file on
// each append. Suited to the CLI's per-run cadence, not high throughput.
type DecisionLog struct {
	mu   sync.Mutex
	path string
}

func NewDecisionLog(path string) *DecisionLog {
	return &DecisionLog{path: path}
}

// Append records naive vs. acted-on decisions for one run attempt.
func (l *DecisionLog) Append(naive, green models.Decision, deferredSeconds int) error {
	entry := DecisionLogEntry{
		Timestamp: green.DecidedAt,
		Region:    green.Reading.Region,
		NaiveRun:  DecisionSide{CarbonIntensity: naive.Reading.Value},
		GreenRun: DecisionSide{
			CarbonIntensity: green.Reading.Value,
			DeferredSeconds: deferredSeconds,
		},
		Savings: Savings{GCO2PerKWhAvoided: naive.Reading.Value - green.Reading.Value},
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create decision log dir: %w", err)
		}
	}

	var entries []DecisionLogEntry
	if b, err := os.ReadFile(l.path); err == nil {
		// malformed existing content is discarded rather than blocking the run
		_ = json.Unmarshal(b, &entries)
	}
	entries = append(entries, entry)

	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal decision log: %w", err)
	}
	if err := os.WriteFile(l.path, b, 0o644); err != nil {
		return fmt.Errorf("write decision log: %w", err)
	}
	return nil
}
