package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/measure"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// maxDeferSeconds caps one in-process deferral wait.
const maxDeferSeconds = 300

// ErrDeferred is returned when the decision is "don't run" and the policy
// configures no deferral. No job ran and no evidence was recorded.
var ErrDeferred = errors.New("run deferred: intensity above threshold and no deferral configured")

// RunRecorder receives one evidence record per completed run. Satisfied by
// the sqlite run repository and the CSV evidence recorder.
type RunRecorder interface {
	Append(ctx context.Context, rec models.RunRecord) error
}

// RunParams describes one carbon-aware run request.
type RunParams struct {
	Policy models.SchedulingPolicy
	Job    measure.Job

	// WaitForGreen selects the carbon-aware path: defer per policy when
	// above threshold, then run after one re-check regardless. When false
	// the job runs immediately and the decision is recorded for comparison.
	WaitForGreen bool

	Phase    string
	Task     string
	Dataset  string
	Hardware string
	Region   string
	Notes    string

	// MetricName/MetricFrom extract the quality metric from the job's
	// opaque result. MetricFrom may be nil.
	MetricName string
	MetricFrom func(result any) (float64, bool)
}

// RunReport pairs the evidence record with the decisions that led to it.
type RunReport struct {
	Record        models.RunRecord
	FirstDecision models.Decision
	FinalDecision models.Decision
	DeferredS     int
}

type RunnerService struct {
	scheduling Scheduling
	measurer   *measure.Measurer
	recorder   RunRecorder

	sleep func(ctx context.Context, d time.Duration) error // injectable for tests

	// LastReport captures the most recent successful run's decisions for
	// callers that log naive-vs-green comparisons.
	lastReport *RunReport
}

func NewRunnerService(scheduling Scheduling, measurer *measure.Measurer, recorder RunRecorder) *RunnerService {
	return &RunnerService{
		scheduling: scheduling,
		measurer:   measurer,
		recorder:   recorder,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RunOnce performs one run attempt. The record is appended only when the
// job completed; a failing job's error propagates unchanged with no
// evidence written.
func (r *RunnerService) RunOnce(ctx context.Context, p RunParams) (models.RunRecord, error) {
	first, err := r.scheduling.Decide(ctx, p.Policy)
	if err != nil {
		return models.RunRecord{}, err
	}

	final := first
	deferredS := 0
	if p.WaitForGreen && !first.ShouldRun {
		if p.Policy.DeferSeconds <= 0 {
			return models.RunRecord{}, ErrDeferred
		}
		deferredS = p.Policy.DeferSeconds
		if deferredS > maxDeferSeconds {
			deferredS = maxDeferSeconds
		}
		if err := r.sleep(ctx, time.Duration(deferredS)*time.Second); err != nil {
			return models.RunRecord{}, err
		}
		// one re-check; after the wait the run proceeds either way, the
		// decision log shows whether it was forced
		final, err = r.scheduling.Decide(ctx, p.Policy)
		if err != nil {
			return models.RunRecord{}, err
		}
	}

	startedAt := time.Now().UTC()
	result, energy, err := r.measurer.Measure(ctx, p.Job)
	if err != nil {
		return models.RunRecord{}, err
	}

	emissions := measure.Emissions(energy, final.Reading)

	rec := models.RunRecord{
		RunID:     uuid.NewString(),
		Phase:     p.Phase,
		Task:      p.Task,
		Dataset:   p.Dataset,
		Hardware:  p.Hardware,
		Region:    readingRegion(final.Reading, p.Region),
		Timestamp: startedAt,
		EnergyKWh: energy.EnergyKWh,
		KgCO2e:    emissions.KgCO2e,
		RuntimeS:  energy.RuntimeS,
		Method:    energy.Method,
		Notes:     p.Notes,
	}
	rec.QualityMetricName = p.MetricName
	if p.MetricFrom != nil {
		if v, ok := p.MetricFrom(result); ok {
			rec.QualityMetricValue = v
		}
	}
	if rec.Notes == "" {
		rec.Notes = string(energy.Method)
	}

	if err := r.recorder.Append(ctx, rec); err != nil {
		return models.RunRecord{}, fmt.Errorf("record run %s: %w", rec.RunID, err)
	}

	r.lastReport = &RunReport{
		Record:        rec,
		FirstDecision: first,
		FinalDecision: final,
		DeferredS:     deferredS,
	}
	return rec, nil
}

// LastReport returns decisions behind the most recent successful RunOnce,
// or nil when none completed yet.
func (r *RunnerService) LastReport() *RunReport { return r.lastReport }

func readingRegion(reading models.IntensityReading, fallback string) string {
	if reading.Region != "" {
		return reading.Region
	}
	return fallback
}
