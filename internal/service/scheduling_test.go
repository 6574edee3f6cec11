package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/scheduler"
)

type fakeIntensityProvider struct {
	reading models.IntensityReading
	err     error
}

func (f *fakeIntensityProvider) GetIntensity(ctx context.Context, horizonHours int) (models.IntensityReading, error) {
	if f.err != nil {
		return models.IntensityReading{}, f.err
	}
	return f.reading, nil
}

type fakeDecisionRepo struct {
	appended []models.Decision
	err      error
}

func (f *fakeDecisionRepo) Append(ctx context.Context, d models.Decision) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, d)
	return nil
}

func (f *fakeDecisionRepo) List(ctx context.Context, from, to time.Time) ([]models.Decision, error) {
	return f.appended, nil
}

func TestSchedulingDecide_AppendsDecision(t *testing.T) {
	t.Parallel()

	prov := &fakeIntensityProvider{reading: models.IntensityReading{Value: 150, Source: models.SourceLive}}
	repo := &fakeDecisionRepo{}
	svc := NewSchedulingService(scheduler.New(prov), repo)

	d, err := svc.Decide(context.Background(), models.SchedulingPolicy{ThresholdGCO2PerKWh: 200})
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if !d.ShouldRun {
		t.Error("expected run")
	}
	if len(repo.appended) != 1 {
		t.Fatalf("appended %d decisions, want 1", len(repo.appended))
	}
	if repo.appended[0].Reason != d.Reason {
		t.Errorf("persisted reason %q differs from returned %q", repo.appended[0].Reason, d.Reason)
	}
}

func TestSchedulingDecide_ProviderErrorAppendsNothing(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream down")
	repo := &fakeDecisionRepo{}
	svc := NewSchedulingService(scheduler.New(&fakeIntensityProvider{err: boom}), repo)

	_, err := svc.Decide(context.Background(), models.SchedulingPolicy{ThresholdGCO2PerKWh: 200})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if len(repo.appended) != 0 {
		t.Errorf("appended %d decisions for a failed lookup", len(repo.appended))
	}
}

func TestSchedulingDecide_AppendFailure(t *testing.T) {
	t.Parallel()

	prov := &fakeIntensityProvider{reading: models.IntensityReading{Value: 150, Source: models.SourceLive}}
	svc := NewSchedulingService(scheduler.New(prov), &fakeDecisionRepo{err: errors.New("locked")})

	if _, err := svc.Decide(context.Background(), models.SchedulingPolicy{ThresholdGCO2PerKWh: 200}); err == nil {
		t.Fatal("expected append error to surface")
	}
}
