// Package scheduler turns one intensity reading and a policy into a
// run/defer decision. It is a pure decision function: it never sleeps,
// never retries, and never substitutes a default when the provider fails.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/provider"
)

// Decision reason strings. Tests and downstream reporting match on these.
const (
	ReasonBelowThreshold = "below threshold"
	ReasonNoDeferral     = "above threshold; no deferral configured"
)

type Scheduler struct {
	provider provider.Provider
}

func New(p provider.Provider) *Scheduler {
	return &Scheduler{provider: p}
}

var validate = validator.New()

// ShouldRun obtains one reading (honoring policy.HorizonHours) and compares
// it against the threshold. The comparison is inclusive: a reading exactly
// at the threshold runs. Provider errors propagate unmodified; no decision
// is fabricated for missing data.
func (s *Scheduler) ShouldRun(ctx context.Context, policy models.SchedulingPolicy) (models.Decision, error) {
	if err := validate.Struct(policy); err != nil {
		return models.Decision{}, fmt.Errorf("scheduling policy: %w", err)
	}

	reading, err := s.provider.GetIntensity(ctx, policy.HorizonHours)
	if err != nil {
		return models.Decision{}, err
	}

	decision := models.Decision{
		Reading:   reading,
		Policy:    policy,
		DecidedAt: time.Now().UTC(),
	}

	switch {
	case reading.Value <= policy.ThresholdGCO2PerKWh:
		decision.ShouldRun = true
		decision.Reason = ReasonBelowThreshold
	case policy.DeferSeconds > 0:
		decision.ShouldRun = false
		decision.Reason = fmt.Sprintf("above threshold; deferring %d seconds", policy.DeferSeconds)
	default:
		decision.ShouldRun = false
		decision.Reason = ReasonNoDeferral
	}
	return decision, nil
}
