package service

import (
	"context"
	"fmt"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/repository"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/scheduler"
)

// SchedulingService wraps the pure scheduler and persists every decision
// it produces.
type SchedulingService struct {
	sched     *scheduler.Scheduler
	decisions repository.DecisionRepo
}

func NewSchedulingService(sched *scheduler.Scheduler, decisions repository.DecisionRepo) *SchedulingService {
	return &SchedulingService{sched: sched, decisions: decisions}
}

// Decide obtains one decision and appends it to the decision log. Provider
// errors propagate unmodified and nothing is appended for them: absence of
// data is not a decision.
func (s *SchedulingService) Decide(ctx context.Context, policy models.SchedulingPolicy) (models.Decision, error) {
	decision, err := s.sched.ShouldRun(ctx, policy)
	if err != nil {
		return models.Decision{}, err
	}
	if err := s.decisions.Append(ctx, decision); err != nil {
		return models.Decision{}, fmt.Errorf("record decision: %w", err)
	}
	return decision, nil
}
