package service

import (
	"context"
	"errors"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/repository"
)

// EvidenceService exposes the append-only run and decision logs.
type EvidenceService struct {
	runs      repository.RunRepo
	decisions repository.DecisionRepo
}

func NewEvidenceService(runs repository.RunRepo, decisions repository.DecisionRepo) *EvidenceService {
	return &EvidenceService{runs: runs, decisions: decisions}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, errInvalidTimeRange
	}
	return from, to, nil
}

func (s *EvidenceService) Runs(ctx context.Context, f LogFilter) ([]models.RunRecord, error) {
	from, to, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.runs.List(ctx, from, to)
}

func (s *EvidenceService) Decisions(ctx context.Context, f LogFilter) ([]models.Decision, error) {
	from, to, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.decisions.List(ctx, from, to)
}
