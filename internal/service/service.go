package service

import (
	"context"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/measure"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/provider"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/repository"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/scheduler"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Scheduling produces run/defer decisions and appends each one to the
// decision log.
type Scheduling interface {
	Decide(ctx context.Context, policy models.SchedulingPolicy) (models.Decision, error)
}

// Runner executes one carbon-aware run end to end: decide, optionally
// defer, measure, convert, record.
type Runner interface {
	RunOnce(ctx context.Context, p RunParams) (models.RunRecord, error)
}

// Evidence exposes the append-only run and decision logs with time filters.
type Evidence interface {
	Runs(ctx context.Context, f LogFilter) ([]models.RunRecord, error)
	Decisions(ctx context.Context, f LogFilter) ([]models.Decision, error)
}

// Monitor keeps a fresh intensity snapshot. Run ticks until ctx is
// canceled; Lookup answers horizon queries straight from the provider.
type Monitor interface {
	Run(ctx context.Context, tick time.Duration)
	Latest(ctx context.Context) (models.IntensityReading, error)
	Lookup(ctx context.Context, horizonHours int) (models.IntensityReading, error)
}

// LogFilter bounds a listing by inclusive time range; zero means unbounded.
type LogFilter struct {
	From time.Time
	To   time.Time
}

// Service aggregates all sub-services.
type Service struct {
	Scheduling
	Runner
	Evidence
	Monitor
	Authorization
}

// NewService wires the repository layer, provider and measurer into
// concrete services.
func NewService(repos *repository.Repository, prov provider.Provider, meas *measure.Measurer, auth AuthConfig) *Service {
	scheduling := NewSchedulingService(scheduler.New(prov), repos.Decisions)
	return &Service{
		Scheduling:    scheduling,
		Runner:        NewRunnerService(scheduling, meas, repos.Runs),
		Evidence:      NewEvidenceService(repos.Runs, repos.Decisions),
		Monitor:       NewMonitorService(prov, repos.Readings),
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
