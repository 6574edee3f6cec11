package service

import (
	"context"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/logger"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/provider"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/repository"
)

// MonitorService polls the provider on a ticker and keeps the latest
// reading snapshot persisted for cheap serving. Stop via context
// cancellation in main().
type MonitorService struct {
	provider provider.Provider
	readings repository.ReadingRepo
	log      *logger.Logger
}

func NewMonitorService(prov provider.Provider, readings repository.ReadingRepo) *MonitorService {
	return &MonitorService{provider: prov, readings: readings}
}

// WithLogger attaches a logger for poll failures; nil is tolerated.
func (s *MonitorService) WithLogger(log *logger.Logger) *MonitorService {
	s.log = log
	return s
}

// Run polls at the given interval until ctx is canceled. Poll failures are
// logged and skipped; the previous snapshot stays in place, and staleness
// is visible through the reading's own timestamp.
func (s *MonitorService) Run(ctx context.Context, tick time.Duration) {
	s.pollOnce(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.pollOnce(ctx)
		}
	}
}

func (s *MonitorService) pollOnce(ctx context.Context) {
	reading, err := s.provider.GetIntensity(ctx, 0)
	if err != nil {
		if s.log != nil {
			s.log.Errorw("intensity_poll_failed", "err", err)
		}
		return
	}
	if err := s.readings.Save(ctx, reading); err != nil && s.log != nil {
		s.log.Errorw("intensity_snapshot_save_failed", "err", err)
	}
}

// Latest returns the stored snapshot, falling back to a direct provider
// call when nothing has been stored yet.
func (s *MonitorService) Latest(ctx context.Context) (models.IntensityReading, error) {
	reading, err := s.readings.Load(ctx)
	if err != nil {
		return models.IntensityReading{}, err
	}
	if reading.Source == "" {
		return s.provider.GetIntensity(ctx, 0)
	}
	return reading, nil
}

// Lookup answers a horizon query straight from the provider; horizon
// readings are windows, not snapshots, so they are never cached.
func (s *MonitorService) Lookup(ctx context.Context, horizonHours int) (models.IntensityReading, error) {
	if horizonHours <= 0 {
		return s.Latest(ctx)
	}
	return s.provider.GetIntensity(ctx, horizonHours)
}
