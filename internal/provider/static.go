package provider

import (
	"context"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// Static serves a fixed constant reading. It never fails and exists for
// deployments with neither a live API nor a local series configured.
type Static struct {
	value  float64
	region string

	now func() time.Time
}

// NewStatic returns a constant provider. A non-positive value falls back
// to DefaultIntensityGCO2PerKWh.
func NewStatic(value float64, region string) *Static {
	if value <= 0 {
		value = DefaultIntensityGCO2PerKWh
	}
	return &Static{value: value, region: region, now: time.Now}
}

// GetIntensity returns the constant. The horizon is irrelevant to a
// constant source and is ignored.
func (s *Static) GetIntensity(ctx context.Context, horizonHours int) (models.IntensityReading, error) {
	return models.IntensityReading{
		Value:     s.value,
		Source:    models.SourceDefault,
		Timestamp: s.now().UTC(),
		Region:    s.region,
	}, nil
}
