// Package provider supplies grid carbon-intensity readings from one of
// several sources: a live intensity API, a local CSV time series, or a
// fixed default constant.
//
// Every non-default source fails loudly. A reading that cannot be obtained
// is a *ProviderError (remote source) or *DataError (local file), never a
// silently substituted constant; callers choose their own fallback policy.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// Provider yields a representative carbon-intensity reading for "now", or
// for the lowest-intensity window inside the next horizonHours when
// horizonHours > 0.
type Provider interface {
	GetIntensity(ctx context.Context, horizonHours int) (models.IntensityReading, error)
}

// Modes accepted by Config.Mode.
const (
	ModeLive    = "live"
	ModeCSV     = "csv"
	ModeDefault = "default"
)

const (
	// DefaultEndpoint is the UK National Grid carbon-intensity API.
	DefaultEndpoint = "https://api.carbonintensity.org.uk"

	// DefaultIntensityGCO2PerKWh is the constant served by the default
	// mode when no explicit value is configured.
	DefaultIntensityGCO2PerKWh = 250.0

	defaultTimeout = 8 * time.Second
)

// Config is the full provider configuration. It is read once at
// construction; providers never consult ambient globals.
type Config struct {
	Mode             string        `mapstructure:"mode" validate:"required,oneof=live csv default"`
	Endpoint         string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Region           string        `mapstructure:"region"`
	Timeout          time.Duration `mapstructure:"timeout"`
	CSVPath          string        `mapstructure:"csv_path" validate:"required_if=Mode csv"`
	DefaultIntensity float64       `mapstructure:"default_gco2_per_kwh" validate:"gte=0"`
}

var validate = validator.New()

// Validate checks structural constraints on the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("provider config: %w", err)
	}
	return nil
}

// New builds the provider selected by cfg.Mode.
func New(cfg Config) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case ModeLive:
		return NewLive(cfg), nil
	case ModeCSV:
		return NewCSV(cfg.CSVPath, cfg.Region), nil
	case ModeDefault:
		return NewStatic(cfg.DefaultIntensity, cfg.Region), nil
	default:
		// unreachable after Validate; kept for exhaustiveness
		return nil, fmt.Errorf("provider config: unknown mode %q", cfg.Mode)
	}
}
