package models

import "time"

// Source identifies where an intensity reading came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCSV      Source = "csv"
	SourceDefault  Source = "default"
	SourceForecast Source = "forecast"
)

// Method identifies how an energy figure was obtained.
type Method string

const (
	MethodSensor Method = "sensor"
	MethodProxy  Method = "proxy"
)

// IntensityReading is one grid carbon-intensity value.
// Value is gCO2/kWh and is never negative. When Source is "forecast",
// Timestamp is the start of the selected forecast window, not fetch time.
type IntensityReading struct {
	Value     float64   `json:"value_gco2_per_kwh"`
	Source    Source    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Region    string    `json:"region,omitempty"`
}

// SchedulingPolicy is immutable per decision call.
type SchedulingPolicy struct {
	ThresholdGCO2PerKWh float64 `json:"threshold_gco2_per_kwh" validate:"gte=0"`
	DeferSeconds        int     `json:"defer_seconds,omitempty" validate:"gte=0"`
	HorizonHours        int     `json:"horizon_hours,omitempty" validate:"gte=0"`
}

// Decision is created once per scheduling call and persisted verbatim.
type Decision struct {
	DecisionID string           `json:"decision_id,omitempty"`
	ShouldRun  bool             `json:"should_run"`
	Reading    IntensityReading `json:"reading"`
	Policy     SchedulingPolicy `json:"policy"`
	DecidedAt  time.Time        `json:"decided_at"`
	Reason     string           `json:"reason"`
}

// EnergyResult reports runtime and energy for one completed job.
// AssumedKW is populated only when Method is "proxy".
type EnergyResult struct {
	RuntimeS  float64 `json:"runtime_s"`
	EnergyKWh float64 `json:"energy_kwh"`
	Method    Method  `json:"method"`
	AssumedKW float64 `json:"assumed_kw,omitempty"`
}

// EmissionsResult is energy converted to mass of CO2-equivalent under one
// intensity reading.
type EmissionsResult struct {
	KgCO2e        float64          `json:"kgco2e"`
	IntensityUsed IntensityReading `json:"intensity_used"`
}

// RunRecord is one evidence row for a completed run.
type RunRecord struct {
	RunID              string    `json:"run_id"`
	Phase              string    `json:"phase"` // baseline | optimized
	Task               string    `json:"task"`
	Dataset            string    `json:"dataset"`
	Hardware           string    `json:"hardware"`
	Region             string    `json:"region,omitempty"`
	Timestamp          time.Time `json:"timestamp_utc"`
	EnergyKWh          float64   `json:"kwh"`
	KgCO2e             float64   `json:"kgco2e"`
	WaterL             float64   `json:"water_l,omitempty"`
	RuntimeS           float64   `json:"runtime_s"`
	Method             Method    `json:"method"`
	QualityMetricName  string    `json:"quality_metric_name,omitempty"`
	QualityMetricValue float64   `json:"quality_metric_value,omitempty"`
	Notes              string    `json:"notes,omitempty"`
}

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // never expose the hash
}
