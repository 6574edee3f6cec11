// Package measure brackets execution of an opaque job and reports elapsed
// runtime plus an energy figure, from a hardware sensor when one is
// available and from an analytic proxy otherwise. Emissions conversion is
// a separate pure function so one energy figure can be priced under
// several intensity scenarios.
package measure

import (
	"context"
	"errors"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// Job is the unit of work being measured. Its error (or panic) is never
// masked by the measurement wrapper.
type Job func(ctx context.Context) (any, error)

// SensorSession is one exclusive hardware energy-tracking bracket.
// Start failing with *MeasurementError means a usage bug (double bracket);
// any other Start error means the sensor is simply unavailable, which is
// an expected condition handled by falling back to the proxy.
type SensorSession interface {
	Start(ctx context.Context) error
	// Stop ends the bracket and returns cumulative kWh since Start.
	Stop() (float64, error)
}

// MeasurementError indicates a sensor-protocol violation, e.g. opening a
// second bracket while one is active. It is fatal, not a fallback trigger.
type MeasurementError struct {
	Reason string
}

func (e *MeasurementError) Error() string { return "measurement: " + e.Reason }

// DefaultAssumedKW is a conservative CPU baseline draw (100 W).
const DefaultAssumedKW = 0.1

type Measurer struct {
	session   SensorSession
	assumedKW float64
	useSensor bool
}

// NewMeasurer builds a measurer. session may be nil, which forces the
// proxy path regardless of useSensor. A non-positive assumedKW falls back
// to DefaultAssumedKW.
func NewMeasurer(session SensorSession, assumedKW float64, useSensor bool) *Measurer {
	if assumedKW <= 0 {
		assumedKW = DefaultAssumedKW
	}
	return &Measurer{session: session, assumedKW: assumedKW, useSensor: useSensor}
}

// proxyEnergy is the analytic fallback: kW times hours. Multiplicative in
// runtime, so a zero-duration job yields exactly zero energy.
func proxyEnergy(runtimeS, assumedKW float64) float64 {
	return assumedKW * (runtimeS / 3600.0)
}

// Measure runs job and returns its result together with an EnergyResult.
//
// Runtime comes from the monotonic clock. If job fails, its error is
// returned unchanged and no EnergyResult is produced: a run that did not
// complete must never yield evidence. Sensor absence silently selects the
// proxy path; the chosen path is recorded in EnergyResult.Method.
func (m *Measurer) Measure(ctx context.Context, job Job) (any, models.EnergyResult, error) {
	sensorOn := false
	if m.useSensor && m.session != nil {
		err := m.session.Start(ctx)
		switch {
		case err == nil:
			sensorOn = true
		case isMeasurementError(err):
			return nil, models.EnergyResult{}, err
		default:
			// sensor unavailable: expected, take the proxy path
		}
	}

	start := time.Now()
	result, jobErr := job(ctx)
	runtimeS := time.Since(start).Seconds()

	if jobErr != nil {
		if sensorOn {
			_, _ = m.session.Stop()
		}
		return nil, models.EnergyResult{}, jobErr
	}

	if sensorOn {
		kwh, err := m.session.Stop()
		if err == nil && kwh >= 0 {
			return result, models.EnergyResult{
				RuntimeS:  runtimeS,
				EnergyKWh: kwh,
				Method:    models.MethodSensor,
			}, nil
		}
		// sensor read failed mid-flight: fall through to the proxy
	}

	return result, models.EnergyResult{
		RuntimeS:  runtimeS,
		EnergyKWh: proxyEnergy(runtimeS, m.assumedKW),
		Method:    models.MethodProxy,
		AssumedKW: m.assumedKW,
	}, nil
}

func isMeasurementError(err error) bool {
	var me *MeasurementError
	return errors.As(err, &me)
}

// Emissions converts an energy figure to kgCO2e under one intensity
// reading. Pure; never invoked implicitly by Measure.
func Emissions(e models.EnergyResult, r models.IntensityReading) models.EmissionsResult {
	return models.EmissionsResult{
		KgCO2e:        e.EnergyKWh * r.Value / 1000.0,
		IntensityUsed: r,
	}
}
