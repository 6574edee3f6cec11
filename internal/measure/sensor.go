package measure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
)

// raplRoot is the Linux powercap interface exposing cumulative package
// energy counters in microjoules.
const raplRoot = "/sys/class/powercap"

const microjoulesPerKWh = 3.6e12

// One hardware bracket per process: the counters are shared, so two open
// sessions would double-count each other's draw.
var sessionActive atomic.Bool

// RAPLSession reads Intel RAPL energy counters around a job. Constructing
// it is cheap; availability is only probed at Start.
type RAPLSession struct {
	root    string
	zones   []string
	startUJ float64
	open    bool
}

func NewRAPLSession() *RAPLSession {
	return &RAPLSession{root: raplRoot}
}

// newRAPLSessionAt points the session at an alternate powercap tree.
func newRAPLSessionAt(root string) *RAPLSession {
	return &RAPLSession{root: root}
}

// Start claims the process-wide bracket and records the baseline counter.
// A second concurrent Start is a *MeasurementError. A missing or
// unreadable powercap tree is a plain error, which the measurer treats as
// "no sensor" and recovers from.
func (s *RAPLSession) Start(ctx context.Context) error {
	if s.open {
		return &MeasurementError{Reason: "session already started"}
	}
	if !sessionActive.CompareAndSwap(false, true) {
		return &MeasurementError{Reason: "another measurement session is active in this process"}
	}

	zones, err := raplZones(s.root)
	if err != nil || len(zones) == 0 {
		sessionActive.Store(false)
		if err == nil {
			err = fmt.Errorf("no rapl zones under %s", s.root)
		}
		return err
	}

	total, err := readCountersUJ(zones)
	if err != nil {
		sessionActive.Store(false)
		return err
	}

	s.zones = zones
	s.startUJ = total
	s.open = true
	return nil
}

// Stop releases the bracket and returns kWh consumed since Start.
func (s *RAPLSession) Stop() (float64, error) {
	if !s.open {
		return 0, &MeasurementError{Reason: "stop without start"}
	}
	s.open = false
	defer sessionActive.Store(false)

	total, err := readCountersUJ(s.zones)
	if err != nil {
		return 0, err
	}
	deltaUJ := total - s.startUJ
	if deltaUJ < 0 {
		// counter wrapped; without the per-zone max range the delta is
		// unusable, report it as a sensor failure
		return 0, fmt.Errorf("rapl counter wrapped")
	}
	return deltaUJ / microjoulesPerKWh, nil
}

// raplZones lists top-level package zones (intel-rapl:N), skipping
// subzones so energy is not counted twice.
func raplZones(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var zones []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "intel-rapl:") || strings.Count(name, ":") != 1 {
			continue
		}
		counter := filepath.Join(root, name, "energy_uj")
		if _, err := os.Stat(counter); err == nil {
			zones = append(zones, counter)
		}
	}
	return zones, nil
}

func readCountersUJ(paths []string) (float64, error) {
	var total float64
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", p, err)
		}
		total += v
	}
	return total, nil
}
