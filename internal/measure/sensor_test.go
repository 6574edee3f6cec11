package measure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakePowercap builds a powercap tree with one package zone whose counter
// starts at startUJ.
func fakePowercap(t *testing.T, startUJ string) string {
	t.Helper()
	root := t.TempDir()
	zone := filepath.Join(root, "intel-rapl:0")
	if err := os.MkdirAll(zone, 0o755); err != nil {
		t.Fatalf("mkdir zone: %v", err)
	}
	// a subzone must be ignored or energy would be counted twice
	sub := filepath.Join(root, "intel-rapl:0:0")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir subzone: %v", err)
	}
	writeCounter(t, zone, startUJ)
	writeCounter(t, sub, "999999")
	return root
}

func writeCounter(t *testing.T, zone, uj string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(zone, "energy_uj"), []byte(uj+"\n"), 0o644); err != nil {
		t.Fatalf("write counter: %v", err)
	}
}

func TestRAPLSession_DeltaToKWh(t *testing.T) {
	root := fakePowercap(t, "1000000")
	s := newRAPLSessionAt(root)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// 3.6e12 uJ = 1 kWh; advance by half of that
	writeCounter(t, filepath.Join(root, "intel-rapl:0"), "1800001000000")

	kwh, err := s.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if want := 0.5; kwh != want {
		t.Errorf("kwh = %v, want %v", kwh, want)
	}
}

func TestRAPLSession_MissingTreeIsRecoverable(t *testing.T) {
	s := newRAPLSessionAt(filepath.Join(t.TempDir(), "absent"))

	err := s.Start(context.Background())
	if err == nil {
		t.Fatal("expected error for missing powercap tree")
	}
	var me *MeasurementError
	if errors.As(err, &me) {
		t.Fatalf("missing sensor must be a plain error, got %v", err)
	}
	// the process-wide bracket must have been released
	s2 := newRAPLSessionAt(fakePowercap(t, "0"))
	if err := s2.Start(context.Background()); err != nil {
		t.Fatalf("bracket not released after failed Start: %v", err)
	}
	if _, err := s2.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestRAPLSession_Exclusive(t *testing.T) {
	root := fakePowercap(t, "5000")
	s1 := newRAPLSessionAt(root)
	s2 := newRAPLSessionAt(root)

	if err := s1.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	err := s2.Start(context.Background())
	var me *MeasurementError
	if !errors.As(err, &me) {
		t.Fatalf("second Start: err = %v, want *MeasurementError", err)
	}

	if _, err := s1.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// released now, a fresh bracket may open
	if err := s2.Start(context.Background()); err != nil {
		t.Fatalf("Start after release: %v", err)
	}
	if _, err := s2.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestRAPLSession_CounterWrap(t *testing.T) {
	root := fakePowercap(t, "1000000")
	s := newRAPLSessionAt(root)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	writeCounter(t, filepath.Join(root, "intel-rapl:0"), "500")

	_, err := s.Stop()
	if err == nil {
		t.Fatal("expected error for a wrapped counter")
	}
	var me *MeasurementError
	if errors.As(err, &me) {
		t.Fatalf("wrap must be a sensor failure, not a protocol violation: %v", err)
	}
}

func TestRAPLSession_StopWithoutStart(t *testing.T) {
	s := newRAPLSessionAt(t.TempDir())

	_, err := s.Stop()
	var me *MeasurementError
	if !errors.As(err, &me) {
		t.Fatalf("err = %v, want *MeasurementError", err)
	}
}
