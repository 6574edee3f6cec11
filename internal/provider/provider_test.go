package provider

import (
	"testing"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

func TestNew_ModeValidation(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Mode: "solar"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, err := New(Config{Mode: ModeCSV}); err == nil {
		t.Fatal("expected error for csv mode without a path")
	}
	if _, err := New(Config{Mode: ModeDefault}); err != nil {
		t.Fatalf("default mode: %v", err)
	}
}

func TestNew_ReturnsMatchingProvider(t *testing.T) {
	t.Parallel()

	p, err := New(Config{Mode: ModeLive, Region: "GB"})
	if err != nil {
		t.Fatalf("live: %v", err)
	}
	if _, ok := p.(*Live); !ok {
		t.Errorf("mode live produced %T", p)
	}

	p, err = New(Config{Mode: ModeCSV, CSVPath: "series.csv"})
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if _, ok := p.(*CSV); !ok {
		t.Errorf("mode csv produced %T", p)
	}

	p, err = New(Config{Mode: ModeDefault})
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if _, ok := p.(*Static); !ok {
		t.Errorf("mode default produced %T", p)
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewStatic(0, "GB")
	s.now = func() time.Time { return now }

	for _, horizon := range []int{0, 12, 48} {
		got, err := s.GetIntensity(testCtx(t), horizon)
		if err != nil {
			t.Fatalf("horizon %d: %v", horizon, err)
		}
		if got.Value != DefaultIntensityGCO2PerKWh {
			t.Errorf("value = %v, want %v", got.Value, DefaultIntensityGCO2PerKWh)
		}
		if got.Source != models.SourceDefault {
			t.Errorf("source = %q, want %q", got.Source, models.SourceDefault)
		}
		if !got.Timestamp.Equal(now) {
			t.Errorf("timestamp = %v, want %v", got.Timestamp, now)
		}
	}
}

func TestStatic_CustomValue(t *testing.T) {
	t.Parallel()

	s := NewStatic(42, "")
	got, err := s.GetIntensity(testCtx(t), 0)
	if err != nil {
		t.Fatalf("GetIntensity: %v", err)
	}
	if got.Value != 42 {
		t.Errorf("value = %v, want 42", got.Value)
	}
}
