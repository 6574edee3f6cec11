// greenai is the one-shot carbon-aware runner: it decides whether to run
// the bundled training workload now, measures the run, and appends an
// evidence row to a CSV file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/evidence"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/logger"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/measure"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/provider"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/scheduler"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/service"
	"github.com/Satianurag/green-ai-carbon-scheduler/internal/workload"
)

type runFlags struct {
	mode           string
	ci             string
	ciCSV          string
	endpoint       string
	region         string
	threshold      float64
	deferSeconds   int
	maxWaitSeconds int
	horizonHours   int
	assumedKW      float64
	seed           int64
	out            string
	logDecision    string
	proxyEmissions bool
	task           string
	notes          string
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		fmt.Fprintln(os.Stderr, "usage: greenai run [flags]")
		os.Exit(2)
	}

	flags, err := parseRunFlags(os.Args[2:])
	if err != nil {
		os.Exit(2)
	}

	log := logger.Get(logger.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runOnce(ctx, flags, log); err != nil {
		if errors.Is(err, service.ErrDeferred) {
			log.Infow("run deferred", "reason", err.Error())
			return
		}
		log.Errorw("run failed", "err", err)
		os.Exit(1)
	}
}

func parseRunFlags(args []string) (runFlags, error) {
	var f runFlags
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&f.mode, "mode", "", "workload profile: baseline|optimized (required)")
	fs.StringVar(&f.ci, "ci", provider.ModeLive, "intensity source: live|csv|default")
	fs.StringVar(&f.ciCSV, "ci-csv", "", "path to intensity CSV when --ci csv")
	fs.StringVar(&f.endpoint, "endpoint", "", "override intensity API endpoint")
	fs.StringVar(&f.region, "region", "GB", "grid region code")
	fs.Float64Var(&f.threshold, "threshold", 200, "run when intensity <= threshold (gCO2/kWh)")
	fs.IntVar(&f.deferSeconds, "defer-seconds", 0, "wait this long when above threshold (0 = no deferral; optimized mode only, baseline never defers)")
	fs.IntVar(&f.maxWaitSeconds, "max-wait-seconds", 0, "upper bound on one deferral wait (0 = no extra bound)")
	fs.IntVar(&f.horizonHours, "horizon-hours", 0, "pick the greenest window within this horizon")
	fs.Float64Var(&f.assumedKW, "assumed-kw", measure.DefaultAssumedKW, "assumed power draw for proxy energy")
	fs.Int64Var(&f.seed, "seed", 42, "workload random seed")
	fs.StringVar(&f.out, "out", "", "path to evidence CSV (required)")
	fs.StringVar(&f.logDecision, "log-decision", "", "path to decision log JSON")
	fs.BoolVar(&f.proxyEmissions, "proxy-emissions", false, "skip the hardware sensor, always use proxy energy")
	fs.StringVar(&f.task, "task", "regression", "task label for the evidence row")
	fs.StringVar(&f.notes, "notes", "", "free-form note for the evidence row")

	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if f.mode != string(workload.ModeBaseline) && f.mode != string(workload.ModeOptimized) {
		fmt.Fprintln(os.Stderr, "--mode must be baseline or optimized")
		return f, fmt.Errorf("invalid mode")
	}
	if f.out == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		return f, fmt.Errorf("missing out path")
	}
	return f, nil
}

func runOnce(ctx context.Context, f runFlags, log *logger.Logger) error {
	prov, err := provider.New(provider.Config{
		Mode:     f.ci,
		Endpoint: f.endpoint,
		Region:   f.region,
		CSVPath:  f.ciCSV,
	})
	if err != nil {
		return err
	}

	var session measure.SensorSession
	if !f.proxyEmissions {
		session = measure.NewRAPLSession()
	}
	meas := measure.NewMeasurer(session, f.assumedKW, !f.proxyEmissions)

	runner := service.NewRunnerService(
		passthroughScheduling{sched: scheduler.New(prov)},
		meas,
		evidence.NewCSVRecorder(f.out),
	)

	deferSeconds := f.deferSeconds
	if f.maxWaitSeconds > 0 && deferSeconds > f.maxWaitSeconds {
		deferSeconds = f.maxWaitSeconds
	}

	rec, err := runner.RunOnce(ctx, service.RunParams{
		Policy: models.SchedulingPolicy{
			ThresholdGCO2PerKWh: f.threshold,
			DeferSeconds:        deferSeconds,
			HorizonHours:        f.horizonHours,
		},
		Job: workload.Job(workload.Mode(f.mode), f.seed),
		// the baseline profile runs immediately so naive and green runs
		// stay comparable; only the optimized profile waits for a window
		WaitForGreen: f.mode == string(workload.ModeOptimized),
		Phase:        f.mode,
		Task:         f.task,
		Dataset:      "synthetic",
		Hardware:     workload.DetectHardware(),
		Region:       f.region,
		Notes:        f.notes,
		MetricName:   "MAE",
		MetricFrom: func(result any) (float64, bool) {
			r, ok := result.(workload.Result)
			return r.MAE, ok
		},
	})
	if err != nil {
		return err
	}

	if f.logDecision != "" {
		if report := runner.LastReport(); report != nil {
			dl := evidence.NewDecisionLog(f.logDecision)
			if err := dl.Append(report.FirstDecision, report.FinalDecision, report.DeferredS); err != nil {
				log.Errorw("failed to append decision log", "err", err)
			}
		}
	}

	log.Infow("wrote evidence row",
		"run_id", rec.RunID,
		"phase", rec.Phase,
		"runtime_s", fmt.Sprintf("%.3f", rec.RuntimeS),
		"kwh", fmt.Sprintf("%.8f", rec.EnergyKWh),
		"kgco2e", fmt.Sprintf("%.8f", rec.KgCO2e),
		"method", rec.Method,
		"out", f.out,
	)
	return nil
}

// passthroughScheduling adapts the pure scheduler to the Runner's
// Scheduling dependency without a decision database; the CLI's decision
// trail goes to the JSON decision log instead.
type passthroughScheduling struct {
	sched *scheduler.Scheduler
}

func (p passthroughScheduling) Decide(ctx context.Context, policy models.SchedulingPolicy) (models.Decision, error) {
	return p.sched.ShouldRun(ctx, policy)
}
