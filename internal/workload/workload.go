// Package workload provides the built-in demo job: a deterministic
// synthetic regression fit. It stands in for the opaque model-training
// pipeline the measurement core brackets; any job with the same signature
// can replace it.
package workload

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/measure"
)

type Mode string

const (
	ModeBaseline  Mode = "baseline"
	ModeOptimized Mode = "optimized"
)

// Training profiles. The optimized profile trades epochs for a larger
// learning rate and minibatch sampling, cutting compute at a small
// accuracy cost.
const (
	nSamples  = 1200
	nFeatures = 12
	noiseStd  = 5.0

	baselineEpochs = 400
	baselineLR     = 0.01

	optimizedEpochs    = 160
	optimizedLR        = 0.03
	optimizedBatchFrac = 0.7
)

// Result is the job's quality report.
type Result struct {
	MAE    float64 `json:"mae"`
	Epochs int     `json:"epochs"`
}

// Train fits a linear model to a synthetic regression dataset with plain
// gradient descent. Identical (mode, seed) pairs produce identical MAE.
func Train(ctx context.Context, mode Mode, seed int64) (Result, error) {
	if mode != ModeBaseline && mode != ModeOptimized {
		return Result{}, fmt.Errorf("unknown workload mode %q", mode)
	}

	rng := rand.New(rand.NewSource(seed))
	features, targets, _ := makeDataset(rng)

	epochs, lr, batchFrac := baselineEpochs, baselineLR, 1.0
	if mode == ModeOptimized {
		epochs, lr, batchFrac = optimizedEpochs, optimizedLR, optimizedBatchFrac
	}
	batch := int(float64(nSamples) * batchFrac)

	weights := make([]float64, nFeatures)
	grad := make([]float64, nFeatures)
	for epoch := 0; epoch < epochs; epoch++ {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		for j := range grad {
			grad[j] = 0
		}
		for i := 0; i < batch; i++ {
			idx := i
			if batch < nSamples {
				idx = rng.Intn(nSamples)
			}
			pred := dot(weights, features[idx])
			diff := pred - targets[idx]
			for j := 0; j < nFeatures; j++ {
				grad[j] += diff * features[idx][j]
			}
		}
		scale := lr / float64(batch)
		for j := 0; j < nFeatures; j++ {
			weights[j] -= scale * grad[j]
		}
	}

	var absErr float64
	for i := 0; i < nSamples; i++ {
		absErr += math.Abs(dot(weights, features[i]) - targets[i])
	}
	return Result{MAE: absErr / float64(nSamples), Epochs: epochs}, nil
}

// Job adapts Train to the measurement wrapper's signature.
func Job(mode Mode, seed int64) measure.Job {
	return func(ctx context.Context) (any, error) {
		return Train(ctx, mode, seed)
	}
}

func makeDataset(rng *rand.Rand) (features [][]float64, targets []float64, trueW []float64) {
	trueW = make([]float64, nFeatures)
	for j := range trueW {
		trueW[j] = rng.NormFloat64() * 10
	}
	features = make([][]float64, nSamples)
	targets = make([]float64, nSamples)
	for i := range features {
		row := make([]float64, nFeatures)
		for j := range row {
			row[j] = rng.NormFloat64()
		}
		features[i] = row
		targets[i] = dot(trueW, row) + rng.NormFloat64()*noiseStd
	}
	return features, targets, trueW
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
