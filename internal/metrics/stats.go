package metrics

import "time"

// StepMetrics is the per-step record the training loop emits: one gradient
// update on the discriminator and one on the adversarial model.
type StepMetrics struct {
	Step    int
	DisLoss float64
	DisAcc  float64
	AdvLoss float64
	AdvAcc  float64
}

// Window accumulates step metrics and timing across multiple steps.
type Window struct {
	samples int
	elapsed time.Duration
	steps   int
	last    StepMetrics
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, elapsed time.Duration, m StepMetrics) {
	w.samples += batchSize
	w.elapsed += elapsed
	w.steps++
	w.last = m
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{Last: w.last}
	if w.elapsed > 0 {
		snap.StepsPerSec = float64(w.steps) / w.elapsed.Seconds()
		snap.ImagesPerSec = float64(w.samples) / w.elapsed.Seconds()
	}

	w.samples = 0
	w.elapsed = 0
	w.steps = 0
	return snap
}

// Snapshot represents loggable aggregates over a window of steps.
type Snapshot struct {
	StepsPerSec  float64
	ImagesPerSec float64
	Last         StepMetrics
}
