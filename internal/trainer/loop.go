// Package trainer drives the alternating optimization of the adversarial
// game: one discriminator update, then one composite update, per step.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"ganforge/internal/dataset"
	"ganforge/internal/gan"
	"ganforge/internal/metrics"
)

// defaultCheckpointEvery is the step cadence of checkpoint writes.
const defaultCheckpointEvery = 100

// Trainable is one model that can take a single gradient update on a
// labeled batch.
type Trainable interface {
	TrainOnBatch(features, labels *tensor.Dense) (loss, acc float64, err error)
}

// CheckpointFunc persists the composite model's full parameter state. The
// write blocks the loop; a failure halts training. A nil func disables
// checkpointing.
type CheckpointFunc func(step int) error

// Loop runs the training state machine. Execution is single-threaded: the
// two updates of a step are strictly sequential, discriminator first, so
// the composite step always sees the just-updated discriminator.
type Loop struct {
	Session       *gan.Session
	Discriminator Trainable
	Adversarial   Trainable
	Generator     dataset.Generator
	Sampler       *dataset.Sampler
	Logger        StepLogger
	Checkpoint    CheckpointFunc

	Steps           int
	BatchSize       int
	CheckpointEvery int
}

// Run validates everything up front and then executes Steps iterations.
// No error past validation is recovered; a failed update or checkpoint
// write halts the loop. Cancelling ctx stops the loop between steps.
func (l *Loop) Run(ctx context.Context, train, val, test dataset.Split) error {
	if err := l.validate(train, val, test); err != nil {
		return err
	}

	every := l.CheckpointEvery
	if every <= 0 {
		every = defaultCheckpointEvery
	}
	logger := l.Logger
	if logger == nil {
		logger = NewLogSink(0, l.BatchSize)
	}

	for step := 0; step < l.Steps; step++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		start := time.Now()

		disBatch, err := l.Sampler.DiscriminatorBatch(train.Features, l.Generator, l.BatchSize)
		if err != nil {
			return errors.Wrapf(err, "trainer: step %d discriminator batch", step)
		}
		disLoss, disAcc, err := l.Discriminator.TrainOnBatch(disBatch.Features, disBatch.Labels)
		if err != nil {
			return errors.Wrapf(err, "trainer: step %d discriminator update", step)
		}

		advBatch, err := l.Sampler.AdversarialBatch(l.BatchSize)
		if err != nil {
			return errors.Wrapf(err, "trainer: step %d adversarial batch", step)
		}
		advLoss, advAcc, err := l.Adversarial.TrainOnBatch(advBatch.Features, advBatch.Labels)
		if err != nil {
			return errors.Wrapf(err, "trainer: step %d adversarial update", step)
		}

		logger.Record(time.Since(start), metrics.StepMetrics{
			Step:    step,
			DisLoss: disLoss,
			DisAcc:  disAcc,
			AdvLoss: advLoss,
			AdvAcc:  advAcc,
		})

		if step%every == 0 && l.Checkpoint != nil {
			if err := l.Checkpoint(step); err != nil {
				return errors.Wrapf(err, "trainer: step %d checkpoint", step)
			}
		}
	}
	return nil
}

func (l *Loop) validate(train, val, test dataset.Split) error {
	if l.Session == nil {
		return &gan.ConfigurationError{Reason: "no session configured"}
	}
	if err := l.Session.Ready(); err != nil {
		return err
	}
	for _, dep := range []struct {
		name    string
		missing bool
	}{
		{"discriminator model", l.Discriminator == nil},
		{"adversarial model", l.Adversarial == nil},
		{"generator", l.Generator == nil},
		{"sampler", l.Sampler == nil},
	} {
		if dep.missing {
			return &gan.ConfigurationError{Reason: "no " + dep.name + " configured"}
		}
	}
	if l.Steps <= 0 {
		return &gan.ConfigurationError{Reason: fmt.Sprintf("steps must be positive, got %d", l.Steps)}
	}
	if l.BatchSize <= 0 {
		return &gan.ConfigurationError{Reason: fmt.Sprintf("batch size must be positive, got %d", l.BatchSize)}
	}

	if train.Features == nil {
		return &gan.ConfigurationError{Reason: "training features are required"}
	}
	imageShape := l.Session.Spec().ImageShape()
	for _, d := range []struct {
		name  string
		split dataset.Split
	}{
		{"training", train},
		{"validation", val},
		{"test", test},
	} {
		if err := validateSplit(d.name, d.split, imageShape); err != nil {
			return err
		}
	}
	return nil
}

// validateSplit checks one features/labels pair independently; absent
// splits are skipped rather than tripping over their neighbors.
func validateSplit(name string, split dataset.Split, imageShape tensor.Shape) error {
	if !split.Present() {
		return nil
	}
	if split.Features == nil {
		return &gan.ConfigurationError{Reason: name + " labels were provided without features"}
	}
	shape := split.Features.Shape()
	if len(shape) != 4 {
		return &gan.ConfigurationError{Reason: fmt.Sprintf(
			"%s features must have rank 4, got shape %v", name, shape)}
	}
	if !tensor.Shape(shape[1:]).Eq(imageShape) {
		return &gan.ConfigurationError{Reason: fmt.Sprintf(
			"%s features have example shape %v, want %v", name, shape[1:], imageShape)}
	}
	if split.Labels != nil && split.Labels.Shape()[0] != shape[0] {
		return &gan.ConfigurationError{Reason: fmt.Sprintf(
			"%s features and labels disagree on example count: %d vs %d",
			name, shape[0], split.Labels.Shape()[0])}
	}
	return nil
}
