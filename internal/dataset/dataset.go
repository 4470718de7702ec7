package dataset

import (
	"gorgonia.org/tensor"
)

// Split pairs a features tensor with its labels. Features hold images in
// (examples, channels, rows, cols) order. Either tensor may be nil when the
// split is absent; validation of the pairing happens in the trainer before
// any step runs.
type Split struct {
	Features *tensor.Dense
	Labels   *tensor.Dense
}

// Present reports whether the split carries any data at all.
func (s Split) Present() bool {
	return s.Features != nil || s.Labels != nil
}

// Batch is the features/labels pair consumed by one gradient update. It is
// constructed fresh each step and discarded afterwards.
type Batch struct {
	Features *tensor.Dense
	Labels   *tensor.Dense
}

// Generator produces synthetic image batches from latent noise. The
// training engine's generator model satisfies this.
type Generator interface {
	Generate(noise *tensor.Dense) (*tensor.Dense, error)
}
