package gan

import (
	"fmt"

	"gorgonia.org/tensor"
)

// NetworkSpec captures the fixed constants of one adversarial training
// session. It is passed by value into the builders and never mutated after
// construction.
type NetworkSpec struct {
	Rows     int
	Cols     int
	Channels int

	LatentDims int
	BaseDepth  int
	KernelSize int
	Stride     int

	Dropout      float64
	LeakyAlpha   float64
	NormMomentum float64

	DisLearnRate float64
	DisDecay     float64
	AdvLearnRate float64
	AdvDecay     float64
}

// DefaultNetworkSpec returns the standard DCGAN constants for a grayscale
// image of the given dimensions.
func DefaultNetworkSpec(rows, cols, channels int) NetworkSpec {
	return NetworkSpec{
		Rows:         rows,
		Cols:         cols,
		Channels:     channels,
		LatentDims:   100,
		BaseDepth:    64,
		KernelSize:   5,
		Stride:       2,
		Dropout:      0.4,
		LeakyAlpha:   0.2,
		NormMomentum: 0.9,
		DisLearnRate: 2e-4,
		DisDecay:     6e-8,
		AdvLearnRate: 1e-4,
		AdvDecay:     3e-8,
	}
}

// ImageShape is the per-example image shape in (channels, rows, cols) order.
func (s NetworkSpec) ImageShape() tensor.Shape {
	return tensor.Shape{s.Channels, s.Rows, s.Cols}
}

// GeneratorDepth is the channel depth of the generator's dense projection,
// four times the discriminator base depth.
func (s NetworkSpec) GeneratorDepth() int {
	return 4 * s.BaseDepth
}

// Validate checks the structural invariants of the spec.
func (s NetworkSpec) Validate() error {
	for _, d := range []struct {
		name  string
		value int
	}{
		{"rows", s.Rows},
		{"cols", s.Cols},
		{"channels", s.Channels},
		{"latent dims", s.LatentDims},
		{"base depth", s.BaseDepth},
		{"kernel size", s.KernelSize},
		{"stride", s.Stride},
	} {
		if d.value <= 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("%s must be positive, got %d", d.name, d.value)}
		}
	}
	if s.Dropout < 0 || s.Dropout >= 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("dropout must be in [0,1), got %g", s.Dropout)}
	}
	if s.LeakyAlpha <= 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("leaky alpha must be positive, got %g", s.LeakyAlpha)}
	}
	if s.NormMomentum <= 0 || s.NormMomentum >= 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("norm momentum must be in (0,1), got %g", s.NormMomentum)}
	}
	if s.DisLearnRate <= 0 || s.AdvLearnRate <= 0 {
		return &ConfigurationError{Reason: "learning rates must be positive"}
	}
	if s.DisDecay < 0 || s.AdvDecay < 0 {
		return &ConfigurationError{Reason: "learning rate decay must not be negative"}
	}
	return nil
}
