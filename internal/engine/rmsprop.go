package engine

import (
	"math"

	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// rmsProp is an RMSProp solver with the legacy learning-rate schedule
// rate/(1+decay*iterations). Gorgonia's stock solvers have no equivalent of
// that schedule, so the update rule lives here, applied directly to the
// float64 backings of the parameter tensors.
type rmsProp struct {
	rate  float64
	decay float64
	rho   float64
	eps   float64

	iter  int
	cache [][]float64
}

func newRMSProp(rate, decay float64) *rmsProp {
	return &rmsProp{
		rate:  rate,
		decay: decay,
		rho:   0.9,
		eps:   1e-7,
	}
}

// Step applies one RMSProp update to every value/gradient pair. The pairs
// must arrive in the same order on every call.
func (s *rmsProp) Step(model []G.ValueGrad) error {
	if s.cache == nil {
		s.cache = make([][]float64, len(model))
	}
	if len(model) != len(s.cache) {
		return errors.Errorf("rmsprop: parameter count changed from %d to %d", len(s.cache), len(model))
	}

	lr := s.rate / (1 + s.decay*float64(s.iter))
	s.iter++

	for i, vg := range model {
		w, ok := vg.Value().(*tensor.Dense)
		if !ok {
			return errors.Errorf("rmsprop: parameter %d is not a dense tensor", i)
		}
		gradVal, err := vg.Grad()
		if err != nil {
			return errors.Wrapf(err, "rmsprop: gradient of parameter %d", i)
		}
		grad, ok := gradVal.(*tensor.Dense)
		if !ok {
			return errors.Errorf("rmsprop: gradient %d is not a dense tensor", i)
		}

		weights, ok := w.Data().([]float64)
		if !ok {
			return errors.Errorf("rmsprop: parameter %d is not float64", i)
		}
		grads, ok := grad.Data().([]float64)
		if !ok {
			return errors.Errorf("rmsprop: gradient %d is not float64", i)
		}
		if len(weights) != len(grads) {
			return errors.Errorf("rmsprop: parameter %d has %d weights but %d gradients", i, len(weights), len(grads))
		}

		if s.cache[i] == nil {
			s.cache[i] = make([]float64, len(weights))
		}
		cache := s.cache[i]
		for j, g := range grads {
			cache[j] = s.rho*cache[j] + (1-s.rho)*g*g
			weights[j] -= lr * g / (math.Sqrt(cache[j]) + s.eps)
		}
	}
	return nil
}
