package engine

import (
	"math"
	"math/rand"

	"gorgonia.org/tensor"
)

// Store owns every trainable parameter of a session as float64 tensors.
// Graphs reference these tensors directly, so a solver update in one graph
// is visible to every other graph built from the same store.
type Store struct {
	rng    *rand.Rand
	names  []string
	params map[string]*tensor.Dense
}

func newStore(seed int64) *Store {
	return &Store{
		rng:    rand.New(rand.NewSource(seed)),
		params: make(map[string]*tensor.Dense),
	}
}

type initFn func(rng *rand.Rand, size int) []float64

// glorotUniform draws from U(-limit, limit) with limit = sqrt(6/(fanIn+fanOut)).
func glorotUniform(fanIn, fanOut int) initFn {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return func(rng *rand.Rand, size int) []float64 {
		backing := make([]float64, size)
		for i := range backing {
			backing[i] = (rng.Float64()*2 - 1) * limit
		}
		return backing
	}
}

func zeros() initFn {
	return func(_ *rand.Rand, size int) []float64 {
		return make([]float64, size)
	}
}

func ones() initFn {
	return func(_ *rand.Rand, size int) []float64 {
		backing := make([]float64, size)
		for i := range backing {
			backing[i] = 1
		}
		return backing
	}
}

// get returns the named parameter, creating and initializing it on first
// use. Creation order is recorded so checkpoints are stable.
func (s *Store) get(name string, shape tensor.Shape, init initFn) *tensor.Dense {
	if p, ok := s.params[name]; ok {
		return p
	}
	p := tensor.New(
		tensor.WithShape(shape...),
		tensor.WithBacking(init(s.rng, shape.TotalSize())),
	)
	s.params[name] = p
	s.names = append(s.names, name)
	return p
}

// Names returns the parameter names in creation order.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// Tensors returns the live parameter tensors keyed by name.
func (s *Store) Tensors() map[string]*tensor.Dense {
	out := make(map[string]*tensor.Dense, len(s.params))
	for name, p := range s.params {
		out[name] = p
	}
	return out
}
