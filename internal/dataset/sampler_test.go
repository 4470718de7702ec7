package dataset

import (
	"reflect"
	"testing"

	"gorgonia.org/tensor"
)

// fakeGenerator marks each synthetic image with a constant fill so tests can
// tell real and synthetic rows apart.
type fakeGenerator struct {
	channels, rows, cols int
	fill                 float64
	calls                int
	lastNoise            *tensor.Dense
}

func (g *fakeGenerator) Generate(noise *tensor.Dense) (*tensor.Dense, error) {
	g.calls++
	g.lastNoise = noise
	batch := noise.Shape()[0]
	backing := make([]float64, batch*g.channels*g.rows*g.cols)
	for i := range backing {
		backing[i] = g.fill
	}
	return tensor.New(tensor.WithShape(batch, g.channels, g.rows, g.cols), tensor.WithBacking(backing)), nil
}

func trainingImages(t *testing.T, examples int) *tensor.Dense {
	t.Helper()
	backing := make([]float64, examples*2*2)
	for i := 0; i < examples; i++ {
		for j := 0; j < 4; j++ {
			// every pixel of example i carries its index, offset so no
			// real pixel collides with the synthetic fill value
			backing[i*4+j] = float64(i) + 10
		}
	}
	return tensor.New(tensor.WithShape(examples, 1, 2, 2), tensor.WithBacking(backing))
}

func TestDiscriminatorBatchLayout(t *testing.T) {
	const batchSize = 3
	train := trainingImages(t, 5)
	gen := &fakeGenerator{channels: 1, rows: 2, cols: 2, fill: -5}
	s := NewSampler(8, 1)

	batch, err := s.DiscriminatorBatch(train, gen, batchSize)
	if err != nil {
		t.Fatalf("DiscriminatorBatch: %v", err)
	}
	if !batch.Features.Shape().Eq(tensor.Shape{2 * batchSize, 1, 2, 2}) {
		t.Fatalf("unexpected features shape %v", batch.Features.Shape())
	}
	if !batch.Labels.Shape().Eq(tensor.Shape{2 * batchSize, 1}) {
		t.Fatalf("unexpected labels shape %v", batch.Labels.Shape())
	}

	labels := batch.Labels.Data().([]float64)
	for i := 0; i < batchSize; i++ {
		if labels[i] != 1 {
			t.Fatalf("label %d: want 1 (valid), got %g", i, labels[i])
		}
		if labels[batchSize+i] != 0 {
			t.Fatalf("label %d: want 0 (invalid), got %g", batchSize+i, labels[batchSize+i])
		}
	}

	features := batch.Features.Data().([]float64)
	for i := 0; i < batchSize*4; i++ {
		if features[i] < 10 {
			t.Fatalf("feature %d: real half contains synthetic pixel %g", i, features[i])
		}
	}
	for i := batchSize * 4; i < 2*batchSize*4; i++ {
		if features[i] != -5 {
			t.Fatalf("feature %d: synthetic half contains pixel %g", i, features[i])
		}
	}

	if gen.calls != 1 {
		t.Fatalf("expected one generator call, got %d", gen.calls)
	}
	if !gen.lastNoise.Shape().Eq(tensor.Shape{batchSize, 8}) {
		t.Fatalf("unexpected noise shape %v", gen.lastNoise.Shape())
	}
}

func TestAdversarialBatch(t *testing.T) {
	const batchSize = 4
	s := NewSampler(16, 7)
	batch, err := s.AdversarialBatch(batchSize)
	if err != nil {
		t.Fatalf("AdversarialBatch: %v", err)
	}
	if !batch.Features.Shape().Eq(tensor.Shape{batchSize, 16}) {
		t.Fatalf("unexpected features shape %v", batch.Features.Shape())
	}
	for _, v := range batch.Features.Data().([]float64) {
		if v < -1 || v > 1 {
			t.Fatalf("noise component %g outside [-1,1]", v)
		}
	}
	for i, v := range batch.Labels.Data().([]float64) {
		if v != 1 {
			t.Fatalf("label %d: want 1, got %g", i, v)
		}
	}
}

func TestSamplerDeterministic(t *testing.T) {
	train := trainingImages(t, 6)
	gen := &fakeGenerator{channels: 1, rows: 2, cols: 2, fill: -1}

	run := func() []float64 {
		s := NewSampler(8, 99)
		batch, err := s.DiscriminatorBatch(train, gen, 4)
		if err != nil {
			t.Fatalf("DiscriminatorBatch: %v", err)
		}
		return batch.Features.Data().([]float64)
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Fatal("same seed produced different batches")
	}
}

func TestDiscriminatorBatchRejectsBadInput(t *testing.T) {
	s := NewSampler(8, 1)
	gen := &fakeGenerator{channels: 1, rows: 2, cols: 2}

	if _, err := s.DiscriminatorBatch(trainingImages(t, 3), gen, 0); err == nil {
		t.Fatal("expected error for non-positive batch size")
	}
	if _, err := s.DiscriminatorBatch(nil, gen, 2); err == nil {
		t.Fatal("expected error for nil training features")
	}

	flat := tensor.New(tensor.WithShape(3, 4), tensor.WithBacking(make([]float64, 12)))
	if _, err := s.DiscriminatorBatch(flat, gen, 2); err == nil {
		t.Fatal("expected error for rank 2 features")
	}
}
