package dataset

import (
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Sampler draws the two kinds of training batches the adversarial game
// needs. It owns a seeded PRNG so runs are reproducible.
type Sampler struct {
	rng        *rand.Rand
	latentDims int
}

// NewSampler returns a sampler for latent vectors of the given length.
func NewSampler(latentDims int, seed int64) *Sampler {
	return &Sampler{
		rng:        rand.New(rand.NewSource(seed)),
		latentDims: latentDims,
	}
}

// Noise returns a (batchSize, latentDims) tensor with every component drawn
// independently and uniformly from [-1, 1].
func (s *Sampler) Noise(batchSize int) *tensor.Dense {
	backing := make([]float64, batchSize*s.latentDims)
	for i := range backing {
		backing[i] = s.rng.Float64()*2 - 1
	}
	return tensor.New(tensor.WithShape(batchSize, s.latentDims), tensor.WithBacking(backing))
}

// DiscriminatorBatch builds a batch of 2*batchSize examples: batchSize real
// images drawn uniformly with replacement from train, labeled 1, followed by
// batchSize synthetic images produced from fresh noise through gen, labeled
// 0. Order is real-then-synthetic with labels aligned by index.
func (s *Sampler) DiscriminatorBatch(train *tensor.Dense, gen Generator, batchSize int) (*Batch, error) {
	if batchSize <= 0 {
		return nil, errors.Errorf("dataset: batch size must be positive, got %d", batchSize)
	}
	if train == nil {
		return nil, errors.New("dataset: no training features")
	}
	shape := train.Shape()
	if len(shape) != 4 {
		return nil, errors.Errorf("dataset: want rank 4 training features, got shape %v", shape)
	}
	examples := shape[0]
	if examples == 0 {
		return nil, errors.New("dataset: training features are empty")
	}
	imageSize := shape[1] * shape[2] * shape[3]
	src, ok := train.Data().([]float64)
	if !ok {
		return nil, errors.Errorf("dataset: want float64 features, got %T", train.Data())
	}

	features := make([]float64, 2*batchSize*imageSize)
	for i := 0; i < batchSize; i++ {
		pick := s.rng.Intn(examples)
		copy(features[i*imageSize:(i+1)*imageSize], src[pick*imageSize:(pick+1)*imageSize])
	}

	synthetic, err := gen.Generate(s.Noise(batchSize))
	if err != nil {
		return nil, errors.Wrap(err, "dataset: generate synthetic examples")
	}
	if !synthetic.Shape().Eq(tensor.Shape{batchSize, shape[1], shape[2], shape[3]}) {
		return nil, errors.Errorf("dataset: generator produced shape %v, want %v",
			synthetic.Shape(), tensor.Shape{batchSize, shape[1], shape[2], shape[3]})
	}
	fake, ok := synthetic.Data().([]float64)
	if !ok {
		return nil, errors.Errorf("dataset: want float64 synthetic examples, got %T", synthetic.Data())
	}
	copy(features[batchSize*imageSize:], fake)

	labels := make([]float64, 2*batchSize)
	for i := 0; i < batchSize; i++ {
		labels[i] = 1
	}

	return &Batch{
		Features: tensor.New(tensor.WithShape(2*batchSize, shape[1], shape[2], shape[3]), tensor.WithBacking(features)),
		Labels:   tensor.New(tensor.WithShape(2*batchSize, 1), tensor.WithBacking(labels)),
	}, nil
}

// AdversarialBatch builds a batch of batchSize fresh noise vectors, all
// labeled 1: the generator is rewarded when the discriminator takes its
// output for real.
func (s *Sampler) AdversarialBatch(batchSize int) (*Batch, error) {
	if batchSize <= 0 {
		return nil, errors.Errorf("dataset: batch size must be positive, got %d", batchSize)
	}
	labels := make([]float64, batchSize)
	for i := range labels {
		labels[i] = 1
	}
	return &Batch{
		Features: s.Noise(batchSize),
		Labels:   tensor.New(tensor.WithShape(batchSize, 1), tensor.WithBacking(labels)),
	}, nil
}
