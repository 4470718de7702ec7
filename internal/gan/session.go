package gan

import (
	"fmt"

	"gorgonia.org/tensor"
)

// generatorGrid is the spatial side length of the generator's dense
// projection before upsampling. Two 2x upsampling stages follow, so the
// configured image must be 4*generatorGrid pixels on each side.
const generatorGrid = 7

// Session owns the discriminator and generator of one training run. Each
// network is built at most once and compiled at most once.
type Session struct {
	spec NetworkSpec

	discriminator *Network
	generator     *Network
	disPhase      Phase
	genPhase      Phase
}

// NewSession validates the spec and returns a session with both networks
// unbuilt.
func NewSession(spec NetworkSpec) (*Session, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Session{spec: spec}, nil
}

// Spec returns the session's immutable configuration.
func (s *Session) Spec() NetworkSpec { return s.spec }

// Discriminator returns the built discriminator, or nil before the build.
func (s *Session) Discriminator() *Network { return s.discriminator }

// Generator returns the built generator, or nil before the build.
func (s *Session) Generator() *Network { return s.generator }

// DiscriminatorPhase reports the discriminator lifecycle state.
func (s *Session) DiscriminatorPhase() Phase { return s.disPhase }

// GeneratorPhase reports the generator lifecycle state. The generator is
// marked compiled by CompileAdversarial, which binds the composite model
// that trains it.
func (s *Session) GeneratorPhase() Phase { return s.genPhase }

// BuildDiscriminator constructs the discriminator topology: four strided
// convolution blocks with leaky activations and dropout, then a flattened
// single-unit sigmoid classifier. A second call fails with
// AlreadyBuiltError and leaves the first structure unchanged.
func (s *Session) BuildDiscriminator() (*Network, error) {
	switch s.disPhase {
	case PhaseBuilt, PhaseCompiled:
		return nil, &AlreadyBuiltError{Network: "discriminator"}
	case PhaseUnbuilt:
	}

	spec := s.spec
	layers := make([]Layer, 0, 14)
	for i := 1; i <= 4; i++ {
		layers = append(layers,
			Layer{Kind: Conv2D, Name: fmt.Sprintf("conv_%d", i),
				Filters: DiscriminatorFilters(spec, i), Kernel: spec.KernelSize, Stride: spec.Stride},
			Layer{Kind: LeakyReLU, Name: fmt.Sprintf("relu_%d", i), Alpha: spec.LeakyAlpha},
			Layer{Kind: Dropout, Name: fmt.Sprintf("drop_%d", i), Rate: spec.Dropout},
		)
	}
	layers = append(layers,
		Layer{Kind: Flatten, Name: "flat"},
		Layer{Kind: Dense, Name: "outputs", Units: 1},
		Layer{Kind: Activation, Name: "outputs_sigmoid", Fn: Sigmoid},
	)

	net := &Network{
		Name:       "discriminator",
		InputShape: spec.ImageShape(),
		Layers:     layers,
	}
	out, err := inferOutputShape(net.InputShape, net.Layers)
	if err != nil {
		return nil, &ConfigurationError{Reason: "discriminator topology: " + err.Error()}
	}
	net.OutputShape = out

	s.discriminator = net
	s.disPhase = PhaseBuilt
	return net, nil
}

// BuildGenerator constructs the generator topology: a dense projection of
// the latent vector onto a coarse grid, two upsample-then-convolve blocks,
// one plain transposed-convolution block, and a sigmoid output constraining
// pixels to [0,1]. A second call fails with AlreadyBuiltError.
func (s *Session) BuildGenerator() (*Network, error) {
	switch s.genPhase {
	case PhaseBuilt, PhaseCompiled:
		return nil, &AlreadyBuiltError{Network: "generator"}
	case PhaseUnbuilt:
	}

	spec := s.spec
	depth := spec.GeneratorDepth()
	projection := tensor.Shape{depth, generatorGrid, generatorGrid}

	layers := []Layer{
		{Kind: Dense, Name: "dense_latent", Units: projection.TotalSize()},
		{Kind: BatchNorm, Name: "batch_latent", Momentum: spec.NormMomentum},
		{Kind: Activation, Name: "relu_latent", Fn: ReLU},
		{Kind: Reshape, Name: "reshaped_latent", TargetShape: projection},
		{Kind: Dropout, Name: "dropout_latent", Rate: spec.Dropout},
	}
	for i := 1; i <= 2; i++ {
		layers = append(layers,
			Layer{Kind: Upsample2D, Name: fmt.Sprintf("upsample_%d", i), Scale: 2},
			Layer{Kind: TransposeConv2D, Name: fmt.Sprintf("transpose_%d", i),
				Filters: GeneratorFilters(spec, i), Kernel: spec.KernelSize, Stride: 1},
			Layer{Kind: BatchNorm, Name: fmt.Sprintf("batch_%d", i), Momentum: spec.NormMomentum},
			Layer{Kind: Activation, Name: fmt.Sprintf("relu_%d", i), Fn: ReLU},
		)
	}
	// Final learned block keeps the spatial resolution; a third upsample
	// would overshoot the target image size.
	layers = append(layers,
		Layer{Kind: TransposeConv2D, Name: "transpose_3",
			Filters: GeneratorFilters(spec, 3), Kernel: spec.KernelSize, Stride: 1},
		Layer{Kind: BatchNorm, Name: "batch_3", Momentum: spec.NormMomentum},
		Layer{Kind: Activation, Name: "relu_3", Fn: ReLU},
		Layer{Kind: TransposeConv2D, Name: "output_transpose",
			Filters: spec.Channels, Kernel: spec.KernelSize, Stride: 1},
		Layer{Kind: Activation, Name: "outputs_sigmoid", Fn: Sigmoid},
	)

	net := &Network{
		Name:       "generator",
		InputShape: tensor.Shape{spec.LatentDims},
		Layers:     layers,
	}
	out, err := inferOutputShape(net.InputShape, net.Layers)
	if err != nil {
		return nil, &ConfigurationError{Reason: "generator topology: " + err.Error()}
	}
	if !out.Eq(spec.ImageShape()) {
		return nil, &ConfigurationError{Reason: fmt.Sprintf(
			"generator output shape %v does not match image shape %v; image sides must be %d",
			out, spec.ImageShape(), 4*generatorGrid)}
	}
	net.OutputShape = out

	s.generator = net
	s.genPhase = PhaseBuilt
	return net, nil
}

// Ready reports whether both networks are built and compiled, returning a
// PrerequisiteNotMetError naming the first missing step otherwise.
func (s *Session) Ready() error {
	switch s.disPhase {
	case PhaseUnbuilt:
		return &PrerequisiteNotMetError{Missing: "discriminator has not been built"}
	case PhaseBuilt:
		return &PrerequisiteNotMetError{Missing: "discriminator has not been compiled"}
	case PhaseCompiled:
	}
	switch s.genPhase {
	case PhaseUnbuilt:
		return &PrerequisiteNotMetError{Missing: "generator has not been built"}
	case PhaseBuilt:
		return &PrerequisiteNotMetError{Missing: "adversarial model has not been compiled"}
	case PhaseCompiled:
	}
	return nil
}
