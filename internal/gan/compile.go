package gan

// OptimizerSpec configures the RMSProp optimizer bound to a compiled model.
// Decay applies the legacy schedule rate/(1+decay*iterations).
type OptimizerSpec struct {
	LearnRate float64
	Decay     float64
}

// CompiledDiscriminator is the discriminator bound to its own optimizer and
// binary cross-entropy loss, trainable on labeled image batches.
type CompiledDiscriminator struct {
	Net       *Network
	Optimizer OptimizerSpec
}

// CompiledAdversarial is the composite model feeding the generator's output
// into the discriminator, bound to its own optimizer. Training it updates
// generator parameters only; the discriminator sub-network is frozen so the
// composite step cannot undo the discriminator's separate update.
type CompiledAdversarial struct {
	Generator     *Network
	Discriminator *Network
	Optimizer     OptimizerSpec
}

// CompileDiscriminator binds the discriminator optimizer and loss. It
// requires a built discriminator and fails with AlreadyCompiledError on a
// repeat call.
func (s *Session) CompileDiscriminator() (*CompiledDiscriminator, error) {
	switch s.disPhase {
	case PhaseUnbuilt:
		return nil, &PrerequisiteNotMetError{Missing: "discriminator has not been built"}
	case PhaseCompiled:
		return nil, &AlreadyCompiledError{Network: "discriminator"}
	case PhaseBuilt:
	}
	s.disPhase = PhaseCompiled
	return &CompiledDiscriminator{
		Net:       s.discriminator,
		Optimizer: OptimizerSpec{LearnRate: s.spec.DisLearnRate, Decay: s.spec.DisDecay},
	}, nil
}

// CompileAdversarial binds the composite generator-into-discriminator model
// to its own optimizer. Both networks must be built; a repeat call fails
// with AlreadyCompiledError.
func (s *Session) CompileAdversarial() (*CompiledAdversarial, error) {
	if s.genPhase == PhaseCompiled {
		return nil, &AlreadyCompiledError{Network: "adversarial"}
	}
	if s.genPhase == PhaseUnbuilt {
		return nil, &PrerequisiteNotMetError{Missing: "generator has not been built"}
	}
	if s.discriminator == nil {
		return nil, &PrerequisiteNotMetError{Missing: "discriminator has not been built"}
	}
	s.genPhase = PhaseCompiled
	return &CompiledAdversarial{
		Generator:     s.generator,
		Discriminator: s.discriminator,
		Optimizer:     OptimizerSpec{LearnRate: s.spec.AdvLearnRate, Decay: s.spec.AdvDecay},
	}, nil
}
