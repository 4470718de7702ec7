// Package engine executes the network topologies on gorgonia. It owns the
// parameter store, the per-model computation graphs, and the optimizer
// state; everything above it deals in topologies and tensors only.
package engine

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"ganforge/internal/gan"
)

// Engine holds the shared parameter store of one training session.
type Engine struct {
	spec  gan.NetworkSpec
	store *Store
}

// New returns an engine with an empty parameter store; parameters are
// created and initialized lazily as models are bound.
func New(spec gan.NetworkSpec, seed int64) *Engine {
	return &Engine{spec: spec, store: newStore(seed)}
}

// ParamNames returns every parameter name in creation order.
func (e *Engine) ParamNames() []string { return e.store.Names() }

// Params returns the live parameter tensors keyed by name.
func (e *Engine) Params() map[string]*tensor.Dense { return e.store.Tensors() }

type buildFn func(x *G.Node, training bool) (*forwardOut, error)

// Model is one trainable graph: a forward pass, a BCE cost, and an RMSProp
// solver over its learnable parameters. The executable graph is built
// lazily for the batch size of the first batch and rebuilt if it changes.
type Model struct {
	name       string
	inputShape tensor.Shape
	build      buildFn
	solver     *rmsProp
	e          *trainExec
}

type trainExec struct {
	batch      int
	input      *G.Node
	labels     *G.Node
	output     *G.Node
	cost       *G.Node
	learnables G.Nodes
	bnOps      []*G.BatchNormOp
	vm         G.VM
}

// BindDiscriminator produces the trainable model for the compiled
// discriminator: all discriminator parameters are in the update set.
func (e *Engine) BindDiscriminator(cd *gan.CompiledDiscriminator) (*Model, error) {
	if cd == nil || cd.Net == nil {
		return nil, errors.New("engine: no compiled discriminator")
	}
	if !cd.Net.InputShape.Eq(e.spec.ImageShape()) {
		return nil, errors.Errorf("engine: discriminator input %v does not match image shape %v",
			cd.Net.InputShape, e.spec.ImageShape())
	}
	return &Model{
		name:       cd.Net.Name,
		inputShape: cd.Net.InputShape,
		solver:     newRMSProp(cd.Optimizer.LearnRate, cd.Optimizer.Decay),
		build: func(x *G.Node, training bool) (*forwardOut, error) {
			return forward(x, cd.Net, e.store, true, training)
		},
	}, nil
}

// BindAdversarial produces the trainable composite model: the generator's
// output feeds the discriminator, and only generator parameters are in the
// update set. The discriminator still shapes the gradient, it just never
// moves here.
func (e *Engine) BindAdversarial(ca *gan.CompiledAdversarial) (*Model, error) {
	if ca == nil || ca.Generator == nil || ca.Discriminator == nil {
		return nil, errors.New("engine: no compiled adversarial model")
	}
	if !ca.Generator.InputShape.Eq(tensor.Shape{e.spec.LatentDims}) {
		return nil, errors.Errorf("engine: generator input %v does not match latent dims %d",
			ca.Generator.InputShape, e.spec.LatentDims)
	}
	return &Model{
		name:       "adversarial",
		inputShape: ca.Generator.InputShape,
		solver:     newRMSProp(ca.Optimizer.LearnRate, ca.Optimizer.Decay),
		build: func(x *G.Node, training bool) (*forwardOut, error) {
			genOut, err := forward(x, ca.Generator, e.store, true, training)
			if err != nil {
				return nil, err
			}
			disOut, err := forward(genOut.out, ca.Discriminator, e.store, false, training)
			if err != nil {
				return nil, err
			}
			return &forwardOut{
				out:        disOut.out,
				learnables: genOut.learnables,
				bnOps:      append(genOut.bnOps, disOut.bnOps...),
			}, nil
		},
	}, nil
}

func (m *Model) ensureExec(batch int) error {
	if m.e != nil && m.e.batch == batch {
		return nil
	}
	if m.e != nil && m.e.vm != nil {
		m.e.vm.Close()
	}

	g := G.NewGraph()
	inShape := append(tensor.Shape{batch}, m.inputShape...)
	input := G.NewTensor(g, tensor.Float64, len(inShape),
		G.WithShape(inShape...), G.WithName(m.name+"/input"))

	fw, err := m.build(input, true)
	if err != nil {
		return err
	}
	if len(fw.learnables) == 0 {
		return errors.Errorf("engine: model %s has no learnable parameters", m.name)
	}

	rows := fw.out.Shape()[0]
	labels := G.NewMatrix(g, tensor.Float64,
		G.WithShape(rows, 1), G.WithName(m.name+"/labels"))
	cost, err := binaryCrossEntropy(fw.out, labels)
	if err != nil {
		return err
	}
	if _, err := G.Grad(cost, fw.learnables...); err != nil {
		return errors.Wrapf(err, "engine: model %s backprop", m.name)
	}

	m.e = &trainExec{
		batch:      batch,
		input:      input,
		labels:     labels,
		output:     fw.out,
		cost:       cost,
		learnables: fw.learnables,
		bnOps:      fw.bnOps,
		vm:         G.NewTapeMachine(g, G.BindDualValues(fw.learnables...)),
	}
	return nil
}

// TrainOnBatch runs one forward/backward pass and one optimizer step,
// returning the batch loss and binary accuracy.
func (m *Model) TrainOnBatch(features, labels *tensor.Dense) (loss, acc float64, err error) {
	if features == nil || labels == nil {
		return 0, 0, errors.Errorf("engine: model %s: nil batch", m.name)
	}
	if err := m.ensureExec(features.Shape()[0]); err != nil {
		return 0, 0, err
	}
	e := m.e

	if err := G.Let(e.input, features); err != nil {
		return 0, 0, errors.Wrapf(err, "engine: model %s input", m.name)
	}
	if err := G.Let(e.labels, labels); err != nil {
		return 0, 0, errors.Wrapf(err, "engine: model %s labels", m.name)
	}
	for _, op := range e.bnOps {
		op.SetTraining(true)
	}

	if err := e.vm.RunAll(); err != nil {
		return 0, 0, errors.Wrapf(err, "engine: model %s forward/backward", m.name)
	}

	loss = e.cost.Value().Data().(float64)
	predictions := e.output.Value().Data().([]float64)
	acc = binaryAccuracy(predictions, labels.Data().([]float64))

	if err := m.solver.Step(G.NodesToValueGrads(e.learnables)); err != nil {
		return 0, 0, errors.Wrapf(err, "engine: model %s update", m.name)
	}
	e.vm.Reset()
	return loss, acc, nil
}

// GeneratorModel is the inference view of the generator used to synthesize
// images for discriminator batches. Its graph omits dropout and runs batch
// norm on batch statistics, so synthetic examples match what the
// adversarial training pass produces.
type GeneratorModel struct {
	net   *gan.Network
	store *Store
	e     *predictExec
}

type predictExec struct {
	batch  int
	input  *G.Node
	output *G.Node
	bnOps  []*G.BatchNormOp
	vm     G.VM
}

// BindGenerator produces the inference model for a built generator. It
// shares parameters with the trainable models, so every generator update is
// immediately visible here.
func (e *Engine) BindGenerator(net *gan.Network) (*GeneratorModel, error) {
	if net == nil {
		return nil, errors.New("engine: no generator network")
	}
	return &GeneratorModel{net: net, store: e.store}, nil
}

func (gm *GeneratorModel) ensureExec(batch int) error {
	if gm.e != nil && gm.e.batch == batch {
		return nil
	}
	if gm.e != nil && gm.e.vm != nil {
		gm.e.vm.Close()
	}

	g := G.NewGraph()
	inShape := append(tensor.Shape{batch}, gm.net.InputShape...)
	input := G.NewTensor(g, tensor.Float64, len(inShape),
		G.WithShape(inShape...), G.WithName(gm.net.Name+"/predict_input"))

	fw, err := forward(input, gm.net, gm.store, false, false)
	if err != nil {
		return err
	}
	gm.e = &predictExec{
		batch:  batch,
		input:  input,
		output: fw.out,
		bnOps:  fw.bnOps,
		vm:     G.NewTapeMachine(g),
	}
	return nil
}

// Generate maps a (batch, latentDims) noise tensor to a batch of synthetic
// images in [0,1].
func (gm *GeneratorModel) Generate(noise *tensor.Dense) (*tensor.Dense, error) {
	if noise == nil {
		return nil, errors.New("engine: nil noise")
	}
	if err := gm.ensureExec(noise.Shape()[0]); err != nil {
		return nil, err
	}
	e := gm.e

	if err := G.Let(e.input, noise); err != nil {
		return nil, errors.Wrap(err, "engine: generator input")
	}
	for _, op := range e.bnOps {
		op.SetTraining(true)
	}
	if err := e.vm.RunAll(); err != nil {
		return nil, errors.Wrap(err, "engine: generator forward")
	}

	out, ok := e.output.Value().(*tensor.Dense)
	if !ok {
		return nil, errors.Errorf("engine: generator produced %T", e.output.Value())
	}
	clone := out.Clone().(*tensor.Dense)
	e.vm.Reset()
	return clone, nil
}
