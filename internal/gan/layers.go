package gan

import (
	"fmt"

	"gorgonia.org/tensor"
)

// LayerKind enumerates the layer types the builders emit.
type LayerKind int

const (
	Conv2D LayerKind = iota
	TransposeConv2D
	LeakyReLU
	Dropout
	Flatten
	Dense
	BatchNorm
	Upsample2D
	Reshape
	Activation
)

func (k LayerKind) String() string {
	switch k {
	case Conv2D:
		return "conv2d"
	case TransposeConv2D:
		return "transpose_conv2d"
	case LeakyReLU:
		return "leaky_relu"
	case Dropout:
		return "dropout"
	case Flatten:
		return "flatten"
	case Dense:
		return "dense"
	case BatchNorm:
		return "batch_norm"
	case Upsample2D:
		return "upsample2d"
	case Reshape:
		return "reshape"
	case Activation:
		return "activation"
	}
	return fmt.Sprintf("layer_kind(%d)", int(k))
}

// ActivationFn names the point-wise activations used by the Activation kind.
type ActivationFn int

const (
	ReLU ActivationFn = iota
	Sigmoid
)

// Layer is one node in a network topology. Only the fields relevant to its
// Kind are populated.
type Layer struct {
	Kind LayerKind
	Name string

	// Conv2D / TransposeConv2D
	Filters int
	Kernel  int
	Stride  int

	// Dropout
	Rate float64

	// LeakyReLU
	Alpha float64

	// Dense
	Units int

	// BatchNorm
	Momentum float64

	// Upsample2D
	Scale int

	// Reshape
	TargetShape tensor.Shape

	// Activation
	Fn ActivationFn
}

// outputShape computes the per-example shape a layer produces from the given
// per-example input shape. Image shapes are (channels, rows, cols); vector
// shapes are one-dimensional.
func (l Layer) outputShape(in tensor.Shape) (tensor.Shape, error) {
	switch l.Kind {
	case Conv2D:
		if len(in) != 3 {
			return nil, fmt.Errorf("layer %s: want image input, got shape %v", l.Name, in)
		}
		// Same padding: output spatial dims are ceil(dim / stride).
		rows := (in[1] + l.Stride - 1) / l.Stride
		cols := (in[2] + l.Stride - 1) / l.Stride
		return tensor.Shape{l.Filters, rows, cols}, nil
	case TransposeConv2D:
		if len(in) != 3 {
			return nil, fmt.Errorf("layer %s: want image input, got shape %v", l.Name, in)
		}
		return tensor.Shape{l.Filters, in[1], in[2]}, nil
	case Upsample2D:
		if len(in) != 3 {
			return nil, fmt.Errorf("layer %s: want image input, got shape %v", l.Name, in)
		}
		return tensor.Shape{in[0], in[1] * l.Scale, in[2] * l.Scale}, nil
	case Flatten:
		return tensor.Shape{in.TotalSize()}, nil
	case Dense:
		if len(in) != 1 {
			return nil, fmt.Errorf("layer %s: want vector input, got shape %v", l.Name, in)
		}
		return tensor.Shape{l.Units}, nil
	case Reshape:
		if l.TargetShape.TotalSize() != in.TotalSize() {
			return nil, fmt.Errorf("layer %s: cannot reshape %v into %v", l.Name, in, l.TargetShape)
		}
		return l.TargetShape.Clone(), nil
	case LeakyReLU, Dropout, BatchNorm, Activation:
		return in.Clone(), nil
	}
	return nil, fmt.Errorf("layer %s: unknown kind %v", l.Name, l.Kind)
}

// inferOutputShape runs shape inference over a whole topology.
func inferOutputShape(input tensor.Shape, layers []Layer) (tensor.Shape, error) {
	cur := input.Clone()
	for _, l := range layers {
		next, err := l.outputShape(cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
