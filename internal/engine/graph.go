package engine

import (
	"github.com/pkg/errors"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"ganforge/internal/gan"
)

// bnEpsilon matches the variance floor the original batch-norm layers used.
const bnEpsilon = 1e-3

// forwardOut collects the nodes produced by expanding one network topology.
type forwardOut struct {
	out        *G.Node
	learnables G.Nodes
	bnOps      []*G.BatchNormOp
}

// forward expands net's layers on top of x, pulling parameters from store
// under net.Name. trainable controls whether this sub-network's parameters
// join the learnable set; training controls whether dropout is applied.
func forward(x *G.Node, net *gan.Network, store *Store, trainable, training bool) (*forwardOut, error) {
	g := x.Graph()
	res := &forwardOut{}

	param := func(suffix string, shape tensor.Shape, init initFn, learn bool) *G.Node {
		name := net.Name + "/" + suffix
		n := G.NodeFromAny(g, store.get(name, shape, init), G.WithName(name))
		if learn && trainable {
			res.learnables = append(res.learnables, n)
		}
		return n
	}

	var err error
	for _, l := range net.Layers {
		switch l.Kind {
		case gan.Conv2D, gan.TransposeConv2D:
			stride := l.Stride
			if l.Kind == gan.TransposeConv2D {
				if l.Stride != 1 {
					return nil, errors.Errorf("engine: layer %s: only stride-1 transposed convolutions are supported", l.Name)
				}
				stride = 1
			}
			k := l.Kernel
			inC := x.Shape()[1]
			w := param(l.Name+"/w", tensor.Shape{l.Filters, inC, k, k}, glorotUniform(inC*k*k, l.Filters*k*k), true)
			b := param(l.Name+"/b", tensor.Shape{1, l.Filters, 1, 1}, zeros(), true)
			pad := k / 2
			if x, err = G.Conv2d(x, w, tensor.Shape{k, k}, []int{pad, pad}, []int{stride, stride}, []int{1, 1}); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}
			if x, err = G.BroadcastAdd(x, b, nil, []byte{0, 2, 3}); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s bias", l.Name)
			}

		case gan.Dense:
			in := x.Shape()[1]
			w := param(l.Name+"/w", tensor.Shape{in, l.Units}, glorotUniform(in, l.Units), true)
			b := param(l.Name+"/b", tensor.Shape{1, l.Units}, zeros(), true)
			if x, err = G.Mul(x, w); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}
			if x, err = G.BroadcastAdd(x, b, nil, []byte{0}); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s bias", l.Name)
			}

		case gan.BatchNorm:
			// Gorgonia batch norm wants image-shaped input; a dense
			// activation is normalized per unit through a rank-4 view.
			flat := x.Dims() == 2
			batch := x.Shape()[0]
			units := 0
			if flat {
				units = x.Shape()[1]
				if x, err = G.Reshape(x, tensor.Shape{batch, units, 1, 1}); err != nil {
					return nil, errors.Wrapf(err, "engine: layer %s view", l.Name)
				}
			}
			c := x.Shape()[1]
			scale := param(l.Name+"/scale", tensor.Shape{1, c, 1, 1}, ones(), true)
			bias := param(l.Name+"/bias", tensor.Shape{1, c, 1, 1}, zeros(), true)
			ret, _, _, op, err := G.BatchNorm(x, scale, bias, l.Momentum, bnEpsilon)
			if err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}
			x = ret
			res.bnOps = append(res.bnOps, op)
			if flat {
				if x, err = G.Reshape(x, tensor.Shape{batch, units}); err != nil {
					return nil, errors.Wrapf(err, "engine: layer %s unview", l.Name)
				}
			}

		case gan.LeakyReLU:
			if x, err = G.LeakyRelu(x, l.Alpha); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}

		case gan.Dropout:
			if !training || l.Rate == 0 {
				continue
			}
			if x, err = G.Dropout(x, l.Rate); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}

		case gan.Flatten:
			shape := x.Shape()
			flatSize := tensor.Shape(shape[1:]).TotalSize()
			if x, err = G.Reshape(x, tensor.Shape{shape[0], flatSize}); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}

		case gan.Reshape:
			target := append(tensor.Shape{x.Shape()[0]}, l.TargetShape...)
			if x, err = G.Reshape(x, target); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}

		case gan.Upsample2D:
			if x, err = G.Upsample2D(x, l.Scale); err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}

		case gan.Activation:
			switch l.Fn {
			case gan.ReLU:
				x, err = G.Rectify(x)
			case gan.Sigmoid:
				x, err = G.Sigmoid(x)
			default:
				err = errors.Errorf("unknown activation %d", l.Fn)
			}
			if err != nil {
				return nil, errors.Wrapf(err, "engine: layer %s", l.Name)
			}

		default:
			return nil, errors.Errorf("engine: layer %s: unsupported kind %v", l.Name, l.Kind)
		}
	}

	res.out = x
	return res, nil
}

// binaryCrossEntropy builds the mean BCE node over sigmoid outputs and
// {0,1} targets of the same shape.
func binaryCrossEntropy(output, labels *G.Node) (*G.Node, error) {
	one := G.NewConstant(1.0)
	eps := G.NewConstant(1e-7)

	p, err := G.Add(output, eps)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}
	logP, err := G.Log(p)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}
	posTerm, err := G.HadamardProd(labels, logP)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}

	q, err := G.Sub(one, output)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}
	if q, err = G.Add(q, eps); err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}
	logQ, err := G.Log(q)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}
	negLabels, err := G.Sub(one, labels)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}
	negTerm, err := G.HadamardProd(negLabels, logQ)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}

	sum, err := G.Add(posTerm, negTerm)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}
	mean, err := G.Mean(sum)
	if err != nil {
		return nil, errors.Wrap(err, "engine: bce")
	}
	return G.Neg(mean)
}

// binaryAccuracy is the fraction of sigmoid outputs landing on the correct
// side of 0.5.
func binaryAccuracy(predictions, labels []float64) float64 {
	if len(predictions) == 0 {
		return 0
	}
	correct := 0
	for i, p := range predictions {
		predicted := 0.0
		if p >= 0.5 {
			predicted = 1.0
		}
		if predicted == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predictions))
}
