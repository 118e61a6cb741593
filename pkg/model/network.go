package model

import (
	"fmt"

	"github.com/SangMin316/dn3/pkg/transform"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// network is a fully connected classifier with a softmax output.
type network struct {
	g       *gorgonia.ExprGraph
	x       *gorgonia.Node
	y       *gorgonia.Node
	weights gorgonia.Nodes
	out     *gorgonia.Node
}

// newNetwork builds a graph for batchSize rows and the given layer widths,
// input first and classes last. Weights are Glorot initialised unless
// values are supplied.
func newNetwork(batchSize int, layers []int, activation string, dropout float64, values []tensor.Tensor) (*network, error) {
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 layers, got %d", transform.ErrInvalidConfiguration, len(layers))
	}
	if values != nil && len(values) != len(layers)-1 {
		return nil, fmt.Errorf("%w: %d weight tensors for %d layers", transform.ErrInvalidConfiguration, len(values), len(layers))
	}

	n := &network{g: gorgonia.NewGraph()}

	n.x = gorgonia.NewMatrix(n.g, tensor.Float64,
		gorgonia.WithShape(batchSize, layers[0]),
		gorgonia.WithName("x"))

	n.y = gorgonia.NewMatrix(n.g, tensor.Float64,
		gorgonia.WithShape(batchSize, layers[len(layers)-1]),
		gorgonia.WithName("y"))

	for i := 1; i < len(layers); i++ {
		opts := []gorgonia.NodeConsOpt{
			gorgonia.WithShape(layers[i-1], layers[i]),
			gorgonia.WithName(fmt.Sprintf("w%d", i-1)),
		}
		if values != nil {
			opts = append(opts, gorgonia.WithValue(values[i-1]))
		} else {
			opts = append(opts, gorgonia.WithInit(gorgonia.GlorotN(1.0)))
		}
		n.weights = append(n.weights, gorgonia.NewMatrix(n.g, tensor.Float64, opts...))
	}

	layer := n.x
	for i, w := range n.weights {
		var err error
		if layer, err = gorgonia.Mul(layer, w); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if i == len(n.weights)-1 {
			break
		}
		if layer, err = activate(activation, layer); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if dropout > 0 {
			if layer, err = gorgonia.Dropout(layer, dropout); err != nil {
				return nil, fmt.Errorf("layer %d: %w", i, err)
			}
		}
	}

	out, err := gorgonia.SoftMax(layer)
	if err != nil {
		return nil, fmt.Errorf("softmax: %w", err)
	}
	n.out = out
	return n, nil
}

func activate(activation string, x *gorgonia.Node) (*gorgonia.Node, error) {
	switch activation {
	case ActivationReLU, "":
		return gorgonia.Rectify(x)
	case ActivationMish:
		return Mish(x)
	default:
		return nil, fmt.Errorf("%w: unknown activation %q", transform.ErrInvalidConfiguration, activation)
	}
}

// regularization is penalty * sum(mean(w^2)) over all weights.
func (n *network) regularization(penalty float64) (*gorgonia.Node, error) {
	var total *gorgonia.Node
	for _, w := range n.weights {
		sq, err := gorgonia.Square(w)
		if err != nil {
			return nil, err
		}
		mean, err := gorgonia.Mean(sq)
		if err != nil {
			return nil, err
		}
		if total == nil {
			total = mean
		} else if total, err = gorgonia.Add(total, mean); err != nil {
			return nil, err
		}
	}
	return gorgonia.Mul(gorgonia.NewConstant(penalty), total)
}

func (n *network) snapshot() []tensor.Tensor {
	out := make([]tensor.Tensor, len(n.weights))
	for i, w := range n.weights {
		out[i] = w.Value().(tensor.Tensor).Clone().(tensor.Tensor)
	}
	return out
}
