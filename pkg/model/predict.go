package model

import (
	"fmt"

	"github.com/SangMin316/dn3/pkg/transform"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Predict runs the forward pass for a single input and returns the class
// probabilities. Dropout is disabled.
func Predict(weights []tensor.Tensor, activation string, input tensor.Tensor) ([]float64, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no weights", transform.ErrInvalidConfiguration)
	}
	layers := []int{weights[0].Shape()[0]}
	for _, w := range weights {
		layers = append(layers, w.Shape()[1])
	}

	x, err := transform.AsFloat64(input)
	if err != nil {
		return nil, err
	}
	if x.Shape().TotalSize() != layers[0] {
		return nil, fmt.Errorf("%w: input %v has %d values, want %d", transform.ErrShapeMismatch, x.Shape(), x.Shape().TotalSize(), layers[0])
	}
	if err := x.Reshape(1, layers[0]); err != nil {
		return nil, err
	}

	net, err := newNetwork(1, layers, activation, 0, weights)
	if err != nil {
		return nil, err
	}
	if err := gorgonia.Let(net.x, x); err != nil {
		return nil, fmt.Errorf("failed to set input: %v", err)
	}
	if err := gorgonia.Let(net.y, tensor.New(tensor.Of(tensor.Float64), tensor.WithShape(1, layers[len(layers)-1]))); err != nil {
		return nil, fmt.Errorf("failed to set target: %v", err)
	}

	vm := gorgonia.NewTapeMachine(net.g)
	defer vm.Close()

	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("forward pass failed: %v", err)
	}

	return transform.Float64s(net.out.Value().(tensor.Tensor))
}

func argmax(slice []float64) int {
	maxIndex := 0
	maxValue := slice[0]
	for i, value := range slice {
		if value > maxValue {
			maxValue = value
			maxIndex = i
		}
	}
	return maxIndex
}

// classOf returns the class a label stands for: the index of a scalar
// label, or the argmax of an encoded one.
func classOf(label tensor.Tensor) (int, error) {
	if class, err := transform.ClassIndex(label); err == nil {
		return class, nil
	}
	values, err := transform.Float64s(label)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: empty label", transform.ErrShapeMismatch)
	}
	return argmax(values), nil
}
