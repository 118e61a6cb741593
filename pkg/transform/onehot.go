package transform

import (
	"fmt"
	"math"

	"gorgonia.org/tensor"
)

// OneHotLabels replaces a class-index label with its one-hot encoding.
type OneHotLabels struct {
	MaxClasses int
}

func NewOneHotLabels(maxClasses int) (*OneHotLabels, error) {
	if maxClasses <= 0 {
		return nil, invalid("max classes must be positive, got %d", maxClasses)
	}
	return &OneHotLabels{MaxClasses: maxClasses}, nil
}

func (o *OneHotLabels) Apply(s Sample) (Sample, error) {
	label, err := OneHot(s.Label, o.MaxClasses)
	if err != nil {
		return Sample{}, err
	}
	return Sample{Input: s.Input, Label: label, Extra: s.Extra}, nil
}

// OneHot encodes a scalar class index as a Float64 vector of length
// numClasses. An integer tensor of indices of shape S encodes to S+(numClasses).
func OneHot(label tensor.Tensor, numClasses int) (*tensor.Dense, error) {
	indices, err := classIndices(label)
	if err != nil {
		return nil, err
	}

	oneHot := make([]float64, len(indices)*numClasses)
	for i, idx := range indices {
		if idx < 0 || idx >= numClasses {
			return nil, fmt.Errorf("%w: label %d not in [0, %d)", ErrIndexOutOfRange, idx, numClasses)
		}
		oneHot[i*numClasses+idx] = 1.0
	}

	shape := append(label.Shape().Clone(), numClasses)
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(oneHot)), nil
}

func classIndices(label tensor.Tensor) ([]int, error) {
	if label == nil {
		return nil, fmt.Errorf("%w: missing label", ErrShapeMismatch)
	}
	if label.Shape().Dims() > 0 && isFloat(label) {
		return nil, fmt.Errorf("%w: float label of shape %v", ErrAlreadyEncoded, label.Shape())
	}

	vs, err := Float64s(label)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(vs))
	for i, v := range vs {
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: label %v is not a class index", ErrIndexOutOfRange, v)
		}
		out[i] = int(v)
	}
	return out, nil
}

// ClassIndex returns the class index held by a scalar label.
func ClassIndex(label tensor.Tensor) (int, error) {
	if label == nil || label.Shape().Dims() != 0 {
		return 0, fmt.Errorf("%w: label is not a scalar class index", ErrAlreadyEncoded)
	}
	indices, err := classIndices(label)
	if err != nil {
		return 0, err
	}
	return indices[0], nil
}
