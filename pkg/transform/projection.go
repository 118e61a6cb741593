package transform

import (
	"fmt"

	"gorgonia.org/tensor"
)

type ProjectionKind string

const (
	ProjectionICA ProjectionKind = "ica"
	ProjectionEA  ProjectionKind = "ea"
)

// LinearProjection left-multiplies the input by a fixed matrix: an ICA
// unmixing matrix or a Euclidean-alignment reference matrix.
type LinearProjection struct {
	Kind   ProjectionKind
	matrix *tensor.Dense
}

func NewLinearProjection(kind ProjectionKind, m tensor.Tensor) (*LinearProjection, error) {
	if m == nil {
		return nil, invalid("%s projection needs a matrix", kind)
	}
	if !m.Shape().IsMatrix() || m.Shape().TotalSize() == 0 {
		return nil, invalid("%s projection matrix must be a non-empty 2-D tensor, got shape %v", kind, m.Shape())
	}
	matrix, err := AsFloat64(m)
	if err != nil {
		return nil, invalid("%s projection matrix: %v", kind, err)
	}
	return &LinearProjection{Kind: kind, matrix: matrix}, nil
}

func NewICA(unmixing tensor.Tensor) (*LinearProjection, error) {
	return NewLinearProjection(ProjectionICA, unmixing)
}

func NewEA(reference tensor.Tensor) (*LinearProjection, error) {
	return NewLinearProjection(ProjectionEA, reference)
}

// Matrix returns a copy of the projection matrix.
func (p *LinearProjection) Matrix() *tensor.Dense {
	return p.matrix.Clone().(*tensor.Dense)
}

func (p *LinearProjection) Apply(s Sample) (Sample, error) {
	if s.Input == nil {
		return Sample{}, shapeMismatch("%s projection of a missing input", p.Kind)
	}
	x, err := AsFloat64(s.Input)
	if err != nil {
		return Sample{}, err
	}

	cols := p.matrix.Shape()[1]
	var out tensor.Tensor
	switch shape := x.Shape(); {
	case shape.Dims() == 2 && shape[0] == cols:
		out, err = tensor.MatMul(p.matrix, x)
	case shape.Dims() == 1 && shape[0] == cols:
		out, err = tensor.MatVecMul(p.matrix, x)
	default:
		return Sample{}, shapeMismatch("%s matrix %v cannot project input %v", p.Kind, p.matrix.Shape(), shape)
	}
	if err != nil {
		return Sample{}, fmt.Errorf("%s projection: %w", p.Kind, err)
	}
	return Sample{Input: out, Label: s.Label, Extra: s.Extra}, nil
}
