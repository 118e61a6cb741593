package transform

import (
	"fmt"

	"gorgonia.org/tensor"
)

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func widen[T number](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}

// Float64s returns a copy of the tensor's elements in row-major order.
func Float64s(t tensor.Tensor) ([]float64, error) {
	if t == nil {
		return nil, fmt.Errorf("nil tensor")
	}
	switch d := tensor.Materialize(t).Data().(type) {
	case []float64:
		return append([]float64(nil), d...), nil
	case []float32:
		return widen(d), nil
	case []int:
		return widen(d), nil
	case []int8:
		return widen(d), nil
	case []int16:
		return widen(d), nil
	case []int32:
		return widen(d), nil
	case []int64:
		return widen(d), nil
	case []uint:
		return widen(d), nil
	case []uint8:
		return widen(d), nil
	case []uint16:
		return widen(d), nil
	case []uint32:
		return widen(d), nil
	case []uint64:
		return widen(d), nil
	case []bool:
		out := make([]float64, len(d))
		for i, b := range d {
			if b {
				out[i] = 1
			}
		}
		return out, nil
	case float64:
		return []float64{d}, nil
	case float32:
		return []float64{float64(d)}, nil
	case int:
		return []float64{float64(d)}, nil
	case int32:
		return []float64{float64(d)}, nil
	case int64:
		return []float64{float64(d)}, nil
	case uint8:
		return []float64{float64(d)}, nil
	default:
		return nil, fmt.Errorf("unsupported tensor data %T", d)
	}
}

// AsFloat64 casts any numeric tensor to a new Float64 dense tensor with the
// same shape. The input is never aliased.
func AsFloat64(t tensor.Tensor) (*tensor.Dense, error) {
	data, err := Float64s(t)
	if err != nil {
		return nil, err
	}
	shape := t.Shape().Clone()
	if len(shape) == 0 {
		return tensor.New(tensor.FromScalar(data[0])), nil
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data)), nil
}

func isFloat(t tensor.Tensor) bool {
	return t.Dtype() == tensor.Float64 || t.Dtype() == tensor.Float32
}

func dense(t tensor.Tensor) (*tensor.Dense, error) {
	d, ok := t.(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("expected *tensor.Dense, got %T", t)
	}
	return d, nil
}

// permutationMatrix returns the n×n matrix P with P[i][perm[i]] = 1, so that
// P @ X gathers the rows of X in perm order.
func permutationMatrix(perm []int) *tensor.Dense {
	n := len(perm)
	backing := make([]float64, n*n)
	for i, j := range perm {
		backing[i*n+j] = 1
	}
	return tensor.New(tensor.WithShape(n, n), tensor.WithBacking(backing))
}

// leftMultiply computes m @ x where x is viewed as a (rows, rest) matrix
// along its leading axis, and returns the product in x's original shape.
func leftMultiply(m *tensor.Dense, x *tensor.Dense) (*tensor.Dense, error) {
	shape := x.Shape().Clone()
	rows := shape[0]
	rest := 1
	if rows > 0 {
		rest = x.Shape().TotalSize() / rows
	}
	flat := x.Clone().(*tensor.Dense)
	if err := flat.Reshape(rows, rest); err != nil {
		return nil, fmt.Errorf("reshape to (%d, %d): %w", rows, rest, err)
	}
	out, err := tensor.MatMul(m, flat)
	if err != nil {
		return nil, err
	}
	res, err := dense(out)
	if err != nil {
		return nil, err
	}
	if err := res.Reshape(shape...); err != nil {
		return nil, fmt.Errorf("reshape to %v: %w", shape, err)
	}
	return res, nil
}
