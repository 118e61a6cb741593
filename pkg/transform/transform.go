// Package transform implements data-augmentation transforms over
// (input, label, extra...) samples backed by gorgonia tensors.
package transform

import (
	"errors"
	"fmt"

	"gorgonia.org/tensor"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrShapeMismatch        = errors.New("shape mismatch")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrAlreadyEncoded       = errors.New("label already encoded")
)

// Sample is a single (input, label, extra...) tuple. After batching, the
// leading dimension of every tensor indexes examples.
type Sample struct {
	Input tensor.Tensor
	Label tensor.Tensor
	Extra []any
}

// Transform maps a sample to a transformed sample of the same arity.
type Transform interface {
	Apply(s Sample) (Sample, error)
}

type TransformFunc func(s Sample) (Sample, error)

func (f TransformFunc) Apply(s Sample) (Sample, error) {
	return f(s)
}

type composed []Transform

// Compose chains transforms left to right. The first error stops the chain.
func Compose(ts ...Transform) Transform {
	out := composed{}
	for _, t := range ts {
		if t == nil {
			continue
		}
		if c, ok := t.(composed); ok {
			out = append(out, c...)
		} else {
			out = append(out, t)
		}
	}
	return out
}

func (c composed) Apply(s Sample) (Sample, error) {
	var err error
	for i, t := range c {
		if s, err = t.Apply(s); err != nil {
			return Sample{}, fmt.Errorf("transform %d (%T): %w", i, t, err)
		}
	}
	return s, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

func shapeMismatch(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}
