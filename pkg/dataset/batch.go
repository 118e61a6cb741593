package dataset

import (
	"fmt"

	"github.com/SangMin316/dn3/pkg/transform"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// Batch stacks the selected samples along a new leading batch axis. Scalar
// class labels become an Int vector of indices; every other tensor is
// stacked as Float64. Extras at the same position are stacked when they
// are all tensors, otherwise they are collected into a []any.
func Batch(samples []transform.Sample, indices []int) (transform.Sample, error) {
	if indices == nil {
		indices = make([]int, len(samples))
		for i := range indices {
			indices[i] = i
		}
	}
	if len(indices) == 0 {
		return transform.Sample{}, fmt.Errorf("empty batch")
	}

	inputs := make([]tensor.Tensor, len(indices))
	labels := make([]tensor.Tensor, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(samples) {
			return transform.Sample{}, fmt.Errorf("%w: sample %d of %d", transform.ErrIndexOutOfRange, idx, len(samples))
		}
		inputs[i] = samples[idx].Input
		labels[i] = samples[idx].Label
	}

	input, err := stack(inputs)
	if err != nil {
		return transform.Sample{}, fmt.Errorf("stacking inputs: %w", err)
	}
	label, err := stackLabels(labels)
	if err != nil {
		return transform.Sample{}, fmt.Errorf("stacking labels: %w", err)
	}

	first := samples[indices[0]]
	var extra []any
	if len(first.Extra) > 0 {
		extra = make([]any, len(first.Extra))
		for pos := range first.Extra {
			if extra[pos], err = stackExtra(samples, indices, pos); err != nil {
				return transform.Sample{}, fmt.Errorf("stacking extra %d: %w", pos, err)
			}
		}
	}

	return transform.Sample{Input: input, Label: label, Extra: extra}, nil
}

func stack(ts []tensor.Tensor) (*tensor.Dense, error) {
	dense := make([]tensor.Tensor, len(ts))
	for i, t := range ts {
		if t == nil {
			return nil, fmt.Errorf("%w: missing tensor at %d", transform.ErrShapeMismatch, i)
		}
		d, err := transform.AsFloat64(t)
		if err != nil {
			return nil, err
		}
		if i > 0 && !d.Shape().Eq(dense[0].Shape()) {
			return nil, fmt.Errorf("%w: shape %v at %d, want %v", transform.ErrShapeMismatch, d.Shape(), i, dense[0].Shape())
		}
		dense[i] = d
	}

	if len(dense) == 1 {
		single := dense[0].(*tensor.Dense)
		if err := single.Reshape(append(tensor.Shape{1}, single.Shape()...)...); err != nil {
			return nil, err
		}
		return single, nil
	}
	stacked, err := tensor.Stack(0, dense[0], dense[1:]...)
	if err != nil {
		return nil, err
	}
	return stacked.(*tensor.Dense), nil
}

func stackLabels(labels []tensor.Tensor) (tensor.Tensor, error) {
	indices := make([]int, len(labels))
	for i, label := range labels {
		if label == nil || label.Shape().Dims() != 0 {
			return stack(labels)
		}
		idx, err := transform.ClassIndex(label)
		if err != nil {
			return nil, err
		}
		indices[i] = idx
	}
	return tensor.New(tensor.WithShape(len(indices)), tensor.WithBacking(indices)), nil
}

func stackExtra(samples []transform.Sample, indices []int, pos int) (any, error) {
	values := make([]any, len(indices))
	ts := make([]tensor.Tensor, 0, len(indices))
	for i, idx := range indices {
		if pos >= len(samples[idx].Extra) {
			return nil, fmt.Errorf("sample %d has %d extras", idx, len(samples[idx].Extra))
		}
		values[i] = samples[idx].Extra[pos]
		if t, ok := values[i].(tensor.Tensor); ok {
			ts = append(ts, t)
		}
	}
	if len(ts) == len(values) {
		return stack(ts)
	}
	return values, nil
}

// Batches splits n sample indices into shuffled batches of batchSize. The
// remainder that does not fill a batch is dropped. A nil rng keeps order.
func Batches(n, batchSize int, rng *rand.Rand) [][]int {
	if batchSize <= 0 || n < batchSize {
		return nil
	}
	var order []int
	if rng != nil {
		order = rng.Perm(n)
	} else {
		order = make([]int, n)
		for i := range order {
			order[i] = i
		}
	}

	batches := make([][]int, 0, n/batchSize)
	for start := 0; start+batchSize <= n; start += batchSize {
		batches = append(batches, order[start:start+batchSize])
	}
	return batches
}
