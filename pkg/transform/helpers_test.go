package transform_test

import (
	"github.com/SangMin316/dn3/pkg/transform"
	"gorgonia.org/tensor"
)

func matrix(rows, cols int, data ...float64) *tensor.Dense {
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}

func scalar(v any) *tensor.Dense {
	return tensor.New(tensor.FromScalar(v))
}

func floats(t tensor.Tensor) []float64 {
	vs, err := transform.Float64s(t)
	if err != nil {
		panic(err)
	}
	return vs
}

func rowsOf(t tensor.Tensor) [][]float64 {
	data := floats(t)
	n := t.Shape()[0]
	width := len(data) / n
	out := make([][]float64, n)
	for i := range out {
		out[i] = data[i*width : (i+1)*width]
	}
	return out
}

type constSampler float64

func (c constSampler) Rand() float64 { return float64(c) }
