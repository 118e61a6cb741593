package dataset_test

import (
	"github.com/SangMin316/dn3/pkg/transform"
	"gorgonia.org/tensor"
)

func sample(class int, data ...float64) transform.Sample {
	return transform.Sample{
		Input: tensor.New(tensor.WithShape(len(data)), tensor.WithBacking(data)),
		Label: tensor.New(tensor.FromScalar(class)),
	}
}

func floats(t tensor.Tensor) []float64 {
	vs, err := transform.Float64s(t)
	if err != nil {
		panic(err)
	}
	return vs
}
