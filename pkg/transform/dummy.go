package transform

import "gorgonia.org/tensor"

// Dummy doubles the input. It exists to smoke-test pipelines.
type Dummy struct{}

func (Dummy) Apply(s Sample) (Sample, error) {
	x, err := AsFloat64(s.Input)
	if err != nil {
		return Sample{}, err
	}
	doubled, err := tensor.Mul(x, 2.0)
	if err != nil {
		return Sample{}, err
	}
	return Sample{Input: doubled, Label: s.Label, Extra: s.Extra}, nil
}
