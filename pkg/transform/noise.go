package transform

import (
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// Noise scales every input element by (1 + u), u ~ U(-Amount, Amount).
type Noise struct {
	Amount float64
	rng    *rand.Rand
}

func NewNoise(amount float64, rng *rand.Rand) (*Noise, error) {
	if amount < 0 || amount > 1 {
		return nil, invalid("noise amount must be in [0, 1], got %v", amount)
	}
	return &Noise{Amount: amount, rng: defaultRand(rng)}, nil
}

func (n *Noise) Apply(s Sample) (Sample, error) {
	x, err := AsFloat64(s.Input)
	if err != nil {
		return Sample{}, err
	}
	var noisy tensor.Tensor
	if x.Shape().Dims() == 0 {
		noisy, err = tensor.Mul(x, n.factor())
	} else {
		factors := make([]float64, x.Shape().TotalSize())
		for i := range factors {
			factors[i] = n.factor()
		}
		scale := tensor.New(tensor.WithShape(x.Shape().Clone()...), tensor.WithBacking(factors))
		noisy, err = tensor.Mul(x, scale)
	}
	if err != nil {
		return Sample{}, err
	}
	return Sample{Input: noisy, Label: s.Label, Extra: s.Extra}, nil
}

func (n *Noise) factor() float64 {
	return 1 + (n.rng.Float64()*2-1)*n.Amount
}
