package transform

import (
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// ChannelShuffle permutes the first-axis slices (channels) of the input with
// probability P. The input comes back as Float64 on both branches.
type ChannelShuffle struct {
	P   float64
	rng *rand.Rand
}

const DefaultShuffleProbability = 0.1

func NewChannelShuffle(p float64, rng *rand.Rand) (*ChannelShuffle, error) {
	if p < 0 || p > 1 {
		return nil, invalid("shuffle probability must be in [0, 1], got %v", p)
	}
	return &ChannelShuffle{P: p, rng: defaultRand(rng)}, nil
}

func (c *ChannelShuffle) Apply(s Sample) (Sample, error) {
	if c.rng.Float64() < c.P {
		input, err := c.shuffle(s)
		if err != nil {
			return Sample{}, err
		}
		return Sample{Input: input, Label: s.Label, Extra: s.Extra}, nil
	} else {
		if s.Input == nil || s.Input.Dtype() == tensor.Float64 {
			return s, nil
		}
		input, err := AsFloat64(s.Input)
		if err != nil {
			return Sample{}, err
		}
		return Sample{Input: input, Label: s.Label, Extra: s.Extra}, nil
	}
}

func (c *ChannelShuffle) shuffle(s Sample) (*tensor.Dense, error) {
	if s.Input == nil || s.Input.Shape().Dims() == 0 {
		return nil, shapeMismatch("channel shuffle needs at least one axis")
	}
	x, err := AsFloat64(s.Input)
	if err != nil {
		return nil, err
	}
	channels := x.Shape()[0]
	if channels < 2 {
		return x, nil
	}
	return leftMultiply(permutationMatrix(c.rng.Perm(channels)), x)
}
