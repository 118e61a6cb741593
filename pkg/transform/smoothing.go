package transform

import (
	"gorgonia.org/tensor"
)

type Floor int

const (
	// FloorUniform blends toward 1/targets and keeps each label summing to 1.
	FloorUniform Floor = iota
	// FloorLegacy blends toward 1/(targets+1); labels sum to 1-gamma/(targets+1).
	FloorLegacy
)

const DefaultSmoothingGamma = 0.1

// LabelSmoothing one-hot encodes the label and blends it toward a uniform
// floor: (1-gamma)*onehot + gamma*floor.
type LabelSmoothing struct {
	Targets int
	Gamma   float64
	Floor   Floor
}

type SmoothingOption func(*LabelSmoothing)

func WithFloor(f Floor) SmoothingOption {
	return func(l *LabelSmoothing) { l.Floor = f }
}

func NewLabelSmoothing(targets int, gamma float64, opts ...SmoothingOption) (*LabelSmoothing, error) {
	if targets <= 0 {
		return nil, invalid("targets must be positive, got %d", targets)
	}
	if gamma < 0 || gamma > 1 {
		return nil, invalid("smoothing gamma must be in [0, 1], got %v", gamma)
	}
	l := &LabelSmoothing{Targets: targets, Gamma: gamma}
	for _, opt := range opts {
		opt(l)
	}
	if l.Floor != FloorUniform && l.Floor != FloorLegacy {
		return nil, invalid("unknown smoothing floor %d", l.Floor)
	}
	return l, nil
}

func (l *LabelSmoothing) floor() float64 {
	if l.Floor == FloorLegacy {
		return 1 / float64(l.Targets+1)
	}
	return 1 / float64(l.Targets)
}

func (l *LabelSmoothing) Apply(s Sample) (Sample, error) {
	oneHot, err := OneHot(s.Label, l.Targets)
	if err != nil {
		return Sample{}, err
	}
	scaled, err := tensor.Mul(oneHot, 1-l.Gamma)
	if err != nil {
		return Sample{}, err
	}
	label, err := tensor.Add(scaled, l.Gamma*l.floor())
	if err != nil {
		return Sample{}, err
	}
	return Sample{Input: s.Input, Label: label, Extra: s.Extra}, nil
}
