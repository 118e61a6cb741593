package model

import (
	"fmt"

	"github.com/SangMin316/dn3/pkg/transform"
	"gorgonia.org/gorgonia"
)

// Mish is the hidden-layer activation selected by ActivationMish:
// x * tanh(log(1 + e^x)).
func Mish(x *gorgonia.Node) (*gorgonia.Node, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: mish of a nil node", transform.ErrInvalidConfiguration)
	}

	ex, err := gorgonia.Exp(x)
	if err != nil {
		return nil, fmt.Errorf("mish: exp: %w", err)
	}
	onePlus, err := gorgonia.Add(ex, gorgonia.NewConstant(1.0))
	if err != nil {
		return nil, fmt.Errorf("mish: 1+exp: %w", err)
	}
	softplus, err := gorgonia.Log(onePlus)
	if err != nil {
		return nil, fmt.Errorf("mish: softplus: %w", err)
	}
	gate, err := gorgonia.Tanh(softplus)
	if err != nil {
		return nil, fmt.Errorf("mish: tanh: %w", err)
	}
	return gorgonia.HadamardProd(x, gate)
}
