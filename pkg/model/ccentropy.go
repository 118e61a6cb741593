package model

import (
	"fmt"

	"gorgonia.org/gorgonia"
)

// logFloor keeps log(pred) finite when softmax saturates.
const logFloor = 1e-7

// CategoricalCrossEntropy is the loss for (batch, classes) softmax outputs
// against target rows that may be smoothed or mixed:
//
//	-mean_i sum_k target[i,k] * log(pred[i,k] + logFloor)
func CategoricalCrossEntropy(pred, target *gorgonia.Node) (*gorgonia.Node, error) {
	shifted, err := gorgonia.Add(pred, gorgonia.NewConstant(logFloor))
	if err != nil {
		return nil, fmt.Errorf("cross entropy: floor predictions: %w", err)
	}
	logProbs, err := gorgonia.Log(shifted)
	if err != nil {
		return nil, fmt.Errorf("cross entropy: log: %w", err)
	}
	weighted, err := gorgonia.HadamardProd(target, logProbs)
	if err != nil {
		return nil, fmt.Errorf("cross entropy: weight by targets: %w", err)
	}
	perExample, err := gorgonia.Sum(weighted, 1)
	if err != nil {
		return nil, fmt.Errorf("cross entropy: sum classes: %w", err)
	}
	batchMean, err := gorgonia.Mean(perExample)
	if err != nil {
		return nil, fmt.Errorf("cross entropy: batch mean: %w", err)
	}
	return gorgonia.Neg(batchMean)
}
