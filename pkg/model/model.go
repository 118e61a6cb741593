package model

import (
	"context"
	"fmt"
	"log"

	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/jedib0t/go-pretty/v6/progress"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

type Model struct {
	weights []tensor.Tensor
	params  ModelParams
	Metrics ModelMetrics
}

// NewModel trains on train, augmenting every batch with augment, and
// evaluates the result on test.
func NewModel(ctx context.Context, pw progress.Writer, params ModelParams, train, test []transform.Sample, augment transform.Transform, rng *rand.Rand) (*Model, error) {
	weights, err := Train(ctx, pw, params, train, augment, rng)
	if err != nil {
		return nil, fmt.Errorf("training error: %w", err)
	}

	m := &Model{weights: weights, params: params}
	if m.Metrics, err = m.Evaluate(pw, test); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Weights() []tensor.Tensor {
	return m.weights
}

func (m *Model) Predict(input tensor.Tensor) ([]float64, error) {
	return Predict(m.weights, m.params.Activation, input)
}

// Evaluate predicts every sample and returns confusion matrix metrics.
// Samples that fail to predict are logged and skipped.
func (m *Model) Evaluate(pw progress.Writer, samples []transform.Sample) (ModelMetrics, error) {
	var tracker *progress.Tracker
	if pw != nil {
		tracker = &progress.Tracker{
			Message: "Validation",
			Total:   int64(len(samples)),
			Units:   progress.UnitsDefault,
		}
		pw.AppendTracker(tracker)
		tracker.Start()
		defer tracker.MarkAsDone()
	}

	classes := m.params.Classes
	confusionMatrix := make([][]int, classes)
	for i := range confusionMatrix {
		confusionMatrix[i] = make([]int, classes)
	}

	total := 0
	for i, sample := range samples {
		if tracker != nil {
			tracker.Increment(1)
		}
		actualClass, err := classOf(sample.Label)
		if err != nil {
			return ModelMetrics{}, fmt.Errorf("sample %d: %w", i, err)
		}
		if actualClass < 0 || actualClass >= classes {
			return ModelMetrics{}, fmt.Errorf("%w: sample %d has class %d of %d", transform.ErrIndexOutOfRange, i, actualClass, classes)
		}

		pred, err := m.Predict(sample.Input)
		if err != nil {
			log.Printf("prediction error for sample %d: %v", i, err)
			continue
		}

		confusionMatrix[actualClass][argmax(pred)]++
		total++
	}

	return calculateMetrics(confusionMatrix, total), nil
}
