package model

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/SangMin316/dn3/pkg/dataset"
	"github.com/SangMin316/dn3/pkg/telemetry"
	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/jedib0t/go-pretty/v6/progress"
	"golang.org/x/exp/rand"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Train fits a classifier on samples and returns the weights with the best
// validation loss. Labels may be class indices or (soft) target vectors.
// augment, when set, runs on every stacked training batch after labels
// are encoded, which is where mixup belongs.
func Train(ctx context.Context, pw progress.Writer, params ModelParams, samples []transform.Sample, augment transform.Transform, rng *rand.Rand) ([]tensor.Tensor, error) {
	batchSize := params.BatchSize
	validateEvery := max(1, params.ValidateEvery)
	patience := max(1, params.Patience)
	// gorgonia reduces a one-row batch to a scalar, which the loss cannot sum
	if batchSize < 2 || params.Classes <= 0 {
		return nil, fmt.Errorf("%w: batch size %d, classes %d", transform.ErrInvalidConfiguration, batchSize, params.Classes)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("no training samples")
	}
	if rng == nil {
		rng = transform.NewRand(uint64(params.Seed))
	}

	// Hold out 10% for validation
	totalSamples := len(samples)
	validationSize := totalSamples / 10
	trainSize := totalSamples - validationSize
	if trainSize < batchSize {
		return nil, fmt.Errorf("%w: %d training samples for batch size %d", transform.ErrInvalidConfiguration, trainSize, batchSize)
	}

	indices := rng.Perm(totalSamples)
	trainIndices := indices[:trainSize]
	validIndices := indices[trainSize:]

	inputSize := samples[0].Input.Shape().TotalSize()
	layers := []int{inputSize, params.Hidden1, params.Hidden2, params.Classes}

	net, err := newNetwork(batchSize, layers, params.Activation, params.DropoutRate, nil)
	if err != nil {
		return nil, err
	}

	crossEntropy, err := CategoricalCrossEntropy(net.out, net.y)
	if err != nil {
		return nil, err
	}
	regularization, err := net.regularization(params.L2Penalty)
	if err != nil {
		return nil, fmt.Errorf("failed to build regularization: %v", err)
	}
	loss := gorgonia.Must(gorgonia.Add(crossEntropy, regularization))

	if _, err := gorgonia.Grad(loss, net.weights...); err != nil {
		return nil, fmt.Errorf("failed to compute gradients: %v", err)
	}

	vm := gorgonia.NewTapeMachine(net.g)
	defer vm.Close()

	solver := gorgonia.NewAdamSolver(
		gorgonia.WithLearnRate(params.LearnRate),
		gorgonia.WithBeta1(0.9),
		gorgonia.WithBeta2(0.999),
		gorgonia.WithEps(1e-8),
		gorgonia.WithClip(1.0),
	)

	var tracker *progress.Tracker
	if pw != nil {
		tracker = &progress.Tracker{
			Message: "Training",
			Total:   int64(params.Epochs),
			Units:   progress.UnitsDefault,
		}
		pw.AppendTracker(tracker)
		tracker.Start()
		defer tracker.MarkAsDone()
	}

	run := func(idx []int, augment transform.Transform) (float64, error) {
		x, y, err := prepareBatch(samples, idx, params.Classes, inputSize, augment)
		if err != nil {
			return 0, err
		}
		if err := gorgonia.Let(net.x, x); err != nil {
			return 0, fmt.Errorf("failed to update x tensor: %v", err)
		}
		if err := gorgonia.Let(net.y, y); err != nil {
			return 0, fmt.Errorf("failed to update y tensor: %v", err)
		}
		vm.Reset()
		if err := vm.RunAll(); err != nil {
			return 0, fmt.Errorf("forward/backward pass failed: %v", err)
		}
		return loss.Value().Data().(float64), nil
	}

	bestLoss := math.Inf(1)
	noImprovementCount := 0
	var bestWeights []tensor.Tensor

	for epoch := range params.Epochs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if tracker != nil {
			tracker.SetValue(int64(epoch))
		}

		trainLoss := 0.0
		batches := dataset.Batches(trainSize, batchSize, rng)
		for _, batch := range batches {
			value, err := run(pick(trainIndices, batch), augment)
			if err != nil {
				return nil, err
			}
			if err := solver.Step(gorgonia.NodesToValueGrads(net.weights)); err != nil {
				return nil, fmt.Errorf("solver step failed: %v", err)
			}
			trainLoss += value
		}
		avgTrainLoss := trainLoss / float64(len(batches))
		telemetry.TrainingLoss.Set(avgTrainLoss)

		if epoch%validateEvery != 0 {
			continue
		}

		avgValidLoss := avgTrainLoss
		if validBatches := dataset.Batches(validationSize, batchSize, nil); len(validBatches) > 0 {
			validLoss := 0.0
			for _, batch := range validBatches {
				value, err := run(pick(validIndices, batch), nil)
				if err != nil {
					return nil, err
				}
				validLoss += value
			}
			avgValidLoss = validLoss / float64(len(validBatches))
		}

		// Early stopping check
		if avgValidLoss < bestLoss || bestWeights == nil {
			bestLoss = avgValidLoss
			noImprovementCount = 0
			bestWeights = net.snapshot()
		} else {
			noImprovementCount++
		}

		if tracker != nil {
			tracker.UpdateMessage(fmt.Sprintf("Training - TL: %.6f, VL: %.6f", avgTrainLoss, avgValidLoss))
		}

		if noImprovementCount >= patience {
			break
		}

		if epoch%5 == 0 {
			runtime.GC()
		}
	}

	if bestWeights == nil {
		return nil, fmt.Errorf("%w: no epochs were run", transform.ErrInvalidConfiguration)
	}
	return bestWeights, nil
}

func pick(from, positions []int) []int {
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = from[p]
	}
	return out
}

// Targets returns (batch, classes) Float64 targets for a batch label.
// Integer index vectors are one-hot encoded; float labels are taken as
// already encoded.
func Targets(label tensor.Tensor, classes int) (*tensor.Dense, error) {
	if label == nil {
		return nil, fmt.Errorf("%w: missing label", transform.ErrShapeMismatch)
	}
	if label.Dtype() != tensor.Float64 && label.Dtype() != tensor.Float32 {
		return transform.OneHot(label, classes)
	}
	return transform.AsFloat64(label)
}

func prepareBatch(samples []transform.Sample, indices []int, classes, inputSize int, augment transform.Transform) (*tensor.Dense, *tensor.Dense, error) {
	b, err := dataset.Batch(samples, indices)
	if err != nil {
		return nil, nil, err
	}
	if b.Label, err = Targets(b.Label, classes); err != nil {
		return nil, nil, err
	}
	if augment != nil {
		if b, err = augment.Apply(b); err != nil {
			return nil, nil, fmt.Errorf("augmenting batch: %w", err)
		}
		telemetry.BatchesAugmented.Inc()
	}

	x, err := transform.AsFloat64(b.Input)
	if err != nil {
		return nil, nil, err
	}
	if err := x.Reshape(len(indices), inputSize); err != nil {
		return nil, nil, fmt.Errorf("%w: input %v is not %d wide", transform.ErrShapeMismatch, b.Input.Shape(), inputSize)
	}

	y, err := transform.AsFloat64(b.Label)
	if err != nil {
		return nil, nil, err
	}
	if !y.Shape().Eq(tensor.Shape{len(indices), classes}) {
		return nil, nil, fmt.Errorf("%w: targets %v, want (%d, %d)", transform.ErrShapeMismatch, y.Shape(), len(indices), classes)
	}
	return x, y, nil
}
