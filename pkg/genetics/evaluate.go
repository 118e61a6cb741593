package genetics

import (
	"context"

	"github.com/SangMin316/dn3/pkg/config"
	"github.com/SangMin316/dn3/pkg/dataset"
	"github.com/SangMin316/dn3/pkg/model"
	"github.com/SangMin316/dn3/pkg/transform"
)

// evaluateFitness trains a model with the strategy's default pipeline and
// returns its metrics on test.
func evaluateFitness(ctx context.Context, base model.ModelParams, train, test []transform.Sample, s Strategy, seed uint64) (*model.ModelMetrics, error) {
	params := StrategyToParams(base, s)
	rng := transform.NewRand(seed)

	pipeline := config.Default(params.Classes, params.ShuffleProbability, params.SmoothingGamma, params.AugmentNoise, params.MixupRate)
	sample, batch, err := pipeline.Build(rng, nil)
	if err != nil {
		return nil, err
	}

	augmented, err := dataset.Map(ctx, train, sample, 1)
	if err != nil {
		return nil, err
	}

	m, err := model.NewModel(ctx, nil, params, augmented, test, batch, rng)
	if err != nil {
		return nil, err
	}
	return &m.Metrics, nil
}
