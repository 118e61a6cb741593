package genetics

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"testing"

	"github.com/SangMin316/dn3/pkg/dataset"
	"github.com/SangMin316/dn3/pkg/model"
	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseParams() model.ModelParams {
	return model.ModelParams{
		Classes:            2,
		Epochs:             1,
		BatchSize:          8,
		Hidden1:            4,
		Hidden2:            4,
		Activation:         model.ActivationReLU,
		Patience:           2,
		ValidateEvery:      1,
		SmoothingGamma:     0.1,
		ShuffleProbability: 0.1,
		MixupRate:          0.2,
		LearnRate:          0.01,
		DropoutRate:        0.1,
		L2Penalty:          0.001,
	}
}

func withF1(f1 ...float64) *model.ModelMetrics {
	return &model.ModelMetrics{F1Scores: f1}
}

func TestStrategyRoundTrip(t *testing.T) {
	base := baseParams()
	s := newStrategy(base)
	params := StrategyToParams(base, s)

	assert.InDelta(t, base.LearnRate, params.LearnRate, 1e-12)
	assert.Equal(t, base.SmoothingGamma, params.SmoothingGamma)
	assert.Equal(t, base.Epochs, params.Epochs)
	assert.Equal(t, 0.0, s.Fitness())
}

func TestRandomizeStaysInBounds(t *testing.T) {
	rng := transform.NewRand(1)
	s := newStrategy(baseParams())
	for range 200 {
		randomizeStrategy(rng, &s, 100)
		assert.GreaterOrEqual(t, s.SmoothingGamma, 0.0)
		assert.LessOrEqual(t, s.SmoothingGamma, 1.0)
		assert.LessOrEqual(t, s.DropoutRate, 0.5)
		lr := math.Pow(10, s.LearnRateLog10)
		assert.GreaterOrEqual(t, lr, 1e-5-1e-12)
		assert.LessOrEqual(t, lr, 1e-1+1e-12)
	}
}

func TestCrossoverPicksParentGenes(t *testing.T) {
	rng := transform.NewRand(2)
	a := Strategy{SmoothingGamma: 0.1, MixupRate: 1}
	b := Strategy{SmoothingGamma: 0.3, MixupRate: 3}
	for range 50 {
		child := crossover(rng, a, b)
		assert.Contains(t, []float64{0.1, 0.3, 0.2}, math.Round(child.SmoothingGamma*10)/10)
		assert.Contains(t, []float64{1, 3, 2}, child.MixupRate)
	}
}

func TestSelectionKeepsElite(t *testing.T) {
	population := []Strategy{
		{ModelMetrics: withF1(90, 90)},
		{ModelMetrics: withF1(80, 80)},
		{ModelMetrics: withF1(50, 50)},
		{ModelMetrics: withF1(10, 10)},
	}
	selected := selection(transform.NewRand(3), population, 0.25, 2)
	require.GreaterOrEqual(t, len(selected), 2)
	assert.InDelta(t, 0.9, selected[0].Fitness(), 1e-9)
	assert.InDelta(t, 0.8, selected[1].Fitness(), 1e-9)
}

func TestSummarize(t *testing.T) {
	s := summarize([]float64{4, 1, 3, 2})
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, summary{}, summarize(nil))
}

func TestNaturalSelection(t *testing.T) {
	samples, err := dataset.Synthetic(dataset.SyntheticConfig{Samples: 60, Channels: 2, Length: 8, Classes: 2, Noise: 0.05}, transform.NewRand(1))
	require.NoError(t, err)
	train, test := dataset.Split(samples, 0.8)

	var out, buf bytes.Buffer
	w := csv.NewWriter(&buf)
	opts := Options{Population: 3, Generations: 2, RetainRate: 0.5, MutationRate: 0.5, EliteCount: 1, Workers: 2, Seed: 7}

	best, err := NaturalSelection(context.Background(), nil, &out, w, baseParams(), train, test, opts)
	require.NoError(t, err)
	require.NotNil(t, best.ModelMetrics)
	assert.GreaterOrEqual(t, best.Fitness(), 0.0)
	assert.Contains(t, out.String(), "DN3_MIXUP_RATE")

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestNaturalSelectionErrors(t *testing.T) {
	_, err := NaturalSelection(context.Background(), nil, nil, nil, baseParams(), nil, nil, Options{Population: 1, Generations: 1})
	assert.ErrorIs(t, err, transform.ErrInvalidConfiguration)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	samples, err := dataset.Synthetic(dataset.SyntheticConfig{Samples: 20, Channels: 1, Length: 4, Classes: 2}, transform.NewRand(1))
	require.NoError(t, err)
	_, err = NaturalSelection(ctx, nil, nil, nil, baseParams(), samples, samples, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
