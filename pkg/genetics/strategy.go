package genetics

import (
	"math"

	"github.com/SangMin316/dn3/pkg/model"
	"golang.org/x/exp/rand"
)

// Strategy is one candidate set of augmentation and optimiser settings.
type Strategy struct {
	SmoothingGamma     float64
	ShuffleProbability float64
	MixupRate          float64
	AugmentNoise       float64

	LearnRateLog10 float64
	DropoutRate    float64
	L2Penalty      float64

	ModelMetrics *model.ModelMetrics
}

// Fitness is the macro F1 score in [0, 1], or 0 before evaluation.
func (s Strategy) Fitness() float64 {
	if s.ModelMetrics == nil {
		return 0
	}
	return s.ModelMetrics.MacroF1() / 100
}

func randPercent(rng *rand.Rand, dev float64) float64 {
	return 1 + (rng.Float64()*(2*dev)-dev)/100
}

func boundLearnRateLog10(v float64) float64 {
	return math.Log10(model.BoundLearnRate(math.Pow(10, v)))
}

// newStrategy seeds a strategy from configured values.
func newStrategy(params model.ModelParams) Strategy {
	return Strategy{
		SmoothingGamma:     model.BoundSmoothingGamma(params.SmoothingGamma),
		ShuffleProbability: model.BoundShuffleProbability(params.ShuffleProbability),
		MixupRate:          model.BoundMixupRate(params.MixupRate),
		AugmentNoise:       model.BoundAugmentNoise(params.AugmentNoise),

		LearnRateLog10: boundLearnRateLog10(math.Log10(params.LearnRate)),
		DropoutRate:    model.BoundDropoutRate(params.DropoutRate),
		L2Penalty:      model.BoundL2Penalty(params.L2Penalty),
	}
}

// randomizeStrategy scales every gene by up to +/- percent. Genes sitting at
// zero are nudged so they can leave it.
func randomizeStrategy(rng *rand.Rand, s *Strategy, percent float64) {
	nudge := func(v float64) float64 {
		if v == 0 {
			return rng.Float64() * percent / 1000
		}
		return v * randPercent(rng, percent)
	}

	s.SmoothingGamma = model.BoundSmoothingGamma(nudge(s.SmoothingGamma))
	s.ShuffleProbability = model.BoundShuffleProbability(nudge(s.ShuffleProbability))
	s.MixupRate = model.BoundMixupRate(nudge(s.MixupRate))
	s.AugmentNoise = model.BoundAugmentNoise(nudge(s.AugmentNoise))

	s.LearnRateLog10 = boundLearnRateLog10(s.LearnRateLog10 * randPercent(rng, percent))
	s.DropoutRate = model.BoundDropoutRate(nudge(s.DropoutRate))
	s.L2Penalty = model.BoundL2Penalty(nudge(s.L2Penalty))
}

// StrategyToParams overlays the strategy on the base parameters.
func StrategyToParams(base model.ModelParams, s Strategy) model.ModelParams {
	params := base
	params.SmoothingGamma = s.SmoothingGamma
	params.ShuffleProbability = s.ShuffleProbability
	params.MixupRate = s.MixupRate
	params.AugmentNoise = s.AugmentNoise
	params.LearnRate = math.Pow(10, s.LearnRateLog10)
	params.DropoutRate = s.DropoutRate
	params.L2Penalty = s.L2Penalty
	return params
}
