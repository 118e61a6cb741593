package genetics

import "golang.org/x/exp/rand"

// crossover breeds a child gene by gene from two parents.
func crossover(rng *rand.Rand, parent1, parent2 Strategy) Strategy {
	selectValue := func(a, b float64) float64 {
		r := rng.Float64()
		if r < 0.4 {
			return a
		} else if r < 0.8 {
			return b
		}
		return (a + b) / 2
	}

	return Strategy{
		SmoothingGamma:     selectValue(parent1.SmoothingGamma, parent2.SmoothingGamma),
		ShuffleProbability: selectValue(parent1.ShuffleProbability, parent2.ShuffleProbability),
		MixupRate:          selectValue(parent1.MixupRate, parent2.MixupRate),
		AugmentNoise:       selectValue(parent1.AugmentNoise, parent2.AugmentNoise),

		LearnRateLog10: selectValue(parent1.LearnRateLog10, parent2.LearnRateLog10),
		DropoutRate:    selectValue(parent1.DropoutRate, parent2.DropoutRate),
		L2Penalty:      selectValue(parent1.L2Penalty, parent2.L2Penalty),
	}
}

func mutate(rng *rand.Rand, s *Strategy, mutationRate float64) {
	if rng.Float64() < mutationRate {
		randomizeStrategy(rng, s, 5)
	}
}
