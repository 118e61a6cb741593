package genetics

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

// selection retains the best share of a population sorted by descending
// fitness, never fewer than eliteCount or one, then admits the rest by
// fitness-weighted roulette.
func selection(rng *rand.Rand, population []Strategy, retainRate float64, eliteCount int) []Strategy {
	fitnesses := make([]float64, len(population))
	for i, s := range population {
		fitnesses[i] = s.Fitness()
	}
	if stat.StdDev(fitnesses, nil) > 0.05 {
		retainRate *= 0.9 // More selection pressure
	} else {
		retainRate *= 1.1 // Allow more exploration
	}

	eliteCount = min(eliteCount, len(population))
	n := max(eliteCount, 1, min(len(population), int(float64(len(population))*retainRate)))
	elite := make([]Strategy, 0, n)
	elite = append(elite, population[:n]...)

	totalFitness := 0.0
	for _, f := range fitnesses {
		totalFitness += math.Exp(f)
	}

	roulette := make([]Strategy, 0, len(population)-n)
	for _, s := range population[n:] {
		if rng.Float64() < math.Exp(s.Fitness())/totalFitness {
			roulette = append(roulette, s)
		}
	}

	return append(elite, roulette...)
}
