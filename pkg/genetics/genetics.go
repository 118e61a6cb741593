// Package genetics searches augmentation and optimiser settings with a
// genetic algorithm scored on held-out macro F1.
package genetics

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"runtime"
	"sort"
	"time"

	"github.com/SangMin316/dn3/pkg/model"
	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Population   int
	Generations  int
	RetainRate   float64
	MutationRate float64
	EliteCount   int
	// Workers bounds concurrent evaluations; 0 uses NumCPU-1.
	Workers int
	Seed    uint64
}

func DefaultOptions() Options {
	return Options{
		Population:   12,
		Generations:  4,
		RetainRate:   0.4,
		MutationRate: 0.3,
		EliteCount:   2,
	}
}

// evaluate scores every strategy in place. A strategy that fails to train
// is logged and scored 0; context errors abort.
func evaluate(ctx context.Context, pw progress.Writer, base model.ModelParams, train, test []transform.Sample, population []Strategy, workers int, seed uint64) error {
	var tracker *progress.Tracker
	if pw != nil {
		tracker = &progress.Tracker{
			Message: "Evaluating fitness",
			Total:   int64(len(population)),
			Units:   progress.UnitsDefault,
		}
		pw.AppendTracker(tracker)
		tracker.Start()
		defer tracker.MarkAsDone()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range population {
		g.Go(func() error {
			metrics, err := evaluateFitness(gctx, base, train, test, population[i], seed+uint64(i))
			if tracker != nil {
				tracker.Increment(1)
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("strategy %d: %v", i, err)
				metrics = &model.ModelMetrics{}
			}
			population[i].ModelMetrics = metrics
			return nil
		})
	}
	return g.Wait()
}

// NaturalSelection evolves strategies seeded from base and returns the
// fittest one seen. Per-generation summaries go to out and csvw when set.
func NaturalSelection(ctx context.Context, pw progress.Writer, out io.Writer, csvw *csv.Writer, base model.ModelParams, train, test []transform.Sample, opts Options) (Strategy, error) {
	if opts.Population < 2 || opts.Generations < 1 {
		return Strategy{}, fmt.Errorf("%w: population %d, generations %d", transform.ErrInvalidConfiguration, opts.Population, opts.Generations)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = max(1, runtime.NumCPU()-1)
	}
	rng := transform.NewRand(opts.Seed)

	if csvw != nil {
		if err := WriteCSVHeader(csvw); err != nil {
			return Strategy{}, err
		}
	}

	// Initialize random population
	population := make([]Strategy, opts.Population)
	population[0] = newStrategy(base)
	for i := 1; i < opts.Population; i++ {
		population[i] = newStrategy(base)
		randomizeStrategy(rng, &population[i], 25)
	}

	var best Strategy
	for gen := range opts.Generations {
		started := time.Now()

		if err := evaluate(ctx, pw, base, train, test, population, workers, opts.Seed+uint64(gen*opts.Population)); err != nil {
			return Strategy{}, err
		}

		sort.SliceStable(population, func(i, j int) bool {
			return population[i].Fitness() > population[j].Fitness()
		})
		if best.ModelMetrics == nil || population[0].Fitness() > best.Fitness() {
			best = population[0]
		}

		fitnesses := make([]float64, len(population))
		accuracies := make([]float64, len(population))
		for i, s := range population {
			fitnesses[i] = s.Fitness()
			accuracies[i] = s.ModelMetrics.Accuracy
		}

		if out != nil {
			writeSummary(out, gen, fitnesses, accuracies, population[0])
		}
		if csvw != nil {
			if err := WriteCSVRow(csvw, gen, started, time.Now(), fitnesses, accuracies, population[0]); err != nil {
				return Strategy{}, fmt.Errorf("error writing csv: %w", err)
			}
		}

		if gen == opts.Generations-1 {
			break
		}

		// Breed the next generation
		population = selection(rng, population, opts.RetainRate, opts.EliteCount)
		for len(population) < opts.Population {
			p1 := population[rng.Intn(len(population))]
			p2 := population[rng.Intn(len(population))]
			child := crossover(rng, p1, p2)
			mutate(rng, &child, opts.MutationRate)
			population = append(population, child)
		}
		for i := range population {
			population[i].ModelMetrics = nil
		}
	}

	return best, nil
}

func writeSummary(w io.Writer, gen int, fitnesses, accuracies []float64, best Strategy) {
	f, a := summarize(fitnesses), summarize(accuracies)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Generation %d - Summary", gen))
	t.AppendHeader(table.Row{"", "MEAN", "MIN", "25TH", "MEDIAN", "75TH", "MAX", "STDDEV"})
	t.AppendRows([]table.Row{
		{"Fitness", fmt.Sprintf("%0.6f", f.Mean), fmt.Sprintf("%0.6f", f.Min), fmt.Sprintf("%0.6f", f.P25), fmt.Sprintf("%0.6f", f.Median), fmt.Sprintf("%0.6f", f.P75), fmt.Sprintf("%0.6f", f.Max), fmt.Sprintf("%0.6f", f.StdDev)},
		{"Accuracy", fmt.Sprintf("%0.2f%%", a.Mean), fmt.Sprintf("%0.2f%%", a.Min), fmt.Sprintf("%0.2f%%", a.P25), fmt.Sprintf("%0.2f%%", a.Median), fmt.Sprintf("%0.2f%%", a.P75), fmt.Sprintf("%0.2f%%", a.Max), fmt.Sprintf("%0.6f", a.StdDev)},
	})
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Generation %d - Best Strategy", gen))
	t.AppendRows([]table.Row{
		{"DN3_SMOOTHING_GAMMA", fmt.Sprintf("%0.04f", best.SmoothingGamma)},
		{"DN3_SHUFFLE_PROBABILITY", fmt.Sprintf("%0.04f", best.ShuffleProbability)},
		{"DN3_MIXUP_RATE", fmt.Sprintf("%0.04f", best.MixupRate)},
		{"DN3_AUGMENT_NOISE", fmt.Sprintf("%0.04f", best.AugmentNoise)},
		{"DN3_LEARN_RATE", fmt.Sprintf("%.06f", StrategyToParams(model.ModelParams{}, best).LearnRate)},
		{"DN3_DROPOUT_RATE", fmt.Sprintf("%.06f", best.DropoutRate)},
		{"DN3_L2_PENALTY", fmt.Sprintf("%.06f", best.L2Penalty)},
	})
	t.Render()

	best.ModelMetrics.Write(w)
}
