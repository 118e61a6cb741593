package genetics

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/SangMin316/dn3/pkg/model"
)

func WriteCSVHeader(writer *csv.Writer) error {
	header := []string{
		"Generation",
		"Started",
		"Duration (s)",

		"Fitness (Mean)", "Fitness (Min)", "Fitness (Max)", "Fitness (StdDev)",
		"Accuracy (Mean)", "Accuracy (Min)", "Accuracy (Max)", "Accuracy (StdDev)",

		"Fitness (Best Strategy)",
		"Accuracy (Best Strategy)",

		"DN3_SMOOTHING_GAMMA (Best Strategy)",
		"DN3_SHUFFLE_PROBABILITY (Best Strategy)",
		"DN3_MIXUP_RATE (Best Strategy)",
		"DN3_AUGMENT_NOISE (Best Strategy)",
		"DN3_LEARN_RATE (Best Strategy)",
		"DN3_DROPOUT_RATE (Best Strategy)",
		"DN3_L2_PENALTY (Best Strategy)",
	}

	if err := writer.Write(header); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func WriteCSVRow(writer *csv.Writer, generation int, started, finished time.Time, fitnesses, accuracies []float64, s Strategy) error {
	f, a := summarize(fitnesses), summarize(accuracies)
	accuracy := 0.0
	if s.ModelMetrics != nil {
		accuracy = s.ModelMetrics.Accuracy
	}
	params := StrategyToParams(model.ModelParams{}, s)

	row := []string{
		fmt.Sprintf("%d", generation),
		started.Format(time.RFC3339),
		fmt.Sprintf("%0.1f", finished.Sub(started).Seconds()),

		fmt.Sprintf("%0.6f", f.Mean), fmt.Sprintf("%0.6f", f.Min), fmt.Sprintf("%0.6f", f.Max), fmt.Sprintf("%0.6f", f.StdDev),
		fmt.Sprintf("%0.2f%%", a.Mean), fmt.Sprintf("%0.2f%%", a.Min), fmt.Sprintf("%0.2f%%", a.Max), fmt.Sprintf("%0.6f", a.StdDev),

		fmt.Sprintf("%.6f", s.Fitness()),
		fmt.Sprintf("%0.02f%%", accuracy),

		fmt.Sprintf("%0.04f", params.SmoothingGamma),
		fmt.Sprintf("%0.04f", params.ShuffleProbability),
		fmt.Sprintf("%0.04f", params.MixupRate),
		fmt.Sprintf("%0.04f", params.AugmentNoise),
		fmt.Sprintf("%.06f", params.LearnRate),
		fmt.Sprintf("%.06f", params.DropoutRate),
		fmt.Sprintf("%.06f", params.L2Penalty),
	}

	if err := writer.Write(row); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
