package model

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	ActivationReLU = "relu"
	ActivationMish = "mish"
)

type ModelParams struct {
	Seed uint64

	Samples       int
	Channels      int
	Length        int
	Classes       int
	SignalNoise   float64
	TrainFraction float64

	SmoothingGamma     float64
	ShuffleProbability float64
	MixupRate          float64
	AugmentNoise       float64
	Balance            bool

	Epochs        int
	BatchSize     int
	Hidden1       int
	Hidden2       int
	Activation    string
	Patience      int
	ValidateEvery int

	L2Penalty   float64
	DropoutRate float64
	LearnRate   float64

	Workers     int
	Pipeline    string
	Cache       string
	MetricsPort int
}

func (m *ModelParams) Write(w io.Writer, title string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendRows([]table.Row{
		{"DN3_SEED", fmt.Sprintf("%d", m.Seed)},
		{"DN3_SAMPLES", fmt.Sprintf("%d", m.Samples)},
		{"DN3_CHANNELS", fmt.Sprintf("%d", m.Channels)},
		{"DN3_LENGTH", fmt.Sprintf("%d", m.Length)},
		{"DN3_CLASSES", fmt.Sprintf("%d", m.Classes)},
		{"DN3_SIGNAL_NOISE", fmt.Sprintf("%0.04f", m.SignalNoise)},
		{"DN3_TRAIN_FRACTION", fmt.Sprintf("%0.02f", m.TrainFraction)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"DN3_SMOOTHING_GAMMA", fmt.Sprintf("%0.04f", m.SmoothingGamma)},
		{"DN3_SHUFFLE_PROBABILITY", fmt.Sprintf("%0.04f", m.ShuffleProbability)},
		{"DN3_MIXUP_RATE", fmt.Sprintf("%0.04f", m.MixupRate)},
		{"DN3_AUGMENT_NOISE", fmt.Sprintf("%0.04f", m.AugmentNoise)},
		{"DN3_BALANCE", fmt.Sprintf("%t", m.Balance)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"DN3_EPOCHS", fmt.Sprintf("%d", m.Epochs)},
		{"DN3_BATCH_SIZE", fmt.Sprintf("%d", m.BatchSize)},
		{"DN3_HIDDEN_1", fmt.Sprintf("%d", m.Hidden1)},
		{"DN3_HIDDEN_2", fmt.Sprintf("%d", m.Hidden2)},
		{"DN3_ACTIVATION", m.Activation},
		{"DN3_PATIENCE", fmt.Sprintf("%d", m.Patience)},
		{"DN3_VALIDATE_EVERY", fmt.Sprintf("%d", m.ValidateEvery)},
		{"DN3_L2_PENALTY", fmt.Sprintf("%.06f", m.L2Penalty)},
		{"DN3_DROPOUT_RATE", fmt.Sprintf("%.06f", m.DropoutRate)},
		{"DN3_LEARN_RATE", fmt.Sprintf("%.06f", m.LearnRate)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"DN3_WORKERS", fmt.Sprintf("%d", m.Workers)},
		{"DN3_PIPELINE", m.Pipeline},
		{"DN3_CACHE", m.Cache},
		{"DN3_METRICS_PORT", fmt.Sprintf("%d", m.MetricsPort)},
	})
	t.Render()
}

func NewModelParamsFromDefaults() ModelParams {
	return ModelParams{
		Seed: uint64(Seed()),

		Samples:       Samples(),
		Channels:      Channels(),
		Length:        Length(),
		Classes:       Classes(),
		SignalNoise:   SignalNoise(),
		TrainFraction: TrainFraction(),

		SmoothingGamma:     SmoothingGamma(),
		ShuffleProbability: ShuffleProbability(),
		MixupRate:          MixupRate(),
		AugmentNoise:       AugmentNoise(),
		Balance:            Balance(),

		Epochs:        Epochs(),
		BatchSize:     BatchSize(),
		Hidden1:       Hidden1(),
		Hidden2:       Hidden2(),
		Activation:    Activation(),
		Patience:      Patience(),
		ValidateEvery: ValidateEvery(),

		L2Penalty:   L2Penalty(),
		DropoutRate: DropoutRate(),
		LearnRate:   LearnRate(),

		Workers:     Workers(),
		Pipeline:    Pipeline(),
		Cache:       Cache(),
		MetricsPort: MetricsPort(),
	}
}

func envInt(name string, def func() int, dec func(v int) int) func() int {
	return func() int {
		value := def()
		if v, ok := os.LookupEnv(name); ok {
			if v, err := strconv.ParseInt(v, 10, 64); err != nil {
				log.Fatalf("failed to parse env.%s: %v", name, err)
			} else {
				value = int(v)
			}
		}
		return dec(value)
	}
}

func envFloat64(name string, def func() float64, dec func(v float64) float64) func() float64 {
	return func() float64 {
		value := def()
		if v, ok := os.LookupEnv(name); ok {
			if v, err := strconv.ParseFloat(v, 64); err != nil {
				log.Fatalf("failed to parse env.%s: %v", name, err)
			} else {
				value = v
			}
		}
		return dec(value)
	}
}

func envBool(name string, def func() bool) func() bool {
	return func() bool {
		value := def()
		if v, ok := os.LookupEnv(name); ok {
			if v, err := strconv.ParseBool(v); err != nil {
				log.Fatalf("failed to parse env.%s: %v", name, err)
			} else {
				value = v
			}
		}
		return value
	}
}

func envString(name string, def func() string) func() string {
	return func() string {
		value := def()
		if v, ok := os.LookupEnv(name); ok {
			value = v
		}
		return value
	}
}

var (
	Seed     = envInt("DN3_SEED", func() int { return 42 }, func(v int) int { return clampInt(0, 1<<62, v) })
	Pipeline = envString("DN3_PIPELINE", func() string { return "" })
	Cache    = envString("DN3_CACHE", func() string { return "" })
	Workers  = envInt("DN3_WORKERS", func() int { return 0 }, BoundWorkers)

	MetricsPort = envInt("DN3_METRICS_PORT", func() int { return 0 }, BoundMetricsPort)
)

var (
	Samples       = envInt("DN3_SAMPLES", func() int { return 1200 }, BoundSamples)
	Channels      = envInt("DN3_CHANNELS", func() int { return 8 }, BoundChannels)
	Length        = envInt("DN3_LENGTH", func() int { return 64 }, BoundLength)
	Classes       = envInt("DN3_CLASSES", func() int { return 4 }, BoundClasses)
	SignalNoise   = envFloat64("DN3_SIGNAL_NOISE", func() float64 { return 0.5 }, BoundSignalNoise)
	TrainFraction = envFloat64("DN3_TRAIN_FRACTION", func() float64 { return 0.8 }, BoundTrainFraction)
)

var (
	SmoothingGamma     = envFloat64("DN3_SMOOTHING_GAMMA", func() float64 { return 0.1 }, BoundSmoothingGamma)
	ShuffleProbability = envFloat64("DN3_SHUFFLE_PROBABILITY", func() float64 { return 0.1 }, BoundShuffleProbability)
	MixupRate          = envFloat64("DN3_MIXUP_RATE", func() float64 { return 0.2 }, BoundMixupRate)
	AugmentNoise       = envFloat64("DN3_AUGMENT_NOISE", func() float64 { return 0.02 }, BoundAugmentNoise)
	Balance            = envBool("DN3_BALANCE", func() bool { return false })
)

var (
	Epochs        = envInt("DN3_EPOCHS", func() int { return 50 }, BoundEpochs)
	BatchSize     = envInt("DN3_BATCH_SIZE", func() int { return 32 }, BoundBatchSize)
	Hidden1       = envInt("DN3_HIDDEN_1", func() int { return 64 }, BoundHiddenSize)
	Hidden2       = envInt("DN3_HIDDEN_2", func() int { return 32 }, BoundHiddenSize)
	Activation    = envString("DN3_ACTIVATION", func() string { return ActivationReLU })
	Patience      = envInt("DN3_PATIENCE", func() int { return 10 }, BoundPatience)
	ValidateEvery = envInt("DN3_VALIDATE_EVERY", func() int { return 5 }, BoundValidateEvery)
)

var (
	DropoutRate = envFloat64("DN3_DROPOUT_RATE", func() float64 { return 0.2 }, BoundDropoutRate)
	L2Penalty   = envFloat64("DN3_L2_PENALTY", func() float64 { return 0.001 }, BoundL2Penalty)
	LearnRate   = envFloat64("DN3_LEARN_RATE", func() float64 { return 0.001 }, BoundLearnRate)
)
