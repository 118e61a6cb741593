package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/SangMin316/dn3/pkg/config"
	"github.com/SangMin316/dn3/pkg/dataset"
	"github.com/SangMin316/dn3/pkg/genetics"
	"github.com/SangMin316/dn3/pkg/model"
	"github.com/SangMin316/dn3/pkg/telemetry"
	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"gorgonia.org/tensor"
)

func loadEnv(filenames ...string) {
	for _, filename := range filenames {
		if s, err := os.Stat(filename); err == nil && !s.IsDir() {
			godotenv.Load(filename)
		}
	}
}

// loadSamples returns the cached train and test sets, generating and
// caching them when the cache is empty.
func loadSamples(params model.ModelParams) ([]transform.Sample, []transform.Sample, error) {
	generate := func() ([]transform.Sample, []transform.Sample, error) {
		samples, err := dataset.Synthetic(dataset.SyntheticConfig{
			Samples:  params.Samples,
			Channels: params.Channels,
			Length:   params.Length,
			Classes:  params.Classes,
			Noise:    params.SignalNoise,
		}, transform.NewRand(params.Seed))
		if err != nil {
			return nil, nil, err
		}
		samples = dataset.Shuffle(samples, transform.NewRand(params.Seed+1))
		train, test := dataset.Split(samples, params.TrainFraction)
		return train, test, nil
	}

	if params.Cache == "" {
		return generate()
	}

	store, err := dataset.OpenStore(params.Cache)
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()

	train, err := store.Get("train")
	if err != nil {
		return nil, nil, err
	}
	test, err := store.Get("test")
	if err != nil {
		return nil, nil, err
	}
	if len(train) > 0 && len(test) > 0 {
		log.Printf("loaded %d train and %d test samples from %s", len(train), len(test), params.Cache)
		return train, test, nil
	}

	if train, test, err = generate(); err != nil {
		return nil, nil, err
	}
	if err := store.Put("train", train); err != nil {
		return nil, nil, err
	}
	if err := store.Put("test", test); err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func loadPipeline(params model.ModelParams) (config.Pipeline, error) {
	if params.Pipeline == "" {
		return config.Default(params.Classes, params.ShuffleProbability, params.SmoothingGamma, params.AugmentNoise, params.MixupRate), nil
	}
	p, err := config.Load(params.Pipeline)
	if err != nil {
		return p, err
	}
	if p.Classes == 0 {
		p.Classes = params.Classes
	}
	return p, nil
}

func envInt(name string, def int) int {
	if v, ok := os.LookupEnv(name); ok {
		if v, err := strconv.ParseInt(v, 10, 64); err != nil {
			log.Fatalf("error parsing env.%s: %v", name, err)
		} else {
			return int(v)
		}
	}
	return def
}

func main() {
	if _, ok := os.LookupEnv("ENV"); !ok {
		env := "development"
		os.Setenv("ENV", env)
	}
	loadEnv(".env."+os.Getenv("ENV")+".local", ".env."+os.Getenv("ENV"), ".env.local", ".env")

	params := model.NewModelParamsFromDefaults()
	params.Write(os.Stdout, "Model Config")

	if params.MetricsPort > 0 {
		telemetry.Expose(params.MetricsPort)
		log.Printf("serving metrics on :%d/metrics", params.MetricsPort)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	train, test, err := loadSamples(params)
	if err != nil {
		log.Fatalf("error loading samples: %v", err)
	}

	means, stddevs, err := dataset.ChannelStats(train)
	if err != nil {
		log.Fatalf("error computing channel stats: %v", err)
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Channels")
	t.AppendHeader(table.Row{"CHANNEL", "MEAN", "STDDEV"})
	for i := range means {
		t.AppendRow(table.Row{i, fmt.Sprintf("%0.04f", means[i]), fmt.Sprintf("%0.04f", stddevs[i])})
	}
	t.Render()

	rng := transform.NewRand(params.Seed + 2)

	if params.Balance {
		noise, err := transform.NewNoise(params.AugmentNoise, rng)
		if err != nil {
			log.Fatalf("error creating noise: %v", err)
		}
		if train, err = dataset.Balance(train, noise, rng); err != nil {
			log.Fatalf("error balancing classes: %v", err)
		}
	}

	if generations := envInt("DN3_GENERATIONS", 0); generations > 0 {
		opts := genetics.DefaultOptions()
		opts.Generations = generations
		opts.Population = envInt("DN3_POPULATION", opts.Population)
		opts.Workers = params.Workers
		opts.Seed = params.Seed

		file, err := os.OpenFile(fmt.Sprintf("optimizer-%s.csv", time.Now().Format("2006-01-02-15-04-05")), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("error opening optimizer csv: %v", err)
		}
		writer := csv.NewWriter(file)

		// Search on a split of the training set so the test set stays unseen
		searchTrain, searchTest := dataset.Split(train, 0.8)
		best, err := genetics.NaturalSelection(ctx, nil, os.Stdout, writer, params, searchTrain, searchTest, opts)
		file.Close()
		if err != nil {
			log.Fatalf("error searching strategies: %v", err)
		}
		params = genetics.StrategyToParams(params, best)
		params.Write(os.Stdout, "Best Strategy")
	}

	pipeline, err := loadPipeline(params)
	if err != nil {
		log.Fatalf("error loading pipeline: %v", err)
	}

	// Euclidean alignment reference from the raw training trials
	inputs := make([]tensor.Tensor, len(train))
	for i, s := range train {
		inputs[i] = s.Input
	}
	reference, err := transform.EAReference(inputs)
	if err != nil {
		log.Printf("no alignment reference: %v", err)
	}

	var ref tensor.Tensor
	if reference != nil {
		ref = reference
	}
	perSample, perBatch, err := pipeline.Build(rng, ref)
	if err != nil {
		log.Fatalf("error building pipeline: %v", err)
	}

	if train, err = dataset.Map(ctx, train, perSample, params.Workers); err != nil {
		log.Fatalf("error transforming samples: %v", err)
	}

	pw := progress.NewWriter()
	pw.SetMessageLength(40)
	pw.SetNumTrackersExpected(2)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerLength(15)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%2.0f%%"
	go pw.Render()

	m, err := model.NewModel(ctx, pw, params, train, test, perBatch, rng)

	pw.Stop()
	for pw.IsRenderInProgress() {
		time.Sleep(100 * time.Millisecond)
	}

	if err != nil {
		log.Fatalf("error training model: %v", err)
	}
	m.Metrics.Write(os.Stdout)
}
