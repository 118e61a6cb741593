// Package dataset holds labelled samples and the plumbing around them:
// generation, caching, batching and parallel transformation.
package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/SangMin316/dn3/pkg/transform"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

type SyntheticConfig struct {
	Samples  int
	Channels int
	Length   int
	Classes  int
	// Noise is the standard deviation of the additive Gaussian noise.
	Noise float64
}

// Synthetic generates multi-channel signals whose dominant frequency depends
// on the class. Inputs are (Channels, Length) Float64 tensors; labels are
// scalar Int class indices, assigned round-robin.
func Synthetic(cfg SyntheticConfig, rng *rand.Rand) ([]transform.Sample, error) {
	if cfg.Samples <= 0 || cfg.Channels <= 0 || cfg.Length <= 0 || cfg.Classes <= 0 {
		return nil, fmt.Errorf("%w: synthetic dataset %+v", transform.ErrInvalidConfiguration, cfg)
	}

	if rng == nil {
		rng = transform.NewRand(uint64(time.Now().UnixNano()))
	}
	normal := distuv.Normal{Mu: 0, Sigma: math.Max(cfg.Noise, 1e-12), Src: rng}
	samples := make([]transform.Sample, cfg.Samples)
	for i := range samples {
		class := i % cfg.Classes
		freq := float64(class + 1)
		backing := make([]float64, cfg.Channels*cfg.Length)
		for c := 0; c < cfg.Channels; c++ {
			phase := 2 * math.Pi * float64(c) / float64(cfg.Channels)
			gain := 1 + 0.25*float64(c)
			for t := 0; t < cfg.Length; t++ {
				v := gain * math.Sin(2*math.Pi*freq*float64(t)/float64(cfg.Length)+phase)
				if cfg.Noise > 0 {
					v += normal.Rand()
				}
				backing[c*cfg.Length+t] = v
			}
		}
		samples[i] = transform.Sample{
			Input: tensor.New(tensor.WithShape(cfg.Channels, cfg.Length), tensor.WithBacking(backing)),
			Label: tensor.New(tensor.FromScalar(class)),
		}
	}
	return samples, nil
}

// Split returns the first fraction of samples for training and the rest
// for testing.
func Split(samples []transform.Sample, fraction float64) ([]transform.Sample, []transform.Sample) {
	fraction = math.Max(0, math.Min(1, fraction))
	count := int(float64(len(samples)) * fraction)
	return samples[:count], samples[count:]
}

// Shuffle returns the samples in a random order without modifying the input.
func Shuffle(samples []transform.Sample, rng *rand.Rand) []transform.Sample {
	out := make([]transform.Sample, len(samples))
	for i, j := range rng.Perm(len(samples)) {
		out[i] = samples[j]
	}
	return out
}

// ChannelStats returns the mean and standard deviation of every channel
// (first axis) across all samples.
func ChannelStats(samples []transform.Sample) (means, stddevs []float64, err error) {
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("no samples")
	}
	channels := 0
	var perChannel [][]float64
	for i, s := range samples {
		x, err := transform.AsFloat64(s.Input)
		if err != nil {
			return nil, nil, err
		}
		if x.Shape().Dims() == 0 {
			return nil, nil, fmt.Errorf("%w: sample %d has no channel axis", transform.ErrShapeMismatch, i)
		}
		if perChannel == nil {
			channels = x.Shape()[0]
			perChannel = make([][]float64, channels)
		} else if x.Shape()[0] != channels {
			return nil, nil, fmt.Errorf("%w: sample %d has %d channels, want %d", transform.ErrShapeMismatch, i, x.Shape()[0], channels)
		}
		data, err := transform.Float64s(x)
		if err != nil {
			return nil, nil, err
		}
		width := len(data) / channels
		for c := 0; c < channels; c++ {
			perChannel[c] = append(perChannel[c], data[c*width:(c+1)*width]...)
		}
	}

	means = make([]float64, channels)
	stddevs = make([]float64, channels)
	for c, values := range perChannel {
		means[c], stddevs[c] = stat.MeanStdDev(values, nil)
	}
	return means, stddevs, nil
}
