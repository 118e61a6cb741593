// Package config loads augmentation pipelines from YAML.
package config

import (
	"fmt"
	"os"

	"github.com/SangMin316/dn3/pkg/transform"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
	"gorgonia.org/tensor"
)

const SupportedSchema = "v1"

const (
	KindOneHot         = "one_hot"
	KindLabelSmoothing = "label_smoothing"
	KindChannelShuffle = "channel_shuffle"
	KindMixup          = "mixup"
	KindNoise          = "noise"
	KindDummy          = "dummy"
	KindEA             = "ea"
	KindICA            = "ica"
)

// Pipeline is a two stage augmentation plan. Sample steps run on every
// sample before batching; batch steps run on every stacked training batch.
type Pipeline struct {
	SchemaVersion string `yaml:"schema_version"`
	Classes       int    `yaml:"classes"`
	Sample        []Step `yaml:"sample"`
	Batch         []Step `yaml:"batch"`
}

type Step struct {
	Kind    string      `yaml:"kind"`
	Targets int         `yaml:"targets,omitempty"`
	P       *float64    `yaml:"p,omitempty"`
	Gamma   *float64    `yaml:"gamma,omitempty"`
	Floor   string      `yaml:"floor,omitempty"`
	Rate    float64     `yaml:"rate,omitempty"`
	Amount  float64     `yaml:"amount,omitempty"`
	Matrix  [][]float64 `yaml:"matrix,omitempty"`
}

// Load parses a pipeline YAML and validates schema_version. A missing
// schema_version is read as the supported one.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parsing %s: %w", path, err)
	}
	if p.SchemaVersion == "" {
		p.SchemaVersion = SupportedSchema
	}
	if p.SchemaVersion != SupportedSchema {
		return p, fmt.Errorf("pipeline schema_version %q not supported (want %q)", p.SchemaVersion, SupportedSchema)
	}
	return p, nil
}

// Default returns the pipeline used when no file is configured. Noise and
// mixup are left out when their setting is 0.
func Default(classes int, shuffle, gamma, noise, mixup float64) Pipeline {
	p := Pipeline{
		SchemaVersion: SupportedSchema,
		Classes:       classes,
	}
	if noise > 0 {
		p.Sample = append(p.Sample, Step{Kind: KindNoise, Amount: noise})
	}
	p.Sample = append(p.Sample,
		Step{Kind: KindChannelShuffle, P: &shuffle},
		Step{Kind: KindLabelSmoothing, Gamma: &gamma},
	)
	if mixup > 0 {
		p.Batch = []Step{{Kind: KindMixup, Rate: mixup}}
	}
	return p
}

// Build constructs both stages. reference is the alignment matrix used by
// ea steps that carry no matrix of their own; it may be nil otherwise.
func (p Pipeline) Build(rng *rand.Rand, reference tensor.Tensor) (sample, batch transform.Transform, err error) {
	sample, err = p.build("sample", p.Sample, rng, reference)
	if err != nil {
		return nil, nil, err
	}
	batch, err = p.build("batch", p.Batch, rng, reference)
	if err != nil {
		return nil, nil, err
	}
	return sample, batch, nil
}

func (p Pipeline) build(stage string, steps []Step, rng *rand.Rand, reference tensor.Tensor) (transform.Transform, error) {
	ts := make([]transform.Transform, 0, len(steps))
	for i, step := range steps {
		t, err := p.step(step, rng, reference)
		if err != nil {
			return nil, fmt.Errorf("%s step %d (%s): %w", stage, i, step.Kind, err)
		}
		ts = append(ts, t)
	}
	return transform.Compose(ts...), nil
}

func (p Pipeline) step(s Step, rng *rand.Rand, reference tensor.Tensor) (transform.Transform, error) {
	targets := s.Targets
	if targets == 0 {
		targets = p.Classes
	}

	switch s.Kind {
	case KindOneHot:
		return transform.NewOneHotLabels(targets)
	case KindLabelSmoothing:
		gamma := transform.DefaultSmoothingGamma
		if s.Gamma != nil {
			gamma = *s.Gamma
		}
		var opts []transform.SmoothingOption
		switch s.Floor {
		case "", "uniform":
		case "legacy":
			opts = append(opts, transform.WithFloor(transform.FloorLegacy))
		default:
			return nil, fmt.Errorf("%w: unknown floor %q", transform.ErrInvalidConfiguration, s.Floor)
		}
		return transform.NewLabelSmoothing(targets, gamma, opts...)
	case KindChannelShuffle:
		prob := transform.DefaultShuffleProbability
		if s.P != nil {
			prob = *s.P
		}
		return transform.NewChannelShuffle(prob, rng)
	case KindMixup:
		return transform.NewMixup(s.Rate, rng)
	case KindNoise:
		return transform.NewNoise(s.Amount, rng)
	case KindDummy:
		return transform.Dummy{}, nil
	case KindEA, KindICA:
		var m tensor.Tensor
		if s.Kind == KindEA {
			m = reference
		}
		if len(s.Matrix) > 0 {
			var err error
			if m, err = matrix(s.Matrix); err != nil {
				return nil, err
			}
		}
		if m == nil {
			return nil, fmt.Errorf("%w: %s step needs a matrix", transform.ErrInvalidConfiguration, s.Kind)
		}
		if s.Kind == KindICA {
			return transform.NewICA(m)
		}
		return transform.NewEA(m)
	default:
		return nil, fmt.Errorf("%w: unknown transform kind %q", transform.ErrInvalidConfiguration, s.Kind)
	}
}

func matrix(rows [][]float64) (*tensor.Dense, error) {
	cols := len(rows[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: matrix has no columns", transform.ErrInvalidConfiguration)
	}
	backing := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: matrix row %d has %d columns, want %d", transform.ErrInvalidConfiguration, i, len(row), cols)
		}
		backing = append(backing, row...)
	}
	return tensor.New(tensor.WithShape(len(rows), cols), tensor.WithBacking(backing)), nil
}
