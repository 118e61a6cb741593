package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func writePipeline(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAndBuild(t *testing.T) {
	path := writePipeline(t, `schema_version: v1
classes: 3
sample:
  - kind: channel_shuffle
    p: 0
  - kind: dummy
  - kind: label_smoothing
    gamma: 0.3
    floor: legacy
batch:
  - kind: mixup
    rate: 0.4
`)
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Classes)
	require.Len(t, p.Sample, 3)
	require.Len(t, p.Batch, 1)
	assert.Equal(t, KindMixup, p.Batch[0].Kind)

	sample, batch, err := p.Build(transform.NewRand(1), nil)
	require.NoError(t, err)
	require.NotNil(t, batch)

	out, err := sample.Apply(transform.Sample{
		Input: tensor.New(tensor.WithShape(2, 1), tensor.WithBacking([]float64{1, 2})),
		Label: tensor.New(tensor.FromScalar(1)),
	})
	require.NoError(t, err)

	input, err := transform.Float64s(out.Input)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, input)

	label, err := transform.Float64s(out.Label)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.075, 0.775, 0.075}, label, 1e-9)
}

func TestLoadDefaultsSchema(t *testing.T) {
	p, err := Load(writePipeline(t, "classes: 2\nsample: [{kind: one_hot}]\n"))
	require.NoError(t, err)
	assert.Equal(t, SupportedSchema, p.SchemaVersion)
}

func TestLoadInvalidSchema(t *testing.T) {
	_, err := Load(writePipeline(t, "schema_version: v999\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]Pipeline{
		"unknown kind":     {Classes: 2, Sample: []Step{{Kind: "rotate"}}},
		"unknown floor":    {Classes: 2, Sample: []Step{{Kind: KindLabelSmoothing, Floor: "zero"}}},
		"no classes":       {Sample: []Step{{Kind: KindOneHot}}},
		"bad mixup":        {Batch: []Step{{Kind: KindMixup}}},
		"bad noise":        {Sample: []Step{{Kind: KindNoise, Amount: 2}}},
		"ea without input": {Sample: []Step{{Kind: KindEA}}},
		"ragged matrix":    {Sample: []Step{{Kind: KindICA, Matrix: [][]float64{{1, 2}, {3}}}}},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := p.Build(transform.NewRand(1), nil)
			assert.ErrorIs(t, err, transform.ErrInvalidConfiguration)
		})
	}
}

func TestBuildProjections(t *testing.T) {
	p := Pipeline{Sample: []Step{
		{Kind: KindICA, Matrix: [][]float64{{0, 1}, {1, 0}}},
		{Kind: KindEA},
	}}
	reference := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float64{2, 0, 0, 3}))

	sample, _, err := p.Build(transform.NewRand(1), reference)
	require.NoError(t, err)

	out, err := sample.Apply(transform.Sample{Input: tensor.New(tensor.WithShape(2, 1), tensor.WithBacking([]float64{1, 5}))})
	require.NoError(t, err)
	input, err := transform.Float64s(out.Input)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 3}, input)
}

func TestDefault(t *testing.T) {
	p := Default(4, 0.1, 0.1, 0, 0.2)
	assert.Len(t, p.Sample, 2)
	assert.Len(t, p.Batch, 1)

	_, _, err := p.Build(transform.NewRand(1), nil)
	require.NoError(t, err)

	p = Default(4, 0.1, 0.1, 0.05, 0)
	assert.Empty(t, p.Batch)
	require.Len(t, p.Sample, 3)
	assert.Equal(t, KindNoise, p.Sample[0].Kind)
}

func TestBuildICANeedsOwnMatrix(t *testing.T) {
	p := Pipeline{Sample: []Step{{Kind: KindICA}}}
	reference := tensor.New(tensor.WithShape(2, 2), tensor.WithBacking([]float64{1, 0, 0, 1}))

	_, _, err := p.Build(transform.NewRand(1), reference)
	assert.ErrorIs(t, err, transform.ErrInvalidConfiguration)
}
