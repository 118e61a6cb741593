package transform_test

import (
	"testing"

	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoise(t *testing.T) {
	_, err := transform.NewNoise(1.5, nil)
	assert.ErrorIs(t, err, transform.ErrInvalidConfiguration)

	still, err := transform.NewNoise(0, transform.NewRand(1))
	require.NoError(t, err)
	out, err := still.Apply(transform.Sample{Input: matrix(1, 3, 1, 2, 3), Label: scalar(0)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, floats(out.Input))

	noisy, err := transform.NewNoise(0.01, transform.NewRand(1))
	require.NoError(t, err)
	out, err = noisy.Apply(transform.Sample{Input: matrix(1, 3, 100, 200, 300), Label: scalar(0), Extra: []any{1}})
	require.NoError(t, err)
	for i, v := range floats(out.Input) {
		base := float64(100 * (i + 1))
		assert.InDelta(t, base, v, base*0.01)
	}
	assert.Equal(t, []any{1}, out.Extra)
}
