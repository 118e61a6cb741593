package transform_test

import (
	"sort"
	"sync"
	"testing"

	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func channels() *tensor.Dense {
	return matrix(4, 3,
		0, 0.5, 1,
		10, 10.5, 11,
		20, 20.5, 21,
		30, 30.5, 31,
	)
}

func TestNewChannelShuffleValidatesProbability(t *testing.T) {
	for _, p := range []float64{-0.01, 1.01, 2} {
		_, err := transform.NewChannelShuffle(p, nil)
		assert.ErrorIs(t, err, transform.ErrInvalidConfiguration)
	}
	for _, p := range []float64{0, 0.5, 1} {
		_, err := transform.NewChannelShuffle(p, nil)
		assert.NoError(t, err)
	}
}

func TestChannelShuffleNeverShufflesAtZero(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		shuffle, err := transform.NewChannelShuffle(0, transform.NewRand(seed))
		require.NoError(t, err)

		in := channels()
		out, err := shuffle.Apply(transform.Sample{Input: in, Label: scalar(1)})
		require.NoError(t, err)
		assert.Same(t, in, out.Input)
		assert.Equal(t, floats(channels()), floats(out.Input))
	}
}

func TestChannelShuffleAlwaysPermutesAtOne(t *testing.T) {
	want := rowsOf(channels())
	reordered := false

	for seed := uint64(0); seed < 20; seed++ {
		shuffle, err := transform.NewChannelShuffle(1, transform.NewRand(seed))
		require.NoError(t, err)

		out, err := shuffle.Apply(transform.Sample{Input: channels(), Label: scalar(1), Extra: []any{seed}})
		require.NoError(t, err)
		require.Equal(t, tensor.Shape{4, 3}, out.Input.Shape())
		assert.Equal(t, []any{seed}, out.Extra)

		got := rowsOf(out.Input)
		assert.ElementsMatch(t, want, got)
		if !assert.ObjectsAreEqual(want, got) {
			reordered = true
		}
	}
	assert.True(t, reordered, "no seed reordered the channels")
}

func TestChannelShuffleHigherRank(t *testing.T) {
	backing := make([]float64, 3*2*2)
	for i := range backing {
		backing[i] = float64(i)
	}
	in := tensor.New(tensor.WithShape(3, 2, 2), tensor.WithBacking(backing))

	shuffle, err := transform.NewChannelShuffle(1, transform.NewRand(7))
	require.NoError(t, err)
	out, err := shuffle.Apply(transform.Sample{Input: in, Label: scalar(0)})
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{3, 2, 2}, out.Input.Shape())
	got := append([]float64(nil), floats(out.Input)...)
	sort.Float64s(got)
	assert.Equal(t, backing, got)
}

func TestChannelShuffleRejectsScalarInput(t *testing.T) {
	shuffle, err := transform.NewChannelShuffle(1, transform.NewRand(1))
	require.NoError(t, err)
	_, err = shuffle.Apply(transform.Sample{Input: scalar(1.0), Label: scalar(0)})
	assert.ErrorIs(t, err, transform.ErrShapeMismatch)
}

func TestChannelShuffleConcurrentUse(t *testing.T) {
	shuffle, err := transform.NewChannelShuffle(0.5, transform.NewRand(3))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := shuffle.Apply(transform.Sample{Input: channels(), Label: scalar(0)}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestChannelShuffleOutputDtypeIsStable(t *testing.T) {
	in := tensor.New(tensor.WithShape(3, 2), tensor.WithBacking([]uint8{1, 2, 3, 4, 5, 6}))
	for _, p := range []float64{0, 1} {
		shuffle, err := transform.NewChannelShuffle(p, transform.NewRand(3))
		require.NoError(t, err)

		out, err := shuffle.Apply(transform.Sample{Input: in, Label: scalar(0)})
		require.NoError(t, err)
		assert.Equal(t, tensor.Float64, out.Input.Dtype(), "p=%v", p)
		assert.ElementsMatch(t, []float64{1, 2, 3, 4, 5, 6}, floats(out.Input))
	}
}
