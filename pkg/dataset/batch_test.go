package dataset_test

import (
	"testing"

	"github.com/SangMin316/dn3/pkg/dataset"
	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestBatchStacksInputsAndIndexLabels(t *testing.T) {
	samples := []transform.Sample{
		sample(0, 1, 2),
		sample(2, 3, 4),
		sample(1, 5, 6),
	}

	b, err := dataset.Batch(samples, []int{2, 0})
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 2}, b.Input.Shape())
	assert.Equal(t, []float64{5, 6, 1, 2}, floats(b.Input))
	assert.Equal(t, tensor.Int, b.Label.Dtype())
	assert.Equal(t, []float64{1, 0}, floats(b.Label))
	assert.Nil(t, b.Extra)
}

func TestBatchAllSamples(t *testing.T) {
	samples := []transform.Sample{sample(0, 1), sample(1, 2)}
	b, err := dataset.Batch(samples, nil)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 1}, b.Input.Shape())
}

func TestBatchSingleSampleAddsBatchAxis(t *testing.T) {
	b, err := dataset.Batch([]transform.Sample{sample(1, 7, 8, 9)}, nil)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3}, b.Input.Shape())
	assert.Equal(t, tensor.Shape{1}, b.Label.Shape())
	assert.Equal(t, []float64{1}, floats(b.Label))
}

func TestSingleSampleBatchEncodesAndMixes(t *testing.T) {
	b, err := dataset.Batch([]transform.Sample{sample(2, 7, 8, 9)}, nil)
	require.NoError(t, err)

	b.Label, err = transform.OneHot(b.Label, 3)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3}, b.Label.Shape())
	assert.Equal(t, []float64{0, 0, 1}, floats(b.Label))

	mixup, err := transform.NewMixup(0.4, transform.NewRand(1))
	require.NoError(t, err)
	out, err := mixup.Apply(b)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3}, out.Input.Shape())
	assert.InDeltaSlice(t, []float64{7, 8, 9}, floats(out.Input), 1e-9)
}

func TestBatchStacksEncodedLabels(t *testing.T) {
	samples := []transform.Sample{sample(0, 1), sample(1, 2)}
	for i := range samples {
		encoded, err := transform.OneHot(samples[i].Label, 2)
		require.NoError(t, err)
		samples[i].Label = encoded
	}

	b, err := dataset.Batch(samples, nil)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, b.Label.Shape())
	assert.Equal(t, []float64{1, 0, 0, 1}, floats(b.Label))
}

func TestBatchExtras(t *testing.T) {
	samples := []transform.Sample{sample(0, 1), sample(1, 2)}
	samples[0].Extra = []any{tensor.New(tensor.WithShape(1), tensor.WithBacking([]float64{10})), "a"}
	samples[1].Extra = []any{tensor.New(tensor.WithShape(1), tensor.WithBacking([]float64{20})), "b"}

	b, err := dataset.Batch(samples, nil)
	require.NoError(t, err)
	require.Len(t, b.Extra, 2)

	stacked, ok := b.Extra[0].(tensor.Tensor)
	require.True(t, ok)
	assert.Equal(t, []float64{10, 20}, floats(stacked))
	assert.Equal(t, []any{"a", "b"}, b.Extra[1])
}

func TestBatchErrors(t *testing.T) {
	samples := []transform.Sample{sample(0, 1, 2), sample(1, 3)}

	_, err := dataset.Batch(samples, nil)
	assert.ErrorIs(t, err, transform.ErrShapeMismatch)

	_, err = dataset.Batch(samples, []int{5})
	assert.ErrorIs(t, err, transform.ErrIndexOutOfRange)

	_, err = dataset.Batch(samples, []int{})
	assert.Error(t, err)
}

func TestBatchesDropRemainder(t *testing.T) {
	batches := dataset.Batches(10, 3, transform.NewRand(1))
	require.Len(t, batches, 3)

	seen := map[int]bool{}
	for _, b := range batches {
		assert.Len(t, b, 3)
		for _, idx := range b {
			assert.False(t, seen[idx], "index %d repeated", idx)
			seen[idx] = true
		}
	}
	assert.Len(t, seen, 9)

	assert.Equal(t, [][]int{{0, 1}, {2, 3}}, dataset.Batches(5, 2, nil))
	assert.Nil(t, dataset.Batches(1, 2, nil))
	assert.Nil(t, dataset.Batches(4, 0, nil))
}
