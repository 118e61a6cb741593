package dataset_test

import (
	"path/filepath"
	"testing"

	"github.com/SangMin316/dn3/pkg/dataset"
	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func openStore(t *testing.T) *dataset.Store {
	t.Helper()
	store, err := dataset.OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openStore(t)

	samples, err := dataset.Synthetic(dataset.SyntheticConfig{Samples: 11, Channels: 2, Length: 3, Classes: 3}, transform.NewRand(1))
	require.NoError(t, err)
	encoded, err := transform.OneHot(samples[0].Label, 3)
	require.NoError(t, err)
	samples[0].Label = encoded

	require.NoError(t, store.Put("train", samples))
	require.NoError(t, store.Put("test", samples[:2]))

	got, err := store.Get("train")
	require.NoError(t, err)
	require.Len(t, got, 11)
	for i := range got {
		assert.Equal(t, tensor.Shape{2, 3}, got[i].Input.Shape())
		assert.Equal(t, floats(samples[i].Input), floats(got[i].Input))
	}
	assert.Equal(t, []float64{1, 0, 0}, floats(got[0].Label))
	class, err := transform.ClassIndex(got[10].Label)
	require.NoError(t, err)
	assert.Equal(t, 1, class)

	test, err := store.Get("test")
	require.NoError(t, err)
	assert.Len(t, test, 2)
}

func TestStorePutReplaces(t *testing.T) {
	store := openStore(t)
	require.NoError(t, store.Put("set", []transform.Sample{sample(0, 1), sample(1, 2), sample(0, 3)}))
	require.NoError(t, store.Put("set", []transform.Sample{sample(1, 9)}))

	got, err := store.Get("set")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{9}, floats(got[0].Input))
}

func TestStoreMissingAndInvalidNames(t *testing.T) {
	store := openStore(t)

	got, err := store.Get("missing")
	require.NoError(t, err)
	assert.Empty(t, got)

	err = store.Put("bad-name", nil)
	assert.ErrorIs(t, err, transform.ErrInvalidConfiguration)

	require.NoError(t, store.Put("gone", []transform.Sample{sample(0, 1)}))
	require.NoError(t, store.Delete("gone"))
	got, err = store.Get("gone")
	require.NoError(t, err)
	assert.Empty(t, got)
}
