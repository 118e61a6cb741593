package transform_test

import (
	"sync"
	"testing"

	"github.com/SangMin316/dn3/pkg/transform"
	"github.com/stretchr/testify/assert"
)

func TestNewRandIsDeterministic(t *testing.T) {
	a, b := transform.NewRand(7), transform.NewRand(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestNewRandConcurrentDraws(t *testing.T) {
	rng := transform.NewRand(1)

	var wg sync.WaitGroup
	draws := make([][]float64, 8)
	for g := range draws {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				draws[g] = append(draws[g], rng.Float64())
			}
		}()
	}
	wg.Wait()

	for _, values := range draws {
		assert.Len(t, values, 200)
		for _, v := range values {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}
