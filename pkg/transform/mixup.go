package transform

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// Mixup blends every example of a batch with another example of the same
// batch, following Zhang et al., "mixup: Beyond Empirical Risk Minimization"
// (ICLR 2018). Coefficients are drawn per example from Beta(rate, rate).
//
// Mixup must be applied to batches: the leading axis of every tensor in the
// sample is the batch axis.
type Mixup struct {
	Rate    float64
	rng     *rand.Rand
	sampler distuv.Rander
}

type MixupOption func(*Mixup)

// WithSampler replaces the Beta(rate, rate) coefficient sampler. The sampler
// must be safe for concurrent use if the transform is shared.
func WithSampler(s distuv.Rander) MixupOption {
	return func(m *Mixup) { m.sampler = s }
}

func NewMixup(rate float64, rng *rand.Rand, opts ...MixupOption) (*Mixup, error) {
	if !(rate > 0) {
		return nil, invalid("mixup rate must be positive, got %v", rate)
	}
	m := &Mixup{Rate: rate, rng: defaultRand(rng)}
	m.sampler = distuv.Beta{Alpha: rate, Beta: rate, Src: m.rng}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Mixup) Apply(s Sample) (Sample, error) {
	if s.Input == nil || s.Input.Shape().Dims() == 0 {
		return Sample{}, shapeMismatch("mixup needs a batch axis")
	}
	batchSize := s.Input.Shape()[0]
	if batchSize == 0 {
		return Sample{}, shapeMismatch("mixup on an empty batch")
	}

	mixing := m.mixingMatrix(batchSize)
	mix := func(t tensor.Tensor) (*tensor.Dense, error) {
		if t.Shape().Dims() == 0 || t.Shape()[0] != batchSize {
			return nil, shapeMismatch("tensor of shape %v does not share batch size %d", t.Shape(), batchSize)
		}
		x, err := AsFloat64(t)
		if err != nil {
			return nil, err
		}
		return leftMultiply(mixing, x)
	}

	out := Sample{}
	if s.Extra != nil {
		out.Extra = make([]any, len(s.Extra))
	}
	var err error
	if out.Input, err = mix(s.Input); err != nil {
		return Sample{}, err
	}
	if s.Label != nil {
		if out.Label, err = mix(s.Label); err != nil {
			return Sample{}, err
		}
	}
	for i, extra := range s.Extra {
		if t, ok := extra.(tensor.Tensor); ok {
			if out.Extra[i], err = mix(t); err != nil {
				return Sample{}, err
			}
		} else {
			out.Extra[i] = extra
		}
	}
	return out, nil
}

// mixingMatrix returns L with row i equal to lam[i]*e_i + (1-lam[i])*e_perm[i],
// so L @ X = lam*X + (1-lam)*X[perm] along the batch axis.
func (m *Mixup) mixingMatrix(n int) *tensor.Dense {
	perm := m.rng.Perm(n)
	backing := make([]float64, n*n)
	for i := 0; i < n; i++ {
		lam := m.sampler.Rand()
		backing[i*n+i] += lam
		backing[i*n+perm[i]] += 1 - lam
	}
	return tensor.New(tensor.WithShape(n, n), tensor.WithBacking(backing))
}
