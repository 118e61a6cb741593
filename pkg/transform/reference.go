package transform

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// EAReference computes the Euclidean-alignment reference matrix R^(-1/2),
// where R is the mean spatial covariance X·Xᵀ/T of the (channels, time)
// trials. The result is suitable for NewEA.
func EAReference(trials []tensor.Tensor) (*tensor.Dense, error) {
	if len(trials) == 0 {
		return nil, invalid("alignment reference needs at least one trial")
	}

	var mean *mat.SymDense
	var channels int
	for i, trial := range trials {
		if trial == nil || !trial.Shape().IsMatrix() {
			return nil, shapeMismatch("trial %d must be (channels, time)", i)
		}
		x, err := AsFloat64(trial)
		if err != nil {
			return nil, err
		}
		c, t := x.Shape()[0], x.Shape()[1]
		if mean == nil {
			channels = c
			mean = mat.NewSymDense(channels, nil)
		} else if c != channels {
			return nil, shapeMismatch("trial %d has %d channels, want %d", i, c, channels)
		}
		if t == 0 {
			return nil, shapeMismatch("trial %d has no samples", i)
		}

		m, err := tensor.ToMat64(x)
		if err != nil {
			return nil, err
		}
		var cov mat.SymDense
		cov.SymOuterK(1/float64(t), m)
		mean.AddSym(mean, &cov)
	}
	mean.ScaleSym(1/float64(len(trials)), mean)

	var eig mat.EigenSym
	if ok := eig.Factorize(mean, true); !ok {
		return nil, invalid("eigen decomposition of the mean covariance failed")
	}
	vals := eig.Values(nil)
	for i, v := range vals {
		if v <= 1e-12 {
			return nil, invalid("mean covariance is not positive definite (eigenvalue %d = %g)", i, v)
		}
		vals[i] = 1 / math.Sqrt(v)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	var scaled, ref mat.Dense
	scaled.Mul(&vecs, mat.NewDiagDense(channels, vals))
	ref.Mul(&scaled, vecs.T())

	return tensor.FromMat64(&ref), nil
}
