// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func randomDense(r, c int, rnd *rand.Rand) *mat.Dense {
	m := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, rnd.NormFloat64())
		}
	}
	return m
}

// diagShifted returns m with s added to its diagonal, keeping it comfortably
// invertible.
func diagShifted(m *mat.Dense, s float64) *mat.Dense {
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		m.Set(i, i, m.At(i, i)+s)
	}
	return m
}

func TestMatInvLemmaRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, tc := range []struct{ n, k int }{
		{1, 1},
		{3, 1},
		{4, 2},
		{6, 2},
		{8, 5},
		{10, 10},
	} {
		a := diagShifted(randomDense(tc.n, tc.n, rnd), float64(2*tc.n))
		c := diagShifted(randomDense(tc.k, tc.k, rnd), float64(2*tc.k))
		u := randomDense(tc.n, tc.k, rnd)
		v := randomDense(tc.n, tc.k, rnd)

		w, err := MatInvLemma(a, u, c, v)
		require.NoError(t, err, "n=%d k=%d", tc.n, tc.k)

		// (A + U C Vᵀ) * W must be the identity.
		var cv, ucv, sum, prod mat.Dense
		cv.Mul(c, v.T())
		ucv.Mul(u, &cv)
		sum.Add(a, &ucv)
		prod.Mul(&sum, w)
		for i := 0; i < tc.n; i++ {
			for j := 0; j < tc.n; j++ {
				want := 0.0
				if i == j {
					want = 1
				}
				require.InDelta(t, want, prod.At(i, j), 1e-8,
					"n=%d k=%d entry (%d,%d)", tc.n, tc.k, i, j)
			}
		}
	}
}

func TestMatInvLemmaMatchesDirectInverse(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	n, k := 5, 2
	a := diagShifted(randomDense(n, n, rnd), float64(2*n))
	c := diagShifted(randomDense(k, k, rnd), float64(2*k))
	u := randomDense(n, k, rnd)
	v := randomDense(n, k, rnd)

	w, err := MatInvLemma(a, u, c, v)
	require.NoError(t, err)

	var cv, ucv, sum, direct mat.Dense
	cv.Mul(c, v.T())
	ucv.Mul(u, &cv)
	sum.Add(a, &ucv)
	require.NoError(t, direct.Inverse(&sum))

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.InDelta(t, direct.At(i, j), w.At(i, j), 1e-10, "entry (%d,%d)", i, j)
		}
	}
}

func TestMatInvLemmaSingular(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	n, k := 4, 2
	u := randomDense(n, k, rnd)
	v := randomDense(n, k, rnd)

	var sme SingularMatrixError

	// Singular A.
	_, err := MatInvLemma(mat.NewDense(n, n, nil), u, Eye(k), v)
	require.ErrorAs(t, err, &sme)

	// Singular C.
	a := diagShifted(randomDense(n, n, rnd), float64(2*n))
	_, err = MatInvLemma(a, u, mat.NewDense(k, k, nil), v)
	require.ErrorAs(t, err, &sme)
}

func TestMatInvLemmaShape(t *testing.T) {
	rnd := rand.New(rand.NewSource(4))
	n, k := 4, 2
	a := diagShifted(randomDense(n, n, rnd), float64(2*n))
	c := Eye(k)

	var se ShapeError

	_, err := MatInvLemma(randomDense(n, n+1, rnd), randomDense(n, k, rnd), c, randomDense(n, k, rnd))
	require.ErrorAs(t, err, &se, "non-square A")

	_, err = MatInvLemma(a, randomDense(n, k, rnd), randomDense(k, k+1, rnd), randomDense(n, k, rnd))
	require.ErrorAs(t, err, &se, "non-square C")

	_, err = MatInvLemma(a, randomDense(n+1, k, rnd), c, randomDense(n, k, rnd))
	require.ErrorAs(t, err, &se, "mismatched U")

	_, err = MatInvLemma(a, randomDense(n, k, rnd), c, randomDense(n, k+1, rnd))
	require.ErrorAs(t, err, &se, "mismatched V")
}

func TestEye(t *testing.T) {
	e := Eye(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			require.Equal(t, want, e.At(i, j))
		}
	}
}
