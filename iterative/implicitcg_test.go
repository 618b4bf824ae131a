// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestImplicitCG(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	// Sizes small enough that the solve must exhaust the Krylov space, so
	// the accumulated estimate is the full inverse of A.
	for _, n := range []int{1, 2, 3, 5, 8} {
		// Generate a symmetric positive-definite matrix A, stored fully
		// so that the accumulated inverse estimate can be verified.
		a := make([]float64, n*n)
		lda := n
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := rnd.Float64()
				a[i*lda+j] = v
				a[j*lda+i] = v
			}
		}
		for i := 0; i < n; i++ {
			a[i*lda+i] += float64(n)
		}
		want := make([]float64, n)
		for i := range want {
			want[i] = 1
		}
		b := make([]float64, n)
		bi := blas64.Implementation()
		bi.Dgemv(blas.NoTrans, n, n, 1, a, lda, want, 1, 0, b, 1)

		A := MatrixOps{
			MatVec: func(dst, x []float64) {
				bi.Dgemv(blas.NoTrans, n, n, 1, a, lda, x, 1, 0, dst, 1)
			},
		}
		method := &ImplicitCG{}
		r, err := LinearSolve(A, b, method, Settings{Tolerance: 1e-12})

		if err != nil {
			t.Errorf("Case n=%v: unexpected error %v", n, err)
			continue
		}
		dist := floats.Distance(r.X, want, math.Inf(1))
		if dist > 1e-8 {
			t.Errorf("Case n=%v: unexpected solution, |want-got|=%v", n, dist)
		}

		// A run to full accuracy explores the whole space, so the
		// estimate must act as the inverse of A.
		c := method.InverseEstimate()
		aDense := mat.NewDense(n, n, a)
		var prod mat.Dense
		prod.Mul(aDense, c)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				wantij := 0.0
				if i == j {
					wantij = 1
				}
				if math.Abs(prod.At(i, j)-wantij) > 1e-5 {
					t.Errorf("Case n=%v: A*C deviates from identity at (%v,%v): %v", n, i, j, prod.At(i, j))
				}
			}
		}
		// The estimate is a sum of outer products, hence symmetric.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if math.Abs(c.At(i, j)-c.At(j, i)) > 1e-10 {
					t.Errorf("Case n=%v: inverse estimate is not symmetric at (%v,%v)", n, i, j)
				}
			}
		}
	}
}

func TestImplicitCGLarge(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	for _, n := range []int{20, 50, 100, 200} {
		a := make([]float64, n*n)
		lda := n
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := rnd.Float64()
				a[i*lda+j] = v
				a[j*lda+i] = v
			}
		}
		for i := 0; i < n; i++ {
			a[i*lda+i] += float64(n)
		}
		want := make([]float64, n)
		for i := range want {
			want[i] = 1
		}
		b := make([]float64, n)
		bi := blas64.Implementation()
		bi.Dgemv(blas.NoTrans, n, n, 1, a, lda, want, 1, 0, b, 1)

		A := MatrixOps{
			MatVec: func(dst, x []float64) {
				bi.Dgemv(blas.NoTrans, n, n, 1, a, lda, x, 1, 0, dst, 1)
			},
		}
		r, err := LinearSolve(A, b, &ImplicitCG{}, Settings{Tolerance: 1e-10})
		if err != nil {
			t.Errorf("Case n=%v: unexpected error %v", n, err)
			continue
		}
		dist := floats.Distance(r.X, want, math.Inf(1))
		if dist > 1e-8 {
			t.Errorf("Case n=%v: unexpected solution, |want-got|=%v", n, dist)
		}
	}
}

func TestImplicitCGIterationLimit(t *testing.T) {
	a := []float64{4, 1, 1, 3}
	A := MatrixOps{
		MatVec: func(dst, x []float64) {
			dst[0] = a[0]*x[0] + a[1]*x[1]
			dst[1] = a[2]*x[0] + a[3]*x[1]
		},
	}
	b := []float64{1, 2}

	method := &ImplicitCG{}
	r, err := LinearSolve(A, b, method, Settings{Tolerance: 1e-10, MaxIterations: 1})
	if err != ErrIterationLimit {
		t.Errorf("expected ErrIterationLimit, got %v", err)
	}
	if len(r.X) != 2 {
		t.Errorf("expected a partial solution of length 2, got %v", r.X)
	}
	if method.InverseEstimate() == nil {
		t.Error("expected a partial inverse estimate")
	}
}

func TestImplicitCGEtaBreakdown(t *testing.T) {
	// Indefinite system for which the first deflated direction d gives
	// s^T A d = 0.
	A := MatrixOps{
		MatVec: func(dst, x []float64) {
			dst[0] = x[0]
			dst[1] = -x[1]
		},
	}
	b := []float64{1, 1}

	_, err := LinearSolve(A, b, &ImplicitCG{}, Settings{Tolerance: 1e-10})
	if !errors.Is(err, ErrBreakdown) {
		t.Errorf("expected eta breakdown, got %v", err)
	}
}
