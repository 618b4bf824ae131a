// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ImplicitCG implements a conjugate gradient variant that, while solving
//
//	Ax = b,
//
// accumulates a symmetric low-rank estimate C of the inverse of A restricted
// to the explored Krylov subspace. Each iteration recomputes the residual
// r = b - A*x from scratch, applies the preconditioner through PSolve to
// obtain the action s = M⁻¹r, deflates it against the estimate built so far,
//
//	d = (I - C A) s,
//
// and performs the rank-1 update C += d dᵀ / η with η = sᵀ A d together with
// the solution update x += (sᵀr/η) d. After a solve, the accumulated estimate
// is available from InverseEstimate.
//
// The normalization constant η becomes zero when A is indefinite on the
// deflated direction; this is reported as an eta breakdown error instead of
// dividing by it.
//
// ImplicitCG needs MatVec and PSolve matrix operations.
type ImplicitCG struct {
	resume int

	alpha float64

	s  []float64
	as []float64
	d  []float64
	ad []float64

	c *mat.Dense
}

// Init implements the Method interface.
func (ig *ImplicitCG) Init(dim int) {
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}

	ig.s = reuse(ig.s, dim)
	ig.as = reuse(ig.as, dim)
	ig.d = reuse(ig.d, dim)
	ig.ad = reuse(ig.ad, dim)

	if ig.c != nil {
		if r, _ := ig.c.Dims(); r == dim {
			ig.c.Zero()
		} else {
			ig.c = nil
		}
	}
	if ig.c == nil {
		ig.c = mat.NewDense(dim, dim, nil)
	}

	ig.resume = 1
}

// InverseEstimate returns the estimate of the inverse of A accumulated during
// the last solve. It is valid after the first commanded EndIteration and is
// overwritten by the next call to Init.
func (ig *ImplicitCG) InverseEstimate() *mat.Dense {
	return ig.c
}

// Iterate implements the Method interface.
func (ig *ImplicitCG) Iterate(ctx *Context) (Operation, error) {
	n := len(ctx.X)
	switch ig.resume {
	case 1:
		ctx.Src = nil
		ctx.Dst = nil
		ig.resume = 2
		return ComputeResidual, nil
		// Compute r <- b - A x.
	case 2:
		ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
		ctx.Converged = false
		ig.resume = 3
		return CheckResidualNorm, nil
	case 3:
		if ctx.Converged {
			ig.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		ctx.Src = ctx.Residual
		ctx.Dst = ig.s
		ig.resume = 4
		return PSolve, nil
		// Solve M s = r.
	case 4:
		ig.alpha = floats.Dot(ig.s, ctx.Residual) // α = s · r
		ctx.Src = ig.s
		ctx.Dst = ig.as
		ig.resume = 5
		return MatVec, nil
		// Compute A s.
	case 5:
		// d = (I - C A) s.
		copy(ig.d, ig.s)
		blas64.Gemv(blas.NoTrans, -1,
			ig.c.RawMatrix(),
			blas64.Vector{N: n, Data: ig.as, Inc: 1},
			1,
			blas64.Vector{N: n, Data: ig.d, Inc: 1})
		ctx.Src = ig.d
		ctx.Dst = ig.ad
		ig.resume = 6
		return MatVec, nil
		// Compute A d.
	case 6:
		eta := floats.Dot(ig.s, ig.ad) // η = s · A d
		if math.Abs(eta) < dlamchE*dlamchE {
			ig.resume = 0 // Calling Iterate again without Init will panic.
			return NoOperation, breakdown("eta")
		}
		dv := blas64.Vector{N: n, Data: ig.d, Inc: 1}
		blas64.Ger(1/eta, dv, dv, ig.c.RawMatrix()) // C += d dᵀ / η
		floats.AddScaled(ctx.X, ig.alpha/eta, ig.d) // x += (α/η) d
		ctx.Src = nil
		ctx.Dst = nil
		ig.resume = 1
		return EndIteration, nil

	default:
		panic("iterative: ImplicitCG.Init not called")
	}
}
