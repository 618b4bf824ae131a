// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CG implements the preconditioned conjugate gradient iterative method for
// solving the system of linear equations
//
//	Ax = b,
//
// where A is a symmetric positive-definite matrix. The preconditioner M is
// applied through the PSolve operation, one solve per iteration. Convergence
// is checked against the preconditioned residual norm sqrt(r^T z) computed
// after each solution update, so Stats.Iterations counts solution updates.
//
// CG needs MatVec and PSolve matrix operations.
type CG struct {
	first  bool
	resume int

	rho, rhoPrev float64

	z []float64
	p []float64
	q []float64
}

// Init implements the Method interface.
func (cg *CG) Init(dim int) {
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}

	cg.z = reuse(cg.z, dim)
	cg.p = reuse(cg.p, dim)
	cg.q = reuse(cg.q, dim)

	cg.first = true
	cg.resume = 1
}

// Iterate implements the Method interface.
func (cg *CG) Iterate(ctx *Context) (Operation, error) {
	switch cg.resume {
	case 1:
		ctx.Src = ctx.Residual
		ctx.Dst = cg.z
		cg.resume = 2
		return PSolve, nil
		// Solve M z = r_{i-1}.
	case 2:
		cg.rho = floats.Dot(ctx.Residual, cg.z) // ρ_i = r_{i-1} · z
		if !cg.first {
			beta := cg.rho / cg.rhoPrev        // β = ρ_i / ρ_{i-1}
			floats.AddScaled(cg.z, beta, cg.p) // z = z + β p_{i-1}
		}
		copy(cg.p, cg.z) // p_i = z
		ctx.Src = cg.p
		ctx.Dst = cg.q
		cg.resume = 3
		return MatVec, nil
		// Compute q <- A p_i.
	case 3:
		alpha := cg.rho / floats.Dot(cg.p, cg.q) // α = ρ_i / (p_i · q)
		floats.AddScaled(ctx.X, alpha, cg.p)     // x_i = x_{i-1} + α p_i
		floats.AddScaled(ctx.Residual, -alpha, cg.q)
		ctx.Src = ctx.Residual
		ctx.Dst = cg.z
		cg.resume = 4
		return PSolve, nil
		// Solve M z = r_i.
	case 4:
		ctx.ResidualNorm = math.Sqrt(floats.Dot(ctx.Residual, cg.z))
		ctx.Src = nil
		ctx.Dst = nil
		ctx.Converged = false
		cg.resume = 5
		return CheckResidualNorm, nil
	case 5:
		if ctx.Converged {
			cg.resume = 0 // Calling Iterate again without Init will panic.
			return EndIteration, nil
		}
		cg.rhoPrev = cg.rho
		cg.first = false
		cg.resume = 2
		return EndIteration, nil

	default:
		panic("iterative: CG.Init not called")
	}
}
