// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver provides high-level conjugate gradient solvers for dense
// linear systems
//
//	A x = b
//
// with explicit or implicit preconditioning. The numerical work is done by
// the methods in the iterative package; this package validates the operands,
// wires the dense matrices into the reverse-communication interface, and
// applies the non-convergence policy of each solver.
package solver

import (
	"errors"
	"time"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/kerembkr/VQBayesOpt/iterative"
	"github.com/kerembkr/VQBayesOpt/linalg"
)

// System is the linear system A x = b. A must be square and its dimension
// must equal the length of B. For the conjugate gradient convergence
// guarantees to hold A should be symmetric positive-definite, although the
// solvers run on any square non-singular matrix at the caller's risk.
type System struct {
	A *mat.Dense
	B []float64
}

// Result is the outcome of a solve.
type Result struct {
	// X is the approximate solution.
	X []float64
	// Iterations is the number of iterations performed.
	Iterations int
	// Converged reports whether the stopping criterion was satisfied
	// before the iteration limit.
	Converged bool
	// Residual is the final residual norm estimate.
	Residual float64
	// Runtime is an approximate duration of the solve.
	Runtime time.Duration
}

// PCG is the classic preconditioned conjugate gradient solver. Its zero
// value solves with the identity preconditioner, an absolute tolerance of
// 1e-8 on the preconditioned residual norm, and an iteration limit of ten
// times the system dimension.
type PCG struct {
	// M is the preconditioner. Every iteration solves M z = r by LU
	// factorization; M is never inverted explicitly. A nil M means the
	// identity.
	M *mat.Dense

	// MaxIter is the iteration limit. Zero means 10·n.
	MaxIter int

	// Tol is the absolute convergence tolerance on sqrt(rᵀz). Zero
	// means 1e-8.
	Tol float64

	// ValidateSymmetric and ValidatePositiveDefinite enable the
	// corresponding checks on A before solving. Both are off by default:
	// running on a non-SPD system is allowed at the caller's risk.
	ValidateSymmetric        bool
	ValidatePositiveDefinite bool
}

// Solve runs preconditioned conjugate gradient on sys.
//
// The operands are validated before any iteration: a missing A or B is
// reported as MissingOperandError, dimension problems as linalg.ShapeError,
// and a singular A as linalg.SingularMatrixError. When the iteration limit
// is reached without convergence, Solve returns the best estimate so far
// together with a *NonConvergenceError.
func (p PCG) Solve(sys System) (Result, error) {
	if sys.A == nil {
		return Result{}, MissingOperandError("matrix A must be set before solving")
	}
	if sys.B == nil {
		return Result{}, MissingOperandError("vector b must be set before solving")
	}
	if err := linalg.CheckShapes(sys.A, sys.B); err != nil {
		return Result{}, err
	}
	if p.ValidateSymmetric {
		if err := linalg.CheckSymmetric(sys.A); err != nil {
			return Result{}, err
		}
	}
	if err := linalg.CheckNotSingular(sys.A); err != nil {
		return Result{}, err
	}
	if p.ValidatePositiveDefinite {
		if err := linalg.CheckPositiveDefinite(sys.A); err != nil {
			return Result{}, err
		}
	}

	n := len(sys.B)
	tol := p.Tol
	if tol == 0 {
		tol = 1e-8
	}
	settings := iterative.Settings{
		AbsTolerance:  tol,
		MaxIterations: p.MaxIter,
	}
	if p.M != nil {
		mr, mc := p.M.Dims()
		if mr != n || mc != n {
			return Result{}, linalg.ShapeError("preconditioner M must match the system dimension")
		}
		if err := linalg.CheckNotSingular(p.M); err != nil {
			return Result{}, err
		}
		var lu mat.LU
		lu.Factorize(p.M)
		settings.PSolve = func(dst, rhs []float64) error {
			return lu.SolveVecTo(mat.NewVecDense(len(dst), dst), false, mat.NewVecDense(len(rhs), rhs))
		}
	}

	res, err := iterative.LinearSolve(matrixOps(sys.A), sys.B, &iterative.CG{}, settings)
	out := result(res, err)
	if errors.Is(err, iterative.ErrIterationLimit) {
		return out, &NonConvergenceError{Iterations: out.Iterations, Residual: out.Residual}
	}
	return out, err
}

// ImplicitPCG is a conjugate gradient solver that builds a low-rank estimate
// of A⁻¹ as a side product of the solve. The preconditioner is given as a
// factor P; the applied preconditioner inverse is
//
//	(0.01 I + P Iₚ Pᵀ)⁻¹
//
// computed once through the matrix inversion lemma. The 0.1² ridge
// regularization weight is a fixed constant of the method.
type ImplicitPCG struct {
	// P is the n×p preconditioner factor. A nil P means the identity
	// (p = n).
	P *mat.Dense

	// MaxIter is the iteration limit. Zero means 10·n.
	MaxIter int

	// RTol and ATol are the relative and absolute convergence tolerances;
	// the iteration stops when ‖r‖₂ < max(RTol·‖b‖₂, ATol). Zero values
	// mean 1e-6.
	RTol float64
	ATol float64
}

// Solve runs the inverse-estimating conjugate gradient on sys and returns,
// besides the solution, the accumulated estimate of A⁻¹ restricted to the
// explored Krylov subspace.
//
// Reaching the iteration limit is not an error: the current solution and
// estimate are returned with Result.Converged false, and it is up to the
// caller to re-check the residual if it needs to know whether the tolerance
// was met. Dimension problems, a singular preconditioner system, and an eta
// breakdown during iteration are reported as errors.
func (p ImplicitPCG) Solve(sys System) (Result, *mat.Dense, error) {
	if sys.A == nil {
		return Result{}, nil, MissingOperandError("matrix A must be set before solving")
	}
	if sys.B == nil {
		return Result{}, nil, MissingOperandError("vector b must be set before solving")
	}
	if err := linalg.CheckShapes(sys.A, sys.B); err != nil {
		return Result{}, nil, err
	}

	n := len(sys.B)
	f := p.P
	if f == nil {
		f = linalg.Eye(n)
	}
	fr, fc := f.Dims()
	if fr != n {
		return Result{}, nil, linalg.ShapeError("preconditioner factor P must have one row per unknown")
	}

	reg := linalg.Eye(n)
	reg.Scale(0.01, reg) // 0.1² ridge regularization
	invP, err := linalg.MatInvLemma(reg, f, linalg.Eye(fc), f)
	if err != nil {
		return Result{}, nil, err
	}
	rawInv := invP.RawMatrix()

	rtol := p.RTol
	if rtol == 0 {
		rtol = 1e-6
	}
	atol := p.ATol
	if atol == 0 {
		atol = 1e-6
	}
	settings := iterative.Settings{
		Tolerance:     rtol,
		AbsTolerance:  atol,
		MaxIterations: p.MaxIter,
		PSolve: func(dst, rhs []float64) error {
			blas64.Gemv(blas.NoTrans, 1, rawInv,
				blas64.Vector{N: len(rhs), Data: rhs, Inc: 1},
				0,
				blas64.Vector{N: len(dst), Data: dst, Inc: 1})
			return nil
		},
	}

	method := &iterative.ImplicitCG{}
	res, err := iterative.LinearSolve(matrixOps(sys.A), sys.B, method, settings)
	out := result(res, err)
	if errors.Is(err, iterative.ErrIterationLimit) {
		// Capped iteration is not an error for this solver; the best
		// estimate so far is returned silently.
		err = nil
	}
	return out, method.InverseEstimate(), err
}

func matrixOps(a *mat.Dense) iterative.MatrixOps {
	raw := a.RawMatrix()
	return iterative.MatrixOps{
		MatVec: func(dst, x []float64) {
			blas64.Gemv(blas.NoTrans, 1, raw,
				blas64.Vector{N: len(x), Data: x, Inc: 1},
				0,
				blas64.Vector{N: len(dst), Data: dst, Inc: 1})
		},
		MatTransVec: func(dst, x []float64) {
			blas64.Gemv(blas.Trans, 1, raw,
				blas64.Vector{N: len(x), Data: x, Inc: 1},
				0,
				blas64.Vector{N: len(dst), Data: dst, Inc: 1})
		},
	}
}

func result(res iterative.Result, err error) Result {
	return Result{
		X:          res.X,
		Iterations: res.Stats.Iterations,
		Converged:  err == nil,
		Residual:   res.Stats.ResidualNorm,
		Runtime:    res.Stats.Runtime,
	}
}
