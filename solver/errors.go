// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package solver

import "fmt"

// MissingOperandError is returned when a solve is attempted without a matrix
// A or right-hand side b.
type MissingOperandError string

func (e MissingOperandError) Error() string { return "solver: " + string(e) }

// NonConvergenceError is returned by PCG.Solve when the iteration limit was
// reached before the tolerance was satisfied.
type NonConvergenceError struct {
	// Iterations is the number of iterations performed.
	Iterations int
	// Residual is the residual norm estimate at the iteration limit.
	Residual float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("solver: no convergence after %d iterations (residual %.6e)", e.Iterations, e.Residual)
}
