// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"errors"
	"fmt"
)

// ShapeError describes a dimension incompatibility between the operands of an
// operation.
type ShapeError string

func (e ShapeError) Error() string { return "linalg: " + string(e) }

func shapeErrorf(format string, args ...any) ShapeError {
	return ShapeError(fmt.Sprintf(format, args...))
}

// SingularMatrixError is returned when a matrix that must be inverted or
// factorized is singular to working precision.
type SingularMatrixError struct {
	// Cond is the estimated condition number, infinite for an exactly
	// singular matrix.
	Cond float64
}

func (e SingularMatrixError) Error() string {
	return fmt.Sprintf("linalg: matrix is singular to working precision (condition number %v)", e.Cond)
}

// Validation sentinels for the optional matrix property checks.
var (
	ErrNotSymmetric        = errors.New("linalg: matrix is not symmetric")
	ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive-definite")
)
