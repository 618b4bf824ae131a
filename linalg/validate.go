// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// CheckSquare returns a ShapeError when a is not square.
func CheckSquare(a mat.Matrix) error {
	r, c := a.Dims()
	if r != c {
		return shapeErrorf("matrix is not square: %d×%d", r, c)
	}
	return nil
}

// CheckShapes returns a ShapeError when the dimension of the square matrix a
// does not match the length of the right-hand side b.
func CheckShapes(a mat.Matrix, b []float64) error {
	if err := CheckSquare(a); err != nil {
		return err
	}
	n, _ := a.Dims()
	if n != len(b) {
		return shapeErrorf("dimension mismatch: matrix is %d×%d, vector has length %d", n, n, len(b))
	}
	return nil
}

// CheckNotSingular returns a SingularMatrixError when a is singular to
// working precision. The check is based on the 1-norm condition number.
func CheckNotSingular(a mat.Matrix) error {
	cond := mat.Cond(a, 1)
	if math.IsInf(cond, 1) {
		return SingularMatrixError{Cond: cond}
	}
	return nil
}

// CheckSymmetric returns ErrNotSymmetric when a deviates from its transpose
// beyond floating-point round-off.
func CheckSymmetric(a mat.Matrix) error {
	if err := CheckSquare(a); err != nil {
		return err
	}
	n, _ := a.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !scalar.EqualWithinAbsOrRel(a.At(i, j), a.At(j, i), 1e-12, 1e-12) {
				return ErrNotSymmetric
			}
		}
	}
	return nil
}

// CheckPositiveDefinite returns ErrNotPositiveDefinite when the symmetric
// part of a has no Cholesky factorization. The matrix must be symmetric for
// the result to be meaningful.
func CheckPositiveDefinite(a mat.Matrix) error {
	if err := CheckSquare(a); err != nil {
		return err
	}
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}
	var ch mat.Cholesky
	if !ch.Factorize(s) {
		return ErrNotPositiveDefinite
	}
	return nil
}
