// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg provides dense linear-algebra helpers for the solvers: the
// Woodbury matrix-inversion lemma and validation of matrix properties.
package linalg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MatInvLemma computes the inverse of the low-rank update
//
//	(A + U C Vᵀ)⁻¹
//
// through the matrix inversion lemma (Woodbury identity)
//
//	A⁻¹ - A⁻¹ U (C⁻¹ + Vᵀ A⁻¹ U)⁻¹ Vᵀ A⁻¹,
//
// where A is n×n, C is k×k, and U and V are n×k. A ShapeError is returned
// for incompatible dimensions and a SingularMatrixError when A, C, or the
// capacitance matrix C⁻¹ + Vᵀ A⁻¹ U is singular. The conditioning of the
// operands is not checked beyond that.
func MatInvLemma(a, u, c, v *mat.Dense) (*mat.Dense, error) {
	n, na := a.Dims()
	if n != na {
		return nil, shapeErrorf("matrix A is not square: %d×%d", n, na)
	}
	k, kc := c.Dims()
	if k != kc {
		return nil, shapeErrorf("matrix C is not square: %d×%d", k, kc)
	}
	ur, uc := u.Dims()
	if ur != n || uc != k {
		return nil, shapeErrorf("matrix U is %d×%d, want %d×%d", ur, uc, n, k)
	}
	vr, vc := v.Dims()
	if vr != n || vc != k {
		return nil, shapeErrorf("matrix V is %d×%d, want %d×%d", vr, vc, n, k)
	}

	var invA, invC mat.Dense
	if err := inverse(&invA, a); err != nil {
		return nil, err
	}
	if err := inverse(&invC, c); err != nil {
		return nil, err
	}

	var aiU mat.Dense
	aiU.Mul(&invA, u) // A⁻¹ U

	var capac mat.Dense
	capac.Mul(v.T(), &aiU)
	capac.Add(&invC, &capac) // C⁻¹ + Vᵀ A⁻¹ U

	var invCap mat.Dense
	if err := inverse(&invCap, &capac); err != nil {
		return nil, err
	}

	var vtAi mat.Dense
	vtAi.Mul(v.T(), &invA) // Vᵀ A⁻¹

	var capVtAi mat.Dense
	capVtAi.Mul(&invCap, &vtAi)

	var corr mat.Dense
	corr.Mul(&aiU, &capVtAi)

	var inv mat.Dense
	inv.Sub(&invA, &corr)
	return &inv, nil
}

// Eye returns the n×n identity matrix.
func Eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// inverse stores the inverse of a into dst, translating gonum's singularity
// report into a SingularMatrixError. A near-singularity condition warning is
// dropped: the inverse is computed and usable, its accuracy is the caller's
// responsibility.
func inverse(dst *mat.Dense, a mat.Matrix) error {
	err := dst.Inverse(a)
	if err == nil {
		return nil
	}
	var cond mat.Condition
	if errors.As(err, &cond) {
		if math.IsInf(float64(cond), 1) {
			return SingularMatrixError{Cond: float64(cond)}
		}
		return nil
	}
	return err
}
