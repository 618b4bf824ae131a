// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative_test

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kerembkr/VQBayesOpt/iterative"
)

// L2Projector returns the system matrix and right-hand side of the L2
// projection of f onto piecewise linear functions on a uniform mesh of
// [x0, x1] with n elements.
func L2Projector(x0, x1 float64, n int, f func(float64) float64) (a iterative.MatrixOps, b []float64) {
	h := (x1 - x0) / float64(n)

	matvec := func(dst, src []float64) {
		dst[0] = h / 3 * (src[0] + src[1]/2)
		for i := 1; i < n; i++ {
			dst[i] = h / 3 * (src[i-1]/2 + 2*src[i] + src[i+1]/2)
		}
		dst[n] = h / 3 * (src[n-1]/2 + src[n])
	}

	b = make([]float64, n+1)
	b[0] = f(x0) * h / 2
	for i := 1; i < n; i++ {
		b[i] = f(x0+float64(i)*h) * h
	}
	b[n] = f(x1) * h / 2

	return iterative.MatrixOps{MatVec: matvec}, b
}

func ExampleCG() {
	A, b := L2Projector(0, 1, 10, func(x float64) float64 {
		return x * math.Sin(x)
	})
	res, err := iterative.LinearSolve(A, b, &iterative.CG{}, iterative.Settings{Tolerance: 1e-10})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	r := make([]float64, len(b))
	A.MatVec(r, res.X)
	floats.Sub(r, b)
	fmt.Printf("Converged: %t\n", floats.Norm(r, 2) <= 1e-9*floats.Norm(b, 2))

	// Output:
	// Converged: true
}
