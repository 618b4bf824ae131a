// Copyright ©2025 The VQBayesOpt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command solvedemo solves the L2-projection system of x·sin(x) with both
// conjugate gradient solvers and writes a plot of the solutions to
// output/solution.png.
package main

import (
	"log"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/kerembkr/VQBayesOpt/solver"
)

func main() {
	log.SetPrefix("solvedemo: ")
	log.SetFlags(0)

	const n = 32
	sys := l2Projection(0, 1, n, func(x float64) float64 {
		return x * math.Sin(x)
	})

	log.Println("solving with the explicit-preconditioner solver")
	cgRes, err := solver.PCG{Tol: 1e-10}.Solve(sys)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("pcg: %d iterations, residual %.3e, runtime %v",
		cgRes.Iterations, cgRes.Residual, cgRes.Runtime)

	log.Println("solving with the implicit-inverse solver")
	impRes, _, err := solver.ImplicitPCG{}.Solve(sys)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("implicit pcg: %d iterations, residual %.3e, converged %t",
		impRes.Iterations, impRes.Residual, impRes.Converged)

	if err := savePlot(0, 1, cgRes.X, impRes.X); err != nil {
		log.Fatal(err)
	}
	log.Println("wrote output/solution.png")
}

// l2Projection assembles the dense mass-matrix system of the L2 projection
// of f onto piecewise linear functions on a uniform mesh of [x0, x1] with n
// elements.
func l2Projection(x0, x1 float64, n int, f func(float64) float64) solver.System {
	h := (x1 - x0) / float64(n)

	a := mat.NewDense(n+1, n+1, nil)
	a.Set(0, 0, h/3)
	a.Set(0, 1, h/6)
	for i := 1; i < n; i++ {
		a.Set(i, i-1, h/6)
		a.Set(i, i, 2*h/3)
		a.Set(i, i+1, h/6)
	}
	a.Set(n, n-1, h/6)
	a.Set(n, n, h/3)

	b := make([]float64, n+1)
	b[0] = f(x0) * h / 2
	for i := 1; i < n; i++ {
		b[i] = f(x0+float64(i)*h) * h
	}
	b[n] = f(x1) * h / 2

	return solver.System{A: a, B: b}
}

func savePlot(x0, x1 float64, cg, imp []float64) error {
	p := plot.New()
	p.Title.Text = "L2 projection of x·sin(x)"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "u(x)"

	h := (x1 - x0) / float64(len(cg)-1)
	xys := func(u []float64) plotter.XYs {
		pts := make(plotter.XYs, len(u))
		for i, v := range u {
			pts[i].X = x0 + float64(i)*h
			pts[i].Y = v
		}
		return pts
	}
	if err := plotutil.AddLinePoints(p, "pcg", xys(cg), "implicit pcg", xys(imp)); err != nil {
		return err
	}

	if err := os.MkdirAll("output", 0o755); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join("output", "solution.png"))
}
