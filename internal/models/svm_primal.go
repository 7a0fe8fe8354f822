package models

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// optimizer target for the infinity norm of the gradient; the fit counts as
// converged against the looser relative criterion in solveL2LossPrimal
const primalGradTarget = 1e-9

// squaredHinge is the primal objective
//
//	f(w) = 1/2 w'w + sum_i C_i max(0, 1 - y_i w'x_i)^2
//
// It is convex and continuously differentiable.
type squaredHinge struct {
	x    [][]float64
	y    []float64
	cost []float64
}

func (p squaredHinge) value(w []float64) float64 {
	f := 0.5 * floats.Dot(w, w)
	for i, xi := range p.x {
		if d := 1 - p.y[i]*floats.Dot(w, xi); d > 0 {
			f += p.cost[i] * d * d
		}
	}
	return f
}

// gradient stores w - 2 sum_i C_i y_i x_i max(0, 1 - y_i w'x_i) in grad.
func (p squaredHinge) gradient(grad, w []float64) {
	copy(grad, w)
	for i, xi := range p.x {
		if d := 1 - p.y[i]*floats.Dot(w, xi); d > 0 {
			floats.AddScaled(grad, -2*p.cost[i]*d*p.y[i], xi)
		}
	}
}

func (p squaredHinge) problem() optimize.Problem {
	return optimize.Problem{
		Func: p.value,
		Grad: p.gradient,
	}
}

// gradNorm returns the euclidean norm of the gradient at w.
func (p squaredHinge) gradNorm(w []float64) float64 {
	grad := make([]float64, len(w))
	p.gradient(grad, w)
	return floats.Norm(grad, 2)
}

// solveL2LossPrimal minimizes the primal objective with L-BFGS starting
// from w = 0. The result is converged when the gradient norm is at most
// tol times its norm at the start. When the optimizer stops with an error
// after evaluating the objective, the best point found is still returned
// along with that error.
func solveL2LossPrimal(x [][]float64, y, cost []float64, tol float64, maxIter int) ([]float64, int, bool, error) {
	obj := squaredHinge{x: x, y: y, cost: cost}
	w0 := make([]float64, len(x[0]))

	g0 := obj.gradNorm(w0)
	if g0 == 0 {
		return w0, 0, true, nil
	}

	settings := &optimize.Settings{
		GradientThreshold: primalGradTarget * math.Max(1, g0),
		MajorIterations:   maxIter,
		Converger:         optimize.NeverTerminate{},
	}
	result, err := optimize.Minimize(obj.problem(), w0, settings, &optimize.LBFGS{})
	if result == nil || result.X == nil || math.IsInf(result.F, 1) {
		return nil, 0, false, err
	}

	w := result.X
	return w, result.MajorIterations, obj.gradNorm(w) <= tol*math.Max(1, g0), err
}
