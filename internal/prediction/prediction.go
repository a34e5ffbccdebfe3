// Package prediction forecasts a crop's base price from its weight by fitting
// a least-squares quadratic to the recorded samples.
package prediction

import (
	"errors"
	"fmt"
	"math"

	"github.com/Simplici0/cropcalc/internal/samples"
)

// MinSamples is the number of points needed to determine a quadratic.
const MinSamples = 3

var (
	ErrInsufficientSamples = errors.New("at least 3 samples are required for a prediction")
	ErrDegenerateFit       = errors.New("samples do not determine a quadratic curve")
)

// pivotTolerance is relative to the sample count, which bounds the scaled
// normal-equation entries.
const pivotTolerance = 1e-10

// Quadratic is a fitted y = A*x^2 + B*x + C, stored over a centred and
// scaled x to keep evaluation well conditioned.
type Quadratic struct {
	center float64
	scale  float64
	c      [3]float64
}

// Eval returns the fitted value at x.
func (q Quadratic) Eval(x float64) float64 {
	u := (x - q.center) / q.scale
	return q.c[0] + u*(q.c[1]+u*q.c[2])
}

// Coefficients returns A, B and C in terms of the unscaled x.
func (q Quadratic) Coefficients() (a, b, c float64) {
	m, s := q.center, q.scale
	a = q.c[2] / (s * s)
	b = q.c[1]/s - 2*q.c[2]*m/(s*s)
	c = q.c[0] - q.c[1]*m/s + q.c[2]*m*m/(s*s)
	return a, b, c
}

// Predict fits the samples' (weight, base price) points and evaluates the
// curve at weight.
func Predict(points []samples.Sample, weight float64) (float64, error) {
	if len(points) < MinSamples {
		return 0, fmt.Errorf("%w: have %d", ErrInsufficientSamples, len(points))
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Weight
		ys[i] = p.BasePrice
	}

	q, err := FitQuadratic(xs, ys)
	if err != nil {
		return 0, err
	}
	v := q.Eval(weight)
	if !isFinite(v) {
		return 0, fmt.Errorf("%w: prediction at weight %v is not finite", ErrDegenerateFit, weight)
	}
	return v, nil
}

// FitQuadratic returns the least-squares quadratic through (xs[i], ys[i]).
func FitQuadratic(xs, ys []float64) (Quadratic, error) {
	if len(xs) != len(ys) {
		return Quadratic{}, fmt.Errorf("fit quadratic: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) < MinSamples {
		return Quadratic{}, fmt.Errorf("%w: have %d", ErrInsufficientSamples, len(xs))
	}

	distinct := make(map[float64]struct{}, len(xs))
	var sum float64
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			return Quadratic{}, fmt.Errorf("%w: non-finite point (%v, %v)", ErrDegenerateFit, xs[i], ys[i])
		}
		distinct[xs[i]] = struct{}{}
		sum += xs[i]
	}
	if len(distinct) < MinSamples {
		return Quadratic{}, fmt.Errorf("%w: only %d distinct weights", ErrDegenerateFit, len(distinct))
	}

	center := sum / float64(len(xs))
	var scale float64
	for _, x := range xs {
		scale = math.Max(scale, math.Abs(x-center))
	}
	if !isFinite(center) || !isFinite(scale) {
		return Quadratic{}, fmt.Errorf("%w: weights overflow", ErrDegenerateFit)
	}

	// Normal equations for y = c0 + c1*u + c2*u^2 with u in [-1, 1].
	var s [5]float64
	var t [3]float64
	for i, x := range xs {
		u := (x - center) / scale
		pow := 1.0
		for k := 0; k < 5; k++ {
			s[k] += pow
			if k < 3 {
				t[k] += pow * ys[i]
			}
			pow *= u
		}
	}

	m := [3][4]float64{
		{s[0], s[1], s[2], t[0]},
		{s[1], s[2], s[3], t[1]},
		{s[2], s[3], s[4], t[2]},
	}
	c, err := solve3(m, pivotTolerance*s[0])
	if err != nil {
		return Quadratic{}, err
	}
	for _, v := range c {
		if !isFinite(v) {
			return Quadratic{}, fmt.Errorf("%w: coefficients overflow", ErrDegenerateFit)
		}
	}

	return Quadratic{center: center, scale: scale, c: c}, nil
}

// solve3 solves an augmented 3x3 system by Gaussian elimination with partial
// pivoting.
func solve3(m [3][4]float64, tol float64) ([3]float64, error) {
	var x [3]float64

	for col := 0; col < 3; col++ {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) <= tol {
			return x, fmt.Errorf("%w: singular normal equations", ErrDegenerateFit)
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < 3; row++ {
			f := m[row][col] / m[col][col]
			for k := col; k < 4; k++ {
				m[row][k] -= f * m[col][k]
			}
		}
	}

	for row := 2; row >= 0; row-- {
		v := m[row][3]
		for k := row + 1; k < 3; k++ {
			v -= m[row][k] * x[k]
		}
		x[row] = v / m[row][row]
	}

	return x, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
