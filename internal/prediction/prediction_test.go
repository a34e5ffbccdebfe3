package prediction

import (
	"errors"
	"math"
	"testing"

	"github.com/Simplici0/cropcalc/internal/samples"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func points(pairs ...[2]float64) []samples.Sample {
	out := make([]samples.Sample, len(pairs))
	for i, p := range pairs {
		out[i] = samples.Sample{Crop: "tomato", Weight: p[0], BasePrice: p[1]}
	}
	return out
}

func TestPredict_TwoSamplesIsInsufficient(t *testing.T) {
	_, err := Predict(points([2]float64{1, 10}, [2]float64{2, 20}), 1.5)
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("expected ErrInsufficientSamples, got %v", err)
	}

	_, err = Predict(nil, 1)
	if !errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("expected ErrInsufficientSamples for no samples, got %v", err)
	}
}

func TestPredict_ThreeCollinearSamples(t *testing.T) {
	got, err := Predict(points([2]float64{1, 10}, [2]float64{2, 20}, [2]float64{3, 30}), 2)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	nearlyEqual(t, "prediction", got, 20)
}

func TestPredict_ExtrapolatesLine(t *testing.T) {
	got, err := Predict(points([2]float64{1, 10}, [2]float64{2, 20}, [2]float64{3, 30}), 10)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	nearlyEqual(t, "prediction", got, 100)
}

func TestFitQuadratic_RecoversExactCurve(t *testing.T) {
	curve := func(x float64) float64 { return 2*x*x - 3*x + 5 }
	xs := []float64{1, 2, 4, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = curve(x)
	}

	q, err := FitQuadratic(xs, ys)
	if err != nil {
		t.Fatalf("FitQuadratic: %v", err)
	}

	a, b, c := q.Coefficients()
	nearlyEqual(t, "a", a, 2)
	nearlyEqual(t, "b", b, -3)
	nearlyEqual(t, "c", c, 5)
	nearlyEqual(t, "eval(3)", q.Eval(3), 14)
}

func TestFitQuadratic_LeastSquaresAveragesRepeatedWeights(t *testing.T) {
	q, err := FitQuadratic([]float64{-1, 0, 0, 1}, []float64{1, 0, 2, 1})
	if err != nil {
		t.Fatalf("FitQuadratic: %v", err)
	}

	nearlyEqual(t, "eval(0)", q.Eval(0), 1)
	nearlyEqual(t, "eval(1)", q.Eval(1), 1)
}

func TestFitQuadratic_SmallRealisticWeights(t *testing.T) {
	xs := []float64{0.15, 0.42, 0.88, 1.31, 2.05}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 120*x*x + 35*x + 18
	}

	q, err := FitQuadratic(xs, ys)
	if err != nil {
		t.Fatalf("FitQuadratic: %v", err)
	}
	if got, want := q.Eval(1.0), 173.0; math.Abs(got-want) > 1e-6 {
		t.Fatalf("eval(1.0) = %v, want %v", got, want)
	}
}

func TestPredict_IdenticalWeightsIsDegenerate(t *testing.T) {
	_, err := Predict(points([2]float64{1, 10}, [2]float64{1, 12}, [2]float64{1, 14}), 1)
	if !errors.Is(err, ErrDegenerateFit) {
		t.Fatalf("expected ErrDegenerateFit, got %v", err)
	}
	if errors.Is(err, ErrInsufficientSamples) {
		t.Fatalf("degenerate fit must be distinguishable from insufficient samples")
	}
}

func TestPredict_TwoDistinctWeightsIsDegenerate(t *testing.T) {
	_, err := Predict(points(
		[2]float64{1, 10},
		[2]float64{1, 11},
		[2]float64{2, 20},
		[2]float64{2, 21},
	), 1.5)
	if !errors.Is(err, ErrDegenerateFit) {
		t.Fatalf("expected ErrDegenerateFit, got %v", err)
	}
}

func TestFitQuadratic_RejectsBadInput(t *testing.T) {
	if _, err := FitQuadratic([]float64{1, 2, 3}, []float64{1, 2}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if _, err := FitQuadratic([]float64{1, 2, 3}, []float64{1, math.NaN(), 3}); !errors.Is(err, ErrDegenerateFit) {
		t.Fatalf("expected ErrDegenerateFit for NaN, got %v", err)
	}
}

func TestPredict_NonFiniteResultIsDegenerate(t *testing.T) {
	_, err := Predict(points([2]float64{1, 10}, [2]float64{2, 25}, [2]float64{3, 50}), 1e200)
	if !errors.Is(err, ErrDegenerateFit) {
		t.Fatalf("expected ErrDegenerateFit for overflowing weight, got %v", err)
	}
}

func TestFitQuadratic_OverflowingSumsAreDegenerate(t *testing.T) {
	if _, err := FitQuadratic([]float64{1e308, 1.5e308, 1.7e308}, []float64{1, 2, 3}); !errors.Is(err, ErrDegenerateFit) {
		t.Fatalf("expected ErrDegenerateFit for overflowing weights, got %v", err)
	}
	if _, err := FitQuadratic([]float64{1, 2, 3}, []float64{1e308, 1.7e308, 1.7e308}); !errors.Is(err, ErrDegenerateFit) {
		t.Fatalf("expected ErrDegenerateFit for overflowing prices, got %v", err)
	}
}
