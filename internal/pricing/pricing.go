// Package pricing infers base prices from observed sales and projects final
// prices from predicted or manually entered base prices.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/cropcalc/internal/multiplier"
	"github.com/Simplici0/cropcalc/internal/prediction"
	"github.com/Simplici0/cropcalc/internal/samples"
)

// Mode selects where the base price of an estimate comes from.
type Mode string

const (
	ModeNone   Mode = "none"
	ModeModel  Mode = "model"
	ModeManual Mode = "manual"
)

// ParseMode accepts none, model or manual. An empty string is ModeNone.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeNone:
		return ModeNone, nil
	case ModeModel:
		return ModeModel, nil
	case ModeManual:
		return ModeManual, nil
	default:
		return "", invalid("mode", fmt.Sprintf("must be one of none, model, manual; got %q", raw))
	}
}

// Reason explains why an estimate carries no base price.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonDisabled            Reason = "prediction_disabled"
	ReasonInsufficientSamples Reason = "insufficient_samples"
	ReasonDegenerateFit       Reason = "degenerate_fit"
)

// Observation is an actually observed sale to be recorded.
type Observation struct {
	Crop          string
	Weight        float64
	ObservedPrice float64
	Selection     multiplier.Selection
}

// Request asks for a projected final price.
type Request struct {
	Crop            string
	Weight          float64
	Selection       multiplier.Selection
	Mode            Mode
	ManualBasePrice float64
}

// Estimate is the outcome of a Request. BasePrice and FinalPrice are only
// meaningful when Available is true.
type Estimate struct {
	Mode            Mode
	TotalMultiplier int
	Available       bool
	Reason          Reason
	BasePrice       float64
	FinalPrice      float64
	SampleCount     int
}

// Recording is a stored sample together with the multiplier it was
// inferred under.
type Recording struct {
	Sample          samples.Sample
	TotalMultiplier int
}

// MinWeight is the smallest weight, in kilograms, accepted for a sample or
// a model prediction.
const MinWeight = 0.01

// Estimator records observations and produces estimates over a sample store.
type Estimator struct {
	store  samples.Store
	calc   *multiplier.Calculator
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithClock overrides the time source used for RecordedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		e.now = now
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewEstimator(store samples.Store, calc *multiplier.Calculator, opts ...Option) *Estimator {
	e := &Estimator{
		store:  store,
		calc:   calc,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TotalMultiplier resolves a selection against the calculator's tables.
// Unknown identifiers are reported as validation errors.
func (e *Estimator) TotalMultiplier(sel multiplier.Selection) (int, error) {
	total, err := e.calc.Total(sel)
	if err != nil {
		field := "bonus"
		if errors.Is(err, multiplier.ErrUnknownVariant) {
			field = "variant"
		}
		return 0, &ValidationError{Field: field, Reason: "unknown identifier", Err: err}
	}
	return total, nil
}

// Record infers the base price of an observed sale and appends it as a sample.
func (e *Estimator) Record(ctx context.Context, obs Observation) (Recording, error) {
	crop := strings.TrimSpace(obs.Crop)
	if crop == "" {
		return Recording{}, invalid("crop", "must not be empty")
	}
	if err := validateWeight(obs.Weight); err != nil {
		return Recording{}, err
	}
	if !positive(obs.ObservedPrice) {
		return Recording{}, invalid("price", "must be greater than 0")
	}

	total, err := e.TotalMultiplier(obs.Selection)
	if err != nil {
		return Recording{}, err
	}

	sample := samples.Sample{
		Crop:       crop,
		Weight:     obs.Weight,
		BasePrice:  obs.ObservedPrice / float64(total),
		RecordedAt: e.now().Truncate(time.Minute),
	}
	if err := e.store.Append(ctx, sample); err != nil {
		return Recording{}, fmt.Errorf("record observation: %w", err)
	}

	e.logger.Info("observation recorded",
		zap.String("crop", sample.Crop),
		zap.Float64("weight", sample.Weight),
		zap.Float64("observed_price", obs.ObservedPrice),
		zap.Int("total_multiplier", total),
		zap.Float64("base_price", sample.BasePrice),
	)

	return Recording{Sample: sample, TotalMultiplier: total}, nil
}

// Estimate resolves a base price according to req.Mode and projects the
// final price with the selected multipliers.
func (e *Estimator) Estimate(ctx context.Context, req Request) (Estimate, error) {
	total, err := e.TotalMultiplier(req.Selection)
	if err != nil {
		return Estimate{}, err
	}

	est := Estimate{Mode: req.Mode, TotalMultiplier: total}

	switch req.Mode {
	case ModeNone, "":
		est.Mode = ModeNone
		est.Reason = ReasonDisabled
		return est, nil

	case ModeManual:
		if req.ManualBasePrice < 0 || !isFinite(req.ManualBasePrice) {
			return Estimate{}, invalid("base_price", "must be 0 or greater")
		}
		out := est.withBase(req.ManualBasePrice)
		if !isFinite(out.FinalPrice) {
			return Estimate{}, invalid("base_price", "final price exceeds the representable range")
		}
		return out, nil

	case ModeModel:
		crop := strings.TrimSpace(req.Crop)
		if crop == "" {
			return Estimate{}, invalid("crop", "must not be empty")
		}
		if err := validateWeight(req.Weight); err != nil {
			return Estimate{}, err
		}

		points, err := e.store.Load(ctx, crop)
		if err != nil {
			return Estimate{}, fmt.Errorf("load samples: %w", err)
		}
		est.SampleCount = len(points)

		base, err := prediction.Predict(points, req.Weight)
		switch {
		case errors.Is(err, prediction.ErrInsufficientSamples):
			est.Reason = ReasonInsufficientSamples
			return est, nil
		case errors.Is(err, prediction.ErrDegenerateFit):
			e.logger.Warn("prediction unavailable", zap.String("crop", crop), zap.Error(err))
			est.Reason = ReasonDegenerateFit
			return est, nil
		case err != nil:
			return Estimate{}, err
		}
		out := est.withBase(base)
		if !isFinite(out.FinalPrice) {
			e.logger.Warn("prediction unavailable", zap.String("crop", crop), zap.Float64("weight", req.Weight), zap.Float64("base_price", base))
			est.Reason = ReasonDegenerateFit
			return est, nil
		}
		return out, nil

	default:
		return Estimate{}, invalid("mode", fmt.Sprintf("unsupported mode %q", req.Mode))
	}
}

func (est Estimate) withBase(base float64) Estimate {
	est.Available = true
	est.Reason = ReasonNone
	est.BasePrice = base
	est.FinalPrice = FinalPrice(base, est.TotalMultiplier)
	return est
}

// FinalPrice applies the total multiplier to a base price.
func FinalPrice(base float64, totalMultiplier int) float64 {
	return base * float64(totalMultiplier)
}

func validateWeight(w float64) error {
	if !isFinite(w) || w < MinWeight {
		return invalid("weight", fmt.Sprintf("must be at least %g", MinWeight))
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && isFinite(v)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
