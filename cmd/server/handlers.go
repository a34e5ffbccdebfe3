package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/cropcalc/internal/metrics"
	"github.com/Simplici0/cropcalc/internal/multiplier"
	"github.com/Simplici0/cropcalc/internal/pricing"
	"github.com/Simplici0/cropcalc/internal/samples"
)

type server struct {
	estimator *pricing.Estimator
	store     samples.Store
	calc      *multiplier.Calculator
	logger    *zap.Logger
}

func newServer(estimator *pricing.Estimator, store samples.Store, calc *multiplier.Calculator, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{estimator: estimator, store: store, calc: calc, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tables", s.handleTables)
		r.Post("/estimate", s.handleEstimate)
		r.Get("/samples", s.handleListSamples)
		r.Post("/samples", s.handleRecordSample)
	})

	return r
}

type estimateResponse struct {
	Mode            pricing.Mode `json:"mode"`
	TotalMultiplier int          `json:"total_multiplier"`
	Available       bool         `json:"available"`
	Reason          string       `json:"reason,omitempty"`
	Message         string       `json:"message,omitempty"`
	BasePrice       *float64     `json:"base_price,omitempty"`
	FinalPrice      *float64     `json:"final_price,omitempty"`
	SampleCount     int          `json:"sample_count"`
}

type sampleResponse struct {
	Crop       string  `json:"crop"`
	Weight     float64 `json:"weight"`
	BasePrice  float64 `json:"base_price"`
	RecordedAt string  `json:"recorded_at"`
}

type recordResponse struct {
	Sample          sampleResponse `json:"sample"`
	TotalMultiplier int            `json:"total_multiplier"`
	Message         string         `json:"message"`
}

const noBasePriceMessage = "no base price available (at least 3 samples required)"

func (s *server) handleTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.calc.Tables())
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	req, err := parseEstimateForm(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	est, err := s.estimator.Estimate(r.Context(), req)
	if err != nil {
		metrics.ObserveEstimate(string(req.Mode), outcomeFor(err))
		s.respondError(w, err)
		return
	}

	resp := estimateResponse{
		Mode:            est.Mode,
		TotalMultiplier: est.TotalMultiplier,
		Available:       est.Available,
		Reason:          string(est.Reason),
		SampleCount:     est.SampleCount,
	}
	outcome := metrics.OutcomeOK
	if est.Available {
		resp.BasePrice = &est.BasePrice
		resp.FinalPrice = &est.FinalPrice
	} else {
		outcome = string(est.Reason)
		resp.Message = unavailableMessage(est.Reason, strings.TrimSpace(req.Crop))
	}
	metrics.ObserveEstimate(string(est.Mode), outcome)

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleRecordSample(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	obs, err := parseObservationForm(r)
	if err != nil {
		metrics.ObserveRecording(metrics.OutcomeValidationError)
		s.respondError(w, err)
		return
	}

	rec, err := s.estimator.Record(r.Context(), obs)
	if err != nil {
		metrics.ObserveRecording(outcomeFor(err))
		s.respondError(w, err)
		return
	}
	metrics.ObserveRecording(metrics.OutcomeOK)

	writeJSON(w, http.StatusCreated, recordResponse{
		Sample:          toSampleResponse(rec.Sample),
		TotalMultiplier: rec.TotalMultiplier,
		Message:         fmt.Sprintf("saved, inferred base price %.0f", rec.Sample.BasePrice),
	})
}

func (s *server) handleListSamples(w http.ResponseWriter, r *http.Request) {
	crop := strings.TrimSpace(r.URL.Query().Get("crop"))

	var (
		list []samples.Sample
		err  error
	)
	if crop == "" {
		list, err = s.store.All(r.Context())
	} else {
		list, err = s.store.Load(r.Context(), crop)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	out := make([]sampleResponse, 0, len(list))
	for _, sample := range list {
		out = append(out, toSampleResponse(sample))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, pricing.ErrValidation) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "sample store unavailable")
}

func outcomeFor(err error) string {
	if errors.Is(err, pricing.ErrValidation) {
		return metrics.OutcomeValidationError
	}
	return metrics.OutcomeStoreError
}

func unavailableMessage(reason pricing.Reason, crop string) string {
	switch reason {
	case pricing.ReasonInsufficientSamples:
		return noBasePriceMessage
	case pricing.ReasonDegenerateFit:
		return "prediction unavailable: samples do not determine a usable price curve"
	case pricing.ReasonDisabled:
		if crop != "" {
			return noBasePriceMessage
		}
	}
	return ""
}

func parseEstimateForm(r *http.Request) (pricing.Request, error) {
	mode, err := pricing.ParseMode(r.FormValue("mode"))
	if err != nil {
		return pricing.Request{}, err
	}

	req := pricing.Request{
		Crop:      r.FormValue("crop"),
		Selection: parseSelection(r),
		Mode:      mode,
	}

	if req.Weight, err = parseOptionalFloat(r.FormValue("weight"), "weight"); err != nil {
		return req, err
	}
	if mode == pricing.ModeManual {
		if req.ManualBasePrice, err = parseFloatField(r.FormValue("base_price"), "base_price"); err != nil {
			return req, err
		}
	}

	return req, nil
}

func parseObservationForm(r *http.Request) (pricing.Observation, error) {
	obs := pricing.Observation{
		Crop:      r.FormValue("crop"),
		Selection: parseSelection(r),
	}

	var err error
	if obs.Weight, err = parseFloatField(r.FormValue("weight"), "weight"); err != nil {
		return obs, err
	}
	if obs.ObservedPrice, err = parseFloatField(r.FormValue("price"), "price"); err != nil {
		return obs, err
	}

	return obs, nil
}

func parseSelection(r *http.Request) multiplier.Selection {
	sel := multiplier.Selection{Variant: strings.TrimSpace(r.FormValue("variant"))}
	for _, raw := range r.Form["bonus"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				sel.Bonuses = append(sel.Bonuses, id)
			}
		}
	}
	return sel
}

func parseFloatField(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &pricing.ValidationError{Field: field, Reason: "must be numeric"}
	}
	return value, nil
}

func parseOptionalFloat(raw, field string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return parseFloatField(raw, field)
}

func toSampleResponse(s samples.Sample) sampleResponse {
	return sampleResponse{
		Crop:       s.Crop,
		Weight:     s.Weight,
		BasePrice:  s.BasePrice,
		RecordedAt: s.RecordedAt.Format(samples.TimeLayout),
	}
}

// writeJSON encodes v before committing the status so an unencodable value
// becomes a 500 instead of a success with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"response encoding failed"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
