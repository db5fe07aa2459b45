package server

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/numeric"
	"github.com/theirongolddev/kburn/internal/pipeline"
)

// EstimateRequest overrides parts of the configured input. Nil fields keep
// the configured value.
type EstimateRequest struct {
	Balance      *float64              `json:"balance,omitempty"`
	CostPerKWh   *float64              `json:"cost_per_kwh,omitempty"`
	Appliances   []model.ApplianceSpec `json:"appliances,omitempty"`
	History      []model.UsageSample   `json:"history,omitempty"`
	Window       *int                  `json:"window,omitempty"`
	ForecastDays []int                 `json:"forecast_days,omitempty"`
	MaxDays      *float64              `json:"max_days,omitempty"`
}

func (r EstimateRequest) apply(in *pipeline.Input) {
	if r.Balance != nil {
		in.Balance = *r.Balance
	}
	if r.CostPerKWh != nil {
		in.CostPerKWh = *r.CostPerKWh
	}
	if r.Appliances != nil {
		in.Appliances = r.Appliances
	}
	if r.History != nil {
		in.History = r.History
		if r.ForecastDays == nil {
			in.ForecastDays = nil
		}
	}
	if r.Window != nil {
		in.Window = *r.Window
	}
	if r.ForecastDays != nil {
		in.ForecastDays = r.ForecastDays
	}
	if r.MaxDays != nil {
		in.MaxDays = *r.MaxDays
	}
}

// ForecastResponse is served at /v1/forecast.
type ForecastResponse struct {
	Window   []model.UsageSample   `json:"window"`
	Forecast []model.ForecastPoint `json:"forecast"`
	Trend    model.Trend           `json:"trend"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

// handleEstimate accepts balance, rate, window and max_days query overrides.
func (s *Service) handleEstimate(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.serveEstimate(w, req)
}

func (s *Service) handleEstimatePost(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	s.serveEstimate(w, req)
}

func (s *Service) serveEstimate(w http.ResponseWriter, req EstimateRequest) {
	est, err := s.estimate(req.apply)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// handleForecast projects usage for ?days=6,7,8 or the next ?count days.
func (s *Service) handleForecast(w http.ResponseWriter, r *http.Request) {
	in, err := s.source()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("loading input: %w", err))
		return
	}

	q := r.URL.Query()
	days := in.ForecastDays
	switch {
	case q.Get("days") != "":
		days, err = parseDays(q.Get("days"))
	case q.Get("count") != "":
		var n int
		n, err = strconv.Atoi(q.Get("count"))
		if err == nil && (n < 1 || n > 366) {
			err = fmt.Errorf("count %d out of range 1-366", n)
		}
		days = pipeline.NextDays(in.History, n)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	in.ForecastDays = days

	points, trend, err := pipeline.Forecast(in)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	window, err := pipeline.Window(in.History, cmp.Or(in.Window, pipeline.DefaultWindow))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, ForecastResponse{
		Window:   window,
		Forecast: points,
		Trend:    trend,
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	if st := s.status(); st.Summary != nil {
		writeSSE(w, Event{Type: "snapshot", Timestamp: time.Now(), Snapshot: *st.Summary})
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusFor maps estimator failures to 422 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, numeric.ErrInvalidAppliance),
		errors.Is(err, numeric.ErrDegenerateInput),
		errors.Is(err, numeric.ErrNoRootInRange),
		errors.Is(err, numeric.ErrInvalidInterval):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func requestFromQuery(q url.Values) (EstimateRequest, error) {
	var req EstimateRequest
	floatParam := func(key string) (*float64, error) {
		raw := q.Get(key)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %s=%q: %w", key, raw, err)
		}
		return &v, nil
	}

	var err error
	if req.Balance, err = floatParam("balance"); err != nil {
		return req, err
	}
	if req.CostPerKWh, err = floatParam("rate"); err != nil {
		return req, err
	}
	if req.MaxDays, err = floatParam("max_days"); err != nil {
		return req, err
	}
	if raw := q.Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("parsing window=%q: %w", raw, err)
		}
		req.Window = &n
	}
	if raw := q.Get("days"); raw != "" {
		if req.ForecastDays, err = parseDays(raw); err != nil {
			return req, err
		}
	}
	return req, nil
}

// parseDays parses a comma-separated day list such as "6,7,8".
func parseDays(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("parsing day %q: %w", p, err)
		}
		days = append(days, d)
	}
	return days, nil
}
