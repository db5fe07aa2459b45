// Package server provides the HTTP API that serves estimates and watches the
// configured inputs for changes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/kburn/internal/model"
	"github.com/theirongolddev/kburn/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// InputFunc returns the current estimator input, e.g. the config merged with
// the readings store. It is called once per poll and for every request.
type InputFunc func() (pipeline.Input, error)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	EventsBuffer int
	Currency     string
	Log          zerolog.Logger
}

// Snapshot is the latest estimate computed by the poll loop.
type Snapshot struct {
	At       time.Time      `json:"at"`
	Estimate model.Estimate `json:"estimate"`
}

// Delta captures how the headline numbers moved between polls.
type Delta struct {
	DailyKWh         float64 `json:"daily_kwh"`
	DaysRemaining    float64 `json:"days_remaining"`
	OptimalReduction float64 `json:"optimal_reduction"`
	NextForecastKWh  float64 `json:"next_forecast_kwh"`
}

func (d Delta) isZero() bool {
	return d.DailyKWh == 0 &&
		d.DaysRemaining == 0 &&
		d.OptimalReduction == 0 &&
		d.NextForecastKWh == 0
}

// Event is emitted whenever the estimate changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Currency        string    `json:"currency,omitempty"`
	Summary         *Snapshot `json:"summary,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the HTTP API and the input poll loop.
type Service struct {
	cfg    Config
	source InputFunc
	log    zerolog.Logger
	router *chi.Mux

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service that estimates from source.
func New(cfg Config, source InputFunc) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 100
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}

	s := &Service{
		cfg:       cfg,
		source:    source,
		log:       cfg.Log.With().Str("component", "server").Logger(),
		router:    chi.NewRouter(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the routed HTTP handler.
func (s *Service) Handler() http.Handler { return s.router }

func (s *Service) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Service) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/estimate", s.handleEstimate)
		r.Post("/estimate", s.handleEstimatePost)
		r.Get("/forecast", s.handleForecast)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
}

// Run serves HTTP and polls the input source until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("serving")

	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info().Msg("shutting down")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	now := time.Now()
	est, err := s.estimate(nil)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("poll failed")
		return
	}

	snap := Snapshot{At: now, Estimate: est}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffEstimates(prev.Estimate, est); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "estimate_delta", Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug().Int64("event", ev.ID).Str("type", ev.Type).Msg("estimate changed")
		s.publishEvent(ev)
	}
}

// estimate runs the pipeline on the source input after applying override.
func (s *Service) estimate(override func(*pipeline.Input)) (model.Estimate, error) {
	in, err := s.source()
	if err != nil {
		return model.Estimate{}, fmt.Errorf("loading input: %w", err)
	}
	if override != nil {
		override(&in)
	}
	return pipeline.Estimate(in)
}

func diffEstimates(prev, curr model.Estimate) Delta {
	d := Delta{
		DailyKWh:         curr.DailyKWh - prev.DailyKWh,
		DaysRemaining:    curr.DaysRemaining - prev.DaysRemaining,
		OptimalReduction: curr.OptimalReduction - prev.OptimalReduction,
	}
	if len(prev.Forecast) > 0 && len(curr.Forecast) > 0 {
		d.NextForecastKWh = curr.Forecast[0].KWh - prev.Forecast[0].KWh
	}
	return d
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Currency:        s.cfg.Currency,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.hasSnapshot {
		snap := s.snapshot
		st.Summary = &snap
	}
	return st
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Service) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
