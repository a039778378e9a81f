package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/adapter"
	"ticket-marketplace/internal/infra/logging"
	"ticket-marketplace/internal/infra/metrics"
	"ticket-marketplace/internal/infra/payment"
	"ticket-marketplace/internal/infra/worker"
	"ticket-marketplace/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	WebhookPath     = "/webhooks/payments/events"
	WebhookTestPath = "/webhooks/payments/events/test"

	signatureHeader = "Stripe-Signature"
)

// Scheduler accepts deferred work. *worker.Pool implements it.
type Scheduler interface {
	Submit(name string, task worker.Task) error
	InFlight() int64
}

type Options struct {
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MaxBodyBytes     int64
	Production       bool
	WebhookSecretSet bool
}

// Server receives provider webhooks and acknowledges them before dispatch runs.
type Server struct {
	opts       Options
	verifier   adapter.EventVerifier
	dispatcher usecase.EventDispatcher
	sched      Scheduler
	log        *zerolog.Logger
	server     *http.Server
	now        func() time.Time
}

func NewServer(opts Options, verifier adapter.EventVerifier, dispatcher usecase.EventDispatcher, sched Scheduler, logger *zerolog.Logger) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	l := logger.With().Str("component", "http").Logger()
	return &Server{
		opts:       opts,
		verifier:   verifier,
		dispatcher: dispatcher,
		sched:      sched,
		log:        &l,
		now:        time.Now,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))

	r.Post(WebhookPath, s.handleWebhook)
	r.Get(WebhookTestPath, s.handleWebhookTest)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      s.Routes(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}
	s.log.Info().Int("port", s.opts.Port).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		metrics.IncWebhook("unreadable")
		log.Warn().Err(err).Msg("webhook body unreadable")
		http.Error(w, "Unreadable request body", http.StatusBadRequest)
		return
	}

	ev, err := s.verifier.Verify(body, r.Header.Get(signatureHeader))
	if err != nil {
		if !payment.IsAuthenticationError(err) {
			// Authentic but undecodable: a retry would fail the same way.
			metrics.IncWebhook("undecodable")
			log.Error().Err(err).Msg("webhook payload could not be decoded, dropping")
			w.WriteHeader(http.StatusOK)
			return
		}
		if s.opts.Production {
			metrics.IncWebhook("rejected")
			log.Warn().Err(err).Msg("webhook signature verification failed")
			http.Error(w, "Webhook signature verification failed", http.StatusBadRequest)
			return
		}
		metrics.IncWebhook("unverified_dropped")
		log.Warn().Err(err).Msg("webhook verification failed outside production, dropping")
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := s.sched.Submit("dispatch:"+string(ev.Type), s.dispatchTask(r.Context(), ev)); err != nil {
		metrics.IncWebhook("busy")
		log.Error().Err(err).Str("event_id", ev.ID).Str("event_type", string(ev.Type)).Msg("event not scheduled")
		status := http.StatusServiceUnavailable
		if !errors.Is(err, domain.ErrQueueFull) && !errors.Is(err, domain.ErrPoolClosed) {
			status = http.StatusInternalServerError
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	metrics.IncWebhook("accepted")
	log.Debug().Str("event_id", ev.ID).Str("event_type", string(ev.Type)).Msg("event accepted")
	w.WriteHeader(http.StatusOK)
}

// dispatchTask carries the request trace id into the worker, not the request lifetime.
func (s *Server) dispatchTask(reqCtx context.Context, ev *model.Event) worker.Task {
	traceID := logging.TraceID(reqCtx)
	return func(ctx context.Context) error {
		if traceID != "" {
			ctx = logging.WithTraceID(ctx, traceID)
		}
		return s.dispatcher.Dispatch(ctx, ev)
	}
}

type webhookTestResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	Timestamp        string `json:"timestamp"`
	WebhookSecretSet bool   `json:"webhookSecretSet"`
}

func (s *Server) handleWebhookTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, webhookTestResponse{
		Status:           "ok",
		Message:          "Webhook endpoint is reachable",
		Timestamp:        s.now().UTC().Format(time.RFC3339),
		WebhookSecretSet: s.opts.WebhookSecretSet,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"inFlight": s.sched.InFlight(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
