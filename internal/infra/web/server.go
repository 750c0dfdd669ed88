// Package web serves the LINE webhook, health and metrics endpoints and the
// staff reservation API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"line-reservation-bot/internal/config"
	"line-reservation-bot/internal/domain/ports/adapter"
	"line-reservation-bot/internal/infra/worker"
	"line-reservation-bot/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dispatcher runs a task asynchronously, serialized per key.
type Dispatcher interface {
	Submit(key string, task worker.Task) error
}

type Server struct {
	intakeUC      usecase.IntakeUseCase
	reservationUC usecase.ReservationUseCase
	messenger     adapter.Messenger
	dispatcher    Dispatcher
	auth          *AuthManager
	line          config.LineConfig
	port          int
	dev           bool
	srv           *http.Server
	log           *zerolog.Logger
}

func NewServer(
	cfg *config.Config,
	intakeUC usecase.IntakeUseCase,
	reservationUC usecase.ReservationUseCase,
	messenger adapter.Messenger,
	dispatcher Dispatcher,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		intakeUC:      intakeUC,
		reservationUC: reservationUC,
		messenger:     messenger,
		dispatcher:    dispatcher,
		auth:          NewAuthManager(cfg.HTTP.AdminAPIKey, cfg.HTTP.JWTSecret, cfg.HTTP.SecureCookie, cfg.HTTP.TokenTTL),
		line:          cfg.Line,
		port:          cfg.HTTP.Port,
		dev:           cfg.Runtime.Dev,
		log:           &l,
	}
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.With(RequestLog(s.log)).HandleFunc(s.line.WebhookPath, s.handleLineWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RequestLog(s.log))
		r.Post("/admin/login", s.handleLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Guard())
			r.Get("/reservations", s.handleListReservations)
			r.Get("/reservations/{id}", s.handleGetReservation)
		})
	})
	return r
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.port).Msg("HTTP server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
