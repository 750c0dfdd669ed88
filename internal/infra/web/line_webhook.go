package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/infra/adapters/line"
	"line-reservation-bot/internal/infra/logging"
	"line-reservation-bot/internal/infra/metrics"
)

// LINE caps webhook bodies well below this.
const maxWebhookBody = 1 << 20

func (s *Server) handleLineWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
		return
	}
	log := logging.With(r.Context(), s.log)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	events, err := s.parseLineWebhook(r)
	if errors.Is(err, line.ErrInvalidSignature) {
		metrics.IncWebhookRejected("signature")
		log.Warn().Msg("line webhook signature mismatch")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err != nil {
		metrics.IncWebhookRejected("payload")
		log.Warn().Err(err).Msg("line webhook payload rejected")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	traceID := logging.TraceID(r.Context())
	for _, ev := range events {
		ev := ev
		err := s.dispatcher.Submit(ev.UserID, func(ctx context.Context) error {
			return s.processEvent(logging.WithTraceID(ctx, traceID), ev)
		})
		if err != nil {
			log.Error().Err(err).Msg("dropping line event")
		}
	}
	w.WriteHeader(http.StatusOK)
}

// parseLineWebhook verifies the signature, except on dev runs without a
// channel secret, which accept unsigned bodies.
func (s *Server) parseLineWebhook(r *http.Request) ([]model.InboundEvent, error) {
	if s.dev && s.line.ChannelSecret == "" {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		return line.ParseEvents(body)
	}
	return line.ParseRequest(s.line.ChannelSecret, r)
}

// processEvent runs one turn and delivers the reply while the token is valid.
func (s *Server) processEvent(ctx context.Context, ev model.InboundEvent) error {
	timeout := s.line.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := s.intakeUC.HandleMessage(ctx, ev)
	if err != nil {
		return fmt.Errorf("handle line message: %w", err)
	}
	if reply == nil {
		return nil
	}
	if err := s.messenger.Reply(ctx, ev.ReplyToken, *reply); err != nil {
		metrics.IncDeliveryFailure(string(ev.Channel))
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("line reply timed out: %w", err)
		}
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}
