package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/adapter"
)

var _ adapter.StaffNotifier = (*LogNotifier)(nil)

// LogNotifier implements adapter.StaffNotifier when no Telegram token is set.
// It logs reservations instead of messaging staff.
type LogNotifier struct {
	log *zerolog.Logger
}

func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	l := logger.With().Str("component", "LogNotifier").Logger()
	return &LogNotifier{log: &l}
}

func (n *LogNotifier) NotifyReservation(_ context.Context, r *model.Reservation) error {
	n.log.Info().
		Str("reservation_id", r.ID).
		Str("channel", string(r.Channel)).
		Str("product", r.Product).
		Str("pickup_at", r.PickupAt).
		Msg("[noop-telegram] new reservation")
	return nil
}
