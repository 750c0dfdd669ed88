package adapter

import (
	"context"

	"line-reservation-bot/internal/domain/model"
)

// Messenger delivers an outgoing message in reply to an inbound event.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, msg model.OutgoingMessage) error
}

// StaffNotifier tells the shop that a reservation needs follow-up.
type StaffNotifier interface {
	NotifyReservation(ctx context.Context, r *model.Reservation) error
}
