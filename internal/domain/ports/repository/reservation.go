package repository

import (
	"context"

	"line-reservation-bot/internal/domain/model"
)

// ReservationRepository stores confirmed reservations handed off for fulfillment.
type ReservationRepository interface {
	Save(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	// List returns the newest reservations first.
	List(ctx context.Context, limit int) ([]*model.Reservation, error)
}
