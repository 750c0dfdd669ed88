package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type ReservationStatus string

const (
	// ReservationReceived means staff still have to check stock and call back.
	ReservationReceived ReservationStatus = "received"
)

// Reservation is a confirmed record handed off for fulfillment.
type Reservation struct {
	ID        string            `json:"id"`
	Channel   Channel           `json:"channel"`
	UserID    string            `json:"user_id"`
	Name      string            `json:"name"`
	Phone     string            `json:"phone"`
	Product   string            `json:"product"`
	PickupAt  string            `json:"pickup_at"` // free text as typed by the user
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewReservation builds a received reservation from a confirmed record.
func NewReservation(channel Channel, userID string, rec Record, now time.Time) *Reservation {
	return &Reservation{
		ID:        ulid.Make().String(),
		Channel:   channel,
		UserID:    userID,
		Name:      rec.Name,
		Phone:     rec.Phone,
		Product:   rec.Product,
		PickupAt:  rec.DateTime,
		Status:    ReservationReceived,
		CreatedAt: now,
	}
}
