package usecase

import (
	"context"
	"strings"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/repository"
	"line-reservation-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReservationUseCase = (*reservationUC)(nil)

// ReservationUseCase is the staff-facing read side of handed-off reservations.
type ReservationUseCase interface {
	List(ctx context.Context, limit int) ([]*model.Reservation, error)
	Get(ctx context.Context, id string) (*model.Reservation, error)
}

const maxListLimit = 200

type reservationUC struct {
	repo repository.ReservationRepository
	log  *zerolog.Logger
}

func NewReservationUseCase(repo repository.ReservationRepository, logger *zerolog.Logger) *reservationUC {
	return &reservationUC{repo: repo, log: logger}
}

func (u *reservationUC) List(ctx context.Context, limit int) ([]*model.Reservation, error) {
	defer logging.TraceDuration(u.log, "ReservationUC.List")()
	if limit <= 0 {
		limit = 50
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return u.repo.List(ctx, limit)
}

func (u *reservationUC) Get(ctx context.Context, id string) (*model.Reservation, error) {
	defer logging.TraceDuration(u.log, "ReservationUC.Get")()
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.repo.FindByID(ctx, id)
}
