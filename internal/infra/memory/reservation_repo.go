package memory

import (
	"context"
	"sort"
	"sync"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

// ReservationRepo keeps handed-off reservations for the process lifetime.
type ReservationRepo struct {
	mu   sync.RWMutex
	byID map[string]model.Reservation
}

func NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{byID: make(map[string]model.Reservation)}
}

func (r *ReservationRepo) Save(_ context.Context, res *model.Reservation) error {
	if res == nil || res.ID == "" {
		return domain.ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[res.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.byID[res.ID] = *res
	return nil
}

func (r *ReservationRepo) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &res, nil
}

func (r *ReservationRepo) List(_ context.Context, limit int) ([]*model.Reservation, error) {
	r.mu.RLock()
	out := make([]*model.Reservation, 0, len(r.byID))
	for _, res := range r.byID {
		cp := res
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	// ULIDs sort by creation time.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
