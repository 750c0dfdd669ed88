package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/repository"
)

var _ repository.ReservationRepository = (*reservationRepo)(nil)

type reservationRepo struct {
	pool *pgxpool.Pool
}

func NewReservationRepo(pool *pgxpool.Pool) repository.ReservationRepository {
	return &reservationRepo{pool: pool}
}

const reservationColumns = `id, channel, user_id, name, phone, product, pickup_at, status, created_at`

func (r *reservationRepo) Save(ctx context.Context, res *model.Reservation) error {
	if res == nil || res.ID == "" {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO reservations (` + reservationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, q,
		res.ID, string(res.Channel), res.UserID, res.Name, res.Phone,
		res.Product, res.PickupAt, string(res.Status), res.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrAlreadyExists
	}
	return err
}

func (r *reservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *reservationRepo) List(ctx context.Context, limit int) ([]*model.Reservation, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY id DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var (
		res            model.Reservation
		channel, state string
	)
	if err := row.Scan(
		&res.ID, &channel, &res.UserID, &res.Name, &res.Phone,
		&res.Product, &res.PickupAt, &state, &res.CreatedAt,
	); err != nil {
		return nil, err
	}
	res.Channel = model.Channel(channel)
	res.Status = model.ReservationStatus(state)
	return &res, nil
}
