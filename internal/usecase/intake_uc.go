package usecase

import (
	"context"
	"fmt"
	"time"

	"line-reservation-bot/internal/domain/intake"
	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/adapter"
	"line-reservation-bot/internal/domain/ports/repository"
	"line-reservation-bot/internal/infra/logging"
	"line-reservation-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ IntakeUseCase = (*intakeUC)(nil)

// IntakeUseCase runs one user turn of the reservation conversation. It returns
// the message to send back, or nil when the turn is silent.
type IntakeUseCase interface {
	HandleMessage(ctx context.Context, ev model.InboundEvent) (*model.OutgoingMessage, error)
}

// RateLimiter is satisfied by the Redis fixed-window limiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type IntakeOption func(*intakeUC)

// WithStaffNotifier announces every handed-off reservation to staff.
func WithStaffNotifier(n adapter.StaffNotifier) IntakeOption {
	return func(u *intakeUC) { u.notifier = n }
}

// WithRateLimit caps inbound messages per user per minute.
func WithRateLimit(l RateLimiter, perMinute int, keyFn func(userID string) string) IntakeOption {
	return func(u *intakeUC) {
		u.limiter = l
		u.rateLimit = perMinute
		u.rateKey = keyFn
	}
}

// WithClock swaps the time source, for tests.
func WithClock(now func() time.Time) IntakeOption {
	return func(u *intakeUC) { u.now = now }
}

// WithDevLogging logs user identifiers and answers unredacted.
func WithDevLogging(dev bool) IntakeOption {
	return func(u *intakeUC) { u.dev = dev }
}

type intakeUC struct {
	machine      *intake.Machine
	store        repository.ConversationStore
	locker       repository.Locker
	reservations repository.ReservationRepository
	notifier     adapter.StaffNotifier

	limiter   RateLimiter
	rateLimit int
	rateKey   func(string) string

	now func() time.Time
	dev bool
	log *zerolog.Logger
}

func NewIntakeUseCase(
	machine *intake.Machine,
	store repository.ConversationStore,
	locker repository.Locker,
	reservations repository.ReservationRepository,
	logger *zerolog.Logger,
	opts ...IntakeOption,
) *intakeUC {
	l := logger.With().Str("component", "IntakeUC").Logger()
	u := &intakeUC{
		machine:      machine,
		store:        store,
		locker:       locker,
		reservations: reservations,
		now:          time.Now,
		log:          &l,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *intakeUC) HandleMessage(ctx context.Context, ev model.InboundEvent) (*model.OutgoingMessage, error) {
	defer logging.TraceDuration(u.log, "IntakeUC.HandleMessage")()

	ctx = logging.WithChannel(logging.WithUserID(ctx, logging.Redact(ev.UserID, u.dev)), string(ev.Channel))
	log := logging.With(ctx, u.log)
	metrics.IncInboundEvent(string(ev.Channel))

	unlock, err := u.locker.Lock(ctx, ev.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock conversation: %w", err)
	}
	reservation, reply, err := u.turn(ctx, log, ev)
	unlock()
	if err != nil {
		return nil, err
	}

	if reservation != nil && u.notifier != nil {
		if err := u.notifier.NotifyReservation(ctx, reservation); err != nil {
			log.Error().Err(err).Str("reservation_id", reservation.ID).Msg("staff notification failed")
		}
	}
	return reply, nil
}

// turn is the locked read-modify-write of one user's conversation.
func (u *intakeUC) turn(ctx context.Context, log *zerolog.Logger, ev model.InboundEvent) (*model.Reservation, *model.OutgoingMessage, error) {
	state, err := u.store.Get(ctx, ev.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("load conversation: %w", err)
	}

	// idle chatter stays silent even for a flooding user
	if state.Step.Active() || u.machine.Catalog().IsStart(ev.Text) {
		if u.rateLimited(ctx, log, ev.UserID) {
			return nil, &model.OutgoingMessage{Text: u.machine.Catalog().Prompts.RateLimited}, nil
		}
	}

	res := u.machine.Step(state, ev.Text)
	metrics.IncTransition(string(ev.Channel), res.Outcome.String())
	if res.Outcome == intake.OutcomeRejected {
		metrics.IncValidationFailure(string(res.Field))
	}
	log.Debug().
		Str("from", state.Step.String()).
		Str("to", res.State.Step.String()).
		Str("outcome", res.Outcome.String()).
		Msg("intake step")

	var reservation *model.Reservation
	if res.Confirmed != nil {
		reservation = model.NewReservation(ev.Channel, ev.UserID, *res.Confirmed, u.now())
		if err := u.reservations.Save(ctx, reservation); err != nil {
			metrics.IncHandoff("failed")
			// state stays at confirm so the user can answer again
			return nil, nil, fmt.Errorf("hand off reservation: %w", err)
		}
		metrics.IncHandoff("saved")
		log.Info().Str("reservation_id", reservation.ID).Msg("reservation handed off")
	}

	if res.Outcome == intake.OutcomeIgnored && !state.Step.Active() {
		return nil, res.Reply, nil
	}
	next := res.State
	if next.Step.Active() {
		next.UpdatedAt = u.now()
	}
	if err := u.store.Put(ctx, ev.UserID, next); err != nil {
		if reservation == nil {
			return nil, nil, fmt.Errorf("save conversation: %w", err)
		}
		// the reservation is already saved; a second "yes" must not save it again
		log.Error().Err(err).Str("reservation_id", reservation.ID).Msg("clear conversation after handoff")
		if cerr := u.store.Clear(ctx, ev.UserID); cerr != nil {
			log.Error().Err(cerr).Msg("clear conversation retry failed")
		}
	}
	return reservation, res.Reply, nil
}

func (u *intakeUC) rateLimited(ctx context.Context, log *zerolog.Logger, userID string) bool {
	if u.limiter == nil || u.rateLimit <= 0 || u.rateKey == nil {
		return false
	}
	allowed, err := u.limiter.Allow(ctx, u.rateKey(userID), u.rateLimit, time.Minute)
	if err != nil {
		log.Warn().Err(err).Msg("rate limit check failed")
		return false
	}
	if !allowed {
		metrics.IncRateLimitTriggered()
		return true
	}
	return false
}
