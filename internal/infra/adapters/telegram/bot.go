package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"line-reservation-bot/internal/domain/intake"
	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/adapter"
	"line-reservation-bot/internal/infra/logging"
	"line-reservation-bot/internal/infra/metrics"
	"line-reservation-bot/internal/infra/worker"
	"line-reservation-bot/internal/usecase"
)

var (
	_ adapter.Messenger     = (*Bot)(nil)
	_ adapter.StaffNotifier = (*Bot)(nil)
)

// UserPrefix namespaces Telegram users in the shared conversation store.
const UserPrefix = "tg:"

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Dispatcher runs a task asynchronously, serialized per key.
type Dispatcher interface {
	Submit(key string, task worker.Task) error
}

// Bot takes reservations over Telegram and notifies staff chats of new ones.
// A nil intake use case makes it a notifier only.
type Bot struct {
	api        botAPI
	intakeUC   usecase.IntakeUseCase
	dispatcher Dispatcher
	catalog    *intake.Catalog
	adminIDs   []int64
	log        *zerolog.Logger
}

func NewBot(token string, adminIDs []int64, catalog *intake.Catalog, logger *zerolog.Logger) (*Bot, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(api, adminIDs, catalog, logger), nil
}

func newBot(api botAPI, adminIDs []int64, catalog *intake.Catalog, logger *zerolog.Logger) *Bot {
	l := logger.With().Str("component", "TelegramBot").Logger()
	return &Bot{api: api, adminIDs: adminIDs, catalog: catalog, log: &l}
}

// EnableIntake routes incoming text messages into the reservation flow.
func (b *Bot) EnableIntake(uc usecase.IntakeUseCase, d Dispatcher) {
	b.intakeUC = uc
	b.dispatcher = d
}

// StartPolling blocks until ctx is cancelled.
func (b *Bot) StartPolling(ctx context.Context) error {
	if b.intakeUC == nil || b.dispatcher == nil {
		return errors.New("telegram intake is not enabled")
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Msg("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := b.toInboundEvent(up)
			if !ok {
				continue
			}
			if err := b.dispatcher.Submit(ev.UserID, func(ctx context.Context) error {
				return b.handleEvent(ctx, ev)
			}); err != nil {
				b.log.Error().Err(err).Msg("dropping telegram update")
			}
		}
	}
}

// toInboundEvent keeps plain text messages. /start is read as the first
// start literal; other commands are dropped.
func (b *Bot) toInboundEvent(up tgbotapi.Update) (model.InboundEvent, bool) {
	m := up.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return model.InboundEvent{}, false
	}
	text := m.Text
	if m.IsCommand() {
		if m.Command() != "start" || len(b.catalog.Literals.Start) == 0 {
			return model.InboundEvent{}, false
		}
		text = b.catalog.Literals.Start[0]
	}
	return model.InboundEvent{
		Channel:    model.ChannelTelegram,
		ReplyToken: strconv.FormatInt(m.Chat.ID, 10),
		UserID:     UserPrefix + strconv.FormatInt(m.From.ID, 10),
		Text:       text,
	}, true
}

func (b *Bot) handleEvent(ctx context.Context, ev model.InboundEvent) error {
	reply, err := b.intakeUC.HandleMessage(logging.WithTraceID(ctx, "tg-"+ev.ReplyToken), ev)
	if err != nil {
		return fmt.Errorf("handle telegram message: %w", err)
	}
	if reply == nil {
		return nil
	}
	if err := b.Reply(ctx, ev.ReplyToken, *reply); err != nil {
		metrics.IncDeliveryFailure(string(model.ChannelTelegram))
		return err
	}
	return nil
}

// Reply sends msg to the chat whose id is the reply token. Quick replies
// become a one-time keyboard.
func (b *Bot) Reply(ctx context.Context, replyToken string, msg model.OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(replyToken, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat id %q: %w", replyToken, err)
	}
	out := tgbotapi.NewMessage(chatID, msg.Text)
	out.ReplyMarkup = replyMarkup(msg.QuickReplies)
	if _, err := b.api.Send(out); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func replyMarkup(options []model.QuickReply) any {
	if len(options) == 0 {
		return tgbotapi.NewRemoveKeyboard(false)
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(options))
	for _, o := range options {
		// the button text is what gets sent back, so it must be the literal
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(o.Text)))
	}
	kb := tgbotapi.NewOneTimeReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// NotifyReservation posts the staff notice to every admin chat.
func (b *Bot) NotifyReservation(ctx context.Context, r *model.Reservation) error {
	if len(b.adminIDs) == 0 {
		return nil
	}
	text := b.catalog.StaffNotice(r)
	var errs []error
	for _, id := range b.adminIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := b.api.Send(tgbotapi.NewMessage(id, text)); err != nil {
			metrics.IncDeliveryFailure("telegram_staff")
			errs = append(errs, fmt.Errorf("notify admin %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
