package line

import (
	"context"

	"github.com/rs/zerolog"

	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*NoopMessenger)(nil)

// NoopMessenger implements adapter.Messenger for local/dev testing.
// It logs messages instead of calling the LINE API.
type NoopMessenger struct {
	log *zerolog.Logger
}

func NewNoopMessenger(logger *zerolog.Logger) *NoopMessenger {
	l := logger.With().Str("component", "NoopMessenger").Logger()
	return &NoopMessenger{log: &l}
}

func (n *NoopMessenger) Reply(ctx context.Context, replyToken string, msg model.OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	labels := make([]string, 0, len(msg.QuickReplies))
	for _, q := range msg.QuickReplies {
		labels = append(labels, q.Label)
	}
	n.log.Info().
		Str("reply_token", replyToken).
		Str("text", msg.Text).
		Strs("quick_replies", labels).
		Msg("[noop-line] reply")
	return nil
}
