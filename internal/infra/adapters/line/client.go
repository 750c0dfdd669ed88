// Package line talks to the LINE Messaging API: reply delivery and webhook
// parsing, both through the official bot SDK.
package line

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/rs/zerolog"

	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*Client)(nil)

// Client sends reply messages with a channel access token.
type Client struct {
	api *messaging_api.MessagingApiAPI
	log *zerolog.Logger
}

func NewClient(apiBase, accessToken string, timeout time.Duration, logger *zerolog.Logger) (*Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	api, err := messaging_api.NewMessagingApiAPI(
		accessToken,
		messaging_api.WithEndpoint(strings.TrimRight(apiBase, "/")),
		messaging_api.WithHTTPClient(&http.Client{Timeout: timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("line messaging api: %w", err)
	}
	l := logger.With().Str("component", "LineClient").Logger()
	return &Client{api: api, log: &l}, nil
}

// toTextMessage maps quick replies to message actions: tapping one sends its
// text back as the user's answer.
func toTextMessage(msg model.OutgoingMessage) *messaging_api.TextMessage {
	m := &messaging_api.TextMessage{Text: msg.Text}
	if len(msg.QuickReplies) == 0 {
		return m
	}
	items := make([]messaging_api.QuickReplyItem, 0, len(msg.QuickReplies))
	for _, q := range msg.QuickReplies {
		items = append(items, messaging_api.QuickReplyItem{
			Type:   "action",
			Action: &messaging_api.MessageAction{Label: q.Label, Text: q.Text},
		})
	}
	m.QuickReply = &messaging_api.QuickReply{Items: items}
	return m
}

// Reply answers the event identified by replyToken.
func (c *Client) Reply(ctx context.Context, replyToken string, msg model.OutgoingMessage) error {
	_, err := c.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   []messaging_api.MessageInterface{toTextMessage(msg)},
	})
	if err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	c.log.Debug().Int("quick_replies", len(msg.QuickReplies)).Msg("reply delivered")
	return nil
}
