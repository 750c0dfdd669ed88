package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/domain/model"
)

// SignatureHeader carries base64(HMAC-SHA256(channel secret, body)).
const SignatureHeader = "X-Line-Signature"

// ErrInvalidSignature marks a webhook whose signature does not match the body.
var ErrInvalidSignature = webhook.ErrInvalidSignature

// VerifySignature checks the webhook signature against the channel secret.
func VerifySignature(channelSecret string, body []byte, signature string) bool {
	if channelSecret == "" || signature == "" {
		return false
	}
	return webhook.ValidateSignature(channelSecret, signature, body)
}

// Sign computes the signature LINE attaches to body. The SDK only verifies.
func Sign(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ParseRequest verifies and decodes a signed webhook request. A signature
// mismatch wraps ErrInvalidSignature; a malformed body wraps
// domain.ErrInvalidArgument.
func ParseRequest(channelSecret string, r *http.Request) ([]model.InboundEvent, error) {
	if channelSecret == "" {
		return nil, ErrInvalidSignature
	}
	cb, err := webhook.ParseRequest(channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return textEvents(cb), nil
}

// ParseEvents decodes an unsigned webhook body.
func ParseEvents(body []byte) ([]model.InboundEvent, error) {
	var cb webhook.CallbackRequest
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return textEvents(&cb), nil
}

// textEvents keeps the text messages sent by users. Follows, stickers,
// postbacks and group chatter are dropped.
func textEvents(cb *webhook.CallbackRequest) []model.InboundEvent {
	out := make([]model.InboundEvent, 0, len(cb.Events))
	for _, event := range cb.Events {
		ev, ok := event.(webhook.MessageEvent)
		if !ok || ev.ReplyToken == "" {
			continue
		}
		text, ok := ev.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}
		src, ok := ev.Source.(webhook.UserSource)
		if !ok || src.UserId == "" {
			continue
		}
		out = append(out, model.InboundEvent{
			Channel:    model.ChannelLine,
			ReplyToken: ev.ReplyToken,
			UserID:     src.UserId,
			Text:       text.Text,
		})
	}
	return out
}
