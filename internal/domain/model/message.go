package model

// QuickReply is one tappable option shown under a prompt. Tapping it sends Text.
type QuickReply struct {
	Label string `json:"label" yaml:"label"`
	Text  string `json:"text" yaml:"text"`
}

// OutgoingMessage is what a transport delivers back to the user.
type OutgoingMessage struct {
	Text         string
	QuickReplies []QuickReply
}

// Channel identifies the messaging platform an event came from.
type Channel string

const (
	ChannelLine     Channel = "line"
	ChannelTelegram Channel = "telegram"
)

// InboundEvent is a single text message received from a user.
// ReplyToken is opaque to everything but the delivering transport.
type InboundEvent struct {
	Channel    Channel
	ReplyToken string
	UserID     string
	Text       string
}
