package line_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"line-reservation-bot/internal/domain"
	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/infra/adapters/line"
	"line-reservation-bot/internal/infra/logging"
)

func newClient(t *testing.T, base string) *line.Client {
	t.Helper()
	c, err := line.NewClient(base, "tok", time.Second, logging.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestReplyPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/bot/message/reply" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad json: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL+"/")
	err := c.Reply(context.Background(), "rt-1", model.OutgoingMessage{
		Text:         "こちらの内容でよろしいでしょうか？",
		QuickReplies: []model.QuickReply{{Label: "はい", Text: "はい"}, {Label: "いいえ", Text: "いいえ"}},
	})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}

	if got["replyToken"] != "rt-1" {
		t.Fatalf("replyToken = %v", got["replyToken"])
	}
	msgs := got["messages"].([]any)
	msg := msgs[0].(map[string]any)
	if msg["type"] != "text" || msg["text"] != "こちらの内容でよろしいでしょうか？" {
		t.Fatalf("message = %v", msg)
	}
	items := msg["quickReply"].(map[string]any)["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("items = %v", items)
	}
	first := items[0].(map[string]any)
	action := first["action"].(map[string]any)
	if first["type"] != "action" || action["type"] != "message" || action["label"] != "はい" || action["text"] != "はい" {
		t.Fatalf("first item = %v", first)
	}
}

func TestReplyWithoutQuickRepliesOmitsField(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	if err := c.Reply(context.Background(), "rt", model.OutgoingMessage{Text: "hi"}); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if strings.Contains(raw, "quickReply") {
		t.Fatalf("quickReply should be omitted: %s", raw)
	}
}

func TestReplyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid reply token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	err := c.Reply(context.Background(), "expired", model.OutgoingMessage{Text: "hi"})
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"events":[]}`)
	sig := line.Sign("secret", body)
	if !line.VerifySignature("secret", body, sig) {
		t.Fatal("valid signature rejected")
	}
	for name, tc := range map[string]struct {
		secret, sig string
		body        []byte
	}{
		"wrong secret":  {"other", sig, body},
		"tampered body": {"secret", sig, []byte(`{"events":[{}]}`)},
		"not base64":    {"secret", "%%%", body},
		"empty":         {"secret", "", body},
		"no secret":     {"", sig, body},
	} {
		if line.VerifySignature(tc.secret, tc.body, tc.sig) {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestParseEvents(t *testing.T) {
	body := []byte(`{
  "destination": "Uxxx",
  "events": [
    {"type":"message","replyToken":"r1","source":{"type":"user","userId":"U1"},"message":{"id":"1","type":"text","text":"ご予約"}},
    {"type":"message","replyToken":"r2","source":{"type":"user","userId":"U1"},"message":{"id":"2","type":"sticker"}},
    {"type":"follow","replyToken":"r3","source":{"type":"user","userId":"U2"}},
    {"type":"message","replyToken":"r4","source":{"type":"group"},"message":{"id":"4","type":"text","text":"x"}},
    {"type":"message","replyToken":"r5","source":{"type":"user","userId":"U3"},"message":{"id":"5","type":"text","text":"キャンセル"}}
  ]
}`)
	evs, err := line.ParseEvents(body)
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected 2 text events, got %+v", evs)
	}
	want := model.InboundEvent{Channel: model.ChannelLine, ReplyToken: "r1", UserID: "U1", Text: "ご予約"}
	if evs[0] != want {
		t.Fatalf("event = %+v", evs[0])
	}
	if evs[1].UserID != "U3" || evs[1].Text != "キャンセル" {
		t.Fatalf("event = %+v", evs[1])
	}
}

func TestParseEventsMalformed(t *testing.T) {
	if _, err := line.ParseEvents([]byte(`{"events":`)); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestParseRequest(t *testing.T) {
	const body = `{"destination":"Uxxx","events":[{"type":"message","replyToken":"r1","source":{"type":"user","userId":"U1"},"message":{"id":"1","type":"text","text":"予約"}}]}`
	req := func(sig string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(body))
		r.Header.Set(line.SignatureHeader, sig)
		return r
	}

	evs, err := line.ParseRequest("secret", req(line.Sign("secret", []byte(body))))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if len(evs) != 1 || evs[0].UserID != "U1" || evs[0].Text != "予約" || evs[0].ReplyToken != "r1" {
		t.Fatalf("events = %+v", evs)
	}

	if _, err := line.ParseRequest("secret", req(line.Sign("other", []byte(body)))); !errors.Is(err, line.ErrInvalidSignature) {
		t.Errorf("wrong secret: err = %v", err)
	}
	if _, err := line.ParseRequest("", req(line.Sign("", []byte(body)))); !errors.Is(err, line.ErrInvalidSignature) {
		t.Errorf("empty secret: err = %v", err)
	}

	bad := `{"events":`
	r := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(bad))
	r.Header.Set(line.SignatureHeader, line.Sign("secret", []byte(bad)))
	if _, err := line.ParseRequest("secret", r); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("malformed: err = %v", err)
	}
}

func TestNoopMessenger(t *testing.T) {
	n := line.NewNoopMessenger(logging.Nop())
	if err := n.Reply(context.Background(), "rt", model.OutgoingMessage{Text: "x"}); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Reply(ctx, "rt", model.OutgoingMessage{Text: "x"}); err == nil {
		t.Fatal("expected ctx error")
	}
}
