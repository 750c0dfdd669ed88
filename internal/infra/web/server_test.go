//go:build !integration

package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"line-reservation-bot/internal/config"
	"line-reservation-bot/internal/domain/model"
	"line-reservation-bot/internal/infra/adapters/line"
	"line-reservation-bot/internal/infra/logging"
	"line-reservation-bot/internal/infra/memory"
	"line-reservation-bot/internal/infra/web"
	"line-reservation-bot/internal/infra/worker"
	"line-reservation-bot/internal/usecase"
)

const (
	testSecret   = "channel-secret"
	testAdminKey = "admin-key"
	testJWT      = "0123456789abcdef0123456789abcdef"
)

// ---------------- fakes ----------------

type fakeIntake struct {
	mu     sync.Mutex
	events []model.InboundEvent
	reply  *model.OutgoingMessage
	err    error
}

func (f *fakeIntake) HandleMessage(_ context.Context, ev model.InboundEvent) (*model.OutgoingMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.reply, f.err
}

type fakeMessenger struct {
	mu      sync.Mutex
	tokens  []string
	replies []model.OutgoingMessage
	err     error
}

func (f *fakeMessenger) Reply(_ context.Context, token string, msg model.OutgoingMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.replies = append(f.replies, msg)
	return f.err
}

// inlineDispatcher runs tasks synchronously so assertions need no waiting.
type inlineDispatcher struct {
	errs []error
}

func (d *inlineDispatcher) Submit(_ string, task worker.Task) error {
	d.errs = append(d.errs, task(context.Background()))
	return nil
}

type harness struct {
	h         http.Handler
	intake    *fakeIntake
	messenger *fakeMessenger
	disp      *inlineDispatcher
	repo      *memory.ReservationRepo
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Port: 0, AdminAPIKey: testAdminKey, JWTSecret: testJWT, TokenTTL: time.Minute},
		Line: config.LineConfig{ChannelSecret: testSecret, WebhookPath: "/webhook/line", Timeout: time.Second},
	}
	for _, o := range opts {
		o(cfg)
	}
	h := &harness{
		intake:    &fakeIntake{reply: &model.OutgoingMessage{Text: "hi"}},
		messenger: &fakeMessenger{},
		disp:      &inlineDispatcher{},
		repo:      memory.NewReservationRepo(),
	}
	log := logging.Nop()
	srv := web.NewServer(cfg, h.intake, usecase.NewReservationUseCase(h.repo, log), h.messenger, h.disp, log)
	h.h = srv.Router()
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.h.ServeHTTP(rr, req)
	return rr
}

func signedWebhook(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(body))
	req.Header.Set(line.SignatureHeader, line.Sign(testSecret, []byte(body)))
	return req
}

const textEvent = `{"events":[{"type":"message","replyToken":"rt-1","source":{"type":"user","userId":"U1"},"message":{"type":"text","text":"予約"}}]}`

// ---------------- tests ----------------

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rr := h.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Fatalf("health = %d %q", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	rr := h.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rr.Code)
	}
}

func TestLineWebhook(t *testing.T) {
	t.Run("non-post answers OK", func(t *testing.T) {
		h := newHarness(t)
		rr := h.do(httptest.NewRequest(http.MethodGet, "/webhook/line", nil))
		if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
			t.Fatalf("got %d %q", rr.Code, rr.Body.String())
		}
	})

	t.Run("bad signature", func(t *testing.T) {
		h := newHarness(t)
		req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(textEvent))
		req.Header.Set(line.SignatureHeader, "bogus")
		if rr := h.do(req); rr.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d, want 401", rr.Code)
		}
		if len(h.intake.events) != 0 {
			t.Error("unsigned event reached the use case")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		h := newHarness(t)
		if rr := h.do(signedWebhook(`{"events":`)); rr.Code != http.StatusBadRequest {
			t.Fatalf("code = %d, want 400", rr.Code)
		}
	})

	t.Run("text event is handled and replied", func(t *testing.T) {
		h := newHarness(t)
		if rr := h.do(signedWebhook(textEvent)); rr.Code != http.StatusOK {
			t.Fatalf("code = %d", rr.Code)
		}
		if len(h.intake.events) != 1 {
			t.Fatalf("events = %d", len(h.intake.events))
		}
		ev := h.intake.events[0]
		if ev.UserID != "U1" || ev.Text != "予約" || ev.ReplyToken != "rt-1" || ev.Channel != model.ChannelLine {
			t.Errorf("event = %+v", ev)
		}
		if len(h.messenger.tokens) != 1 || h.messenger.tokens[0] != "rt-1" || h.messenger.replies[0].Text != "hi" {
			t.Errorf("reply not delivered: %+v", h.messenger.tokens)
		}
	})

	t.Run("silent turn sends nothing", func(t *testing.T) {
		h := newHarness(t)
		h.intake.reply = nil
		h.do(signedWebhook(textEvent))
		if len(h.messenger.tokens) != 0 {
			t.Error("reply sent for a silent turn")
		}
	})

	t.Run("delivery failure still acknowledges", func(t *testing.T) {
		h := newHarness(t)
		h.messenger.err = errors.New("line down")
		if rr := h.do(signedWebhook(textEvent)); rr.Code != http.StatusOK {
			t.Fatalf("code = %d", rr.Code)
		}
		if len(h.disp.errs) != 1 || h.disp.errs[0] == nil {
			t.Errorf("task error not reported: %v", h.disp.errs)
		}
	})

	t.Run("dev without secret accepts unsigned bodies", func(t *testing.T) {
		h := newHarness(t, func(c *config.Config) {
			c.Runtime.Dev = true
			c.Line.ChannelSecret = ""
		})
		req := httptest.NewRequest(http.MethodPost, "/webhook/line", strings.NewReader(textEvent))
		if rr := h.do(req); rr.Code != http.StatusOK {
			t.Fatalf("code = %d", rr.Code)
		}
		if len(h.intake.events) != 1 {
			t.Errorf("events = %d", len(h.intake.events))
		}
	})

	t.Run("non text events are dropped", func(t *testing.T) {
		h := newHarness(t)
		body := `{"events":[{"type":"follow","replyToken":"rt","source":{"type":"user","userId":"U1"}}]}`
		if rr := h.do(signedWebhook(body)); rr.Code != http.StatusOK {
			t.Fatalf("code = %d", rr.Code)
		}
		if len(h.intake.events) != 0 {
			t.Error("follow event reached the use case")
		}
	})
}

func login(t *testing.T, h *harness) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	rr := h.do(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login = %d", rr.Code)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("login body %q: %v", rr.Body.String(), err)
	}
	return body.Token
}

func TestAdminAPI(t *testing.T) {
	h := newHarness(t)
	r := model.NewReservation(model.ChannelLine, "U1", model.Record{Name: "山田", Phone: "09012345678", Product: "ケーキ", DateTime: "1月25日 15時"}, time.Now())
	if err := h.repo.Save(context.Background(), r); err != nil {
		t.Fatal(err)
	}

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", nil)
		req.Header.Set("X-Admin-Key", "nope")
		if rr := h.do(req); rr.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d", rr.Code)
		}
	})

	t.Run("guarded without token", func(t *testing.T) {
		if rr := h.do(httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)); rr.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d", rr.Code)
		}
	})

	tok := login(t, h)
	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		return h.do(req)
	}

	t.Run("list", func(t *testing.T) {
		rr := get("/api/v1/reservations?limit=10")
		if rr.Code != http.StatusOK {
			t.Fatalf("code = %d", rr.Code)
		}
		if !bytes.Contains(rr.Body.Bytes(), []byte(r.ID)) || !strings.Contains(rr.Body.String(), `"count":1`) {
			t.Errorf("body = %s", rr.Body.String())
		}
	})

	t.Run("bad limit", func(t *testing.T) {
		if rr := get("/api/v1/reservations?limit=x"); rr.Code != http.StatusBadRequest {
			t.Fatalf("code = %d", rr.Code)
		}
	})

	t.Run("get one", func(t *testing.T) {
		rr := get("/api/v1/reservations/" + r.ID)
		if rr.Code != http.StatusOK {
			t.Fatalf("code = %d", rr.Code)
		}
		var got model.Reservation
		if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil || got.Name != "山田" {
			t.Errorf("got %+v, %v", got, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if rr := get("/api/v1/reservations/nope"); rr.Code != http.StatusNotFound {
			t.Fatalf("code = %d", rr.Code)
		}
	})
}
