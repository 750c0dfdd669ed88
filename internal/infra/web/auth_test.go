package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthManager_TokenLifecycle(t *testing.T) {
	a := NewAuthManager("key", "0123456789abcdef", false, time.Minute)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return base }

	rr := httptest.NewRecorder()
	tok, exp, err := a.Mint(rr)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if !exp.Equal(base.Add(time.Minute)) {
		t.Errorf("exp = %v", exp)
	}
	if c := rr.Result().Cookies(); len(c) != 1 || c[0].Name != cookieName || !c[0].HttpOnly {
		t.Errorf("cookie = %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	claims, err := a.ParseFromRequest(req)
	if err != nil || claims.Role != "staff" {
		t.Fatalf("parse = %+v, %v", claims, err)
	}

	cookieReq := httptest.NewRequest(http.MethodGet, "/", nil)
	cookieReq.AddCookie(&http.Cookie{Name: cookieName, Value: tok})
	if _, err := a.ParseFromRequest(cookieReq); err != nil {
		t.Errorf("cookie parse: %v", err)
	}

	a.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := a.ParseFromRequest(req); err == nil {
		t.Error("expired token accepted")
	}

	other := NewAuthManager("key", "another-secret-value", false, time.Minute)
	other.now = func() time.Time { return base }
	if _, err := other.ParseFromRequest(req); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestAuthManager_Disabled(t *testing.T) {
	a := NewAuthManager("", "", false, 0)
	if a.Enabled() || a.CheckKey("") {
		t.Fatal("empty key must disable the admin api")
	}
	rr := httptest.NewRecorder()
	a.Guard()(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusForbidden {
		t.Errorf("code = %d, want 403", rr.Code)
	}
}
