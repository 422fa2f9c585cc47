package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-premium-bot/internal/config"
	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/model"
)

const testAPIKey = "test-api-key"

type webFixture struct {
	server  *Server
	router  http.Handler
	userUC  *mockUserUC
	keyUC   *mockKeyUC
	adminUC *mockAdminUC
	redeems *mockRedeemRepo
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &webFixture{
		userUC:  &mockUserUC{},
		keyUC:   &mockKeyUC{},
		adminUC: &mockAdminUC{},
		redeems: &mockRedeemRepo{},
	}
	cfg := config.WebConfig{
		APIKey:    testAPIKey,
		JWTSecret: "test-jwt-secret",
		TokenTTL:  time.Minute,
	}
	f.server = NewServer(cfg, f.userUC, f.keyUC, f.adminUC, f.redeems, &logger)
	f.router = f.server.Router()
	return f
}

func (f *webFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *webFixture) sessionToken(t *testing.T) string {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/auth/token", "", tokenRequest{APIKey: testAPIKey})
	if rec.Code != http.StatusOK {
		t.Fatalf("token mint failed: status %d", rec.Code)
	}
	var resp tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("empty session token")
	}
	return resp.Token
}

func TestHandleToken(t *testing.T) {
	f := newWebFixture(t)

	t.Run("wrong api key rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/auth/token", "", tokenRequest{APIKey: "nope"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("valid api key mints a usable token", func(t *testing.T) {
		token := f.sessionToken(t)
		rec := f.do(t, http.MethodGet, "/stats", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 with fresh token, got %d", rec.Code)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	f := newWebFixture(t)

	t.Run("missing token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/stats", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/stats", "not-a-jwt", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestHandleStats(t *testing.T) {
	f := newWebFixture(t)
	for _, id := range []int64{1, 2, 3} {
		if _, err := f.userUC.RegisterOrFetch(context.Background(), id, "", "u"); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	f.userUC.InactiveCount = 1
	_ = f.redeems.Append(context.Background(), nil, &model.RedeemRequest{ID: "r1", TelegramID: 1})

	rec := f.do(t, http.MethodGet, "/stats", f.sessionToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if resp.Users != 3 || resp.InactiveUsers != 1 || resp.RedeemRequests != 1 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestHandleMintKey(t *testing.T) {
	f := newWebFixture(t)
	token := f.sessionToken(t)

	t.Run("positive days", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/keys", token, mintKeyRequest{Days: 7})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		var resp mintKeyResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode key: %v", err)
		}
		if resp.Code == "" {
			t.Fatal("empty key code")
		}
		if f.keyUC.LastDays != 7 {
			t.Fatalf("expected 7 validity days, got %d", f.keyUC.LastDays)
		}
	})

	t.Run("zero days rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/keys", token, mintKeyRequest{Days: 0})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHandleListRedeems(t *testing.T) {
	f := newWebFixture(t)
	now := time.Now()
	for _, id := range []string{"r1", "r2", "r3"} {
		_ = f.redeems.Append(context.Background(), nil, &model.RedeemRequest{ID: id, TelegramID: 10, CreatedAt: now})
	}

	rec := f.do(t, http.MethodGet, "/redeems?limit=2", f.sessionToken(t), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var entries []redeemEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode redeems: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestHandleSetBanned(t *testing.T) {
	f := newWebFixture(t)
	token := f.sessionToken(t)

	t.Run("ban then unban", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/users/42/ban", token, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if !f.adminUC.banned[42] {
			t.Fatal("user 42 should be banned")
		}
		rec = f.do(t, http.MethodPost, "/users/42/unban", token, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if f.adminUC.banned[42] {
			t.Fatal("user 42 should be unbanned")
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/users/abc/ban", token, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		f.adminUC.BanError = domain.ErrNotFound
		defer func() { f.adminUC.BanError = nil }()
		rec := f.do(t, http.MethodPost, "/users/7/ban", token, nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
