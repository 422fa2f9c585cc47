package model

import (
	"testing"
	"time"

	"telegram-premium-bot/internal/domain"
)

func TestNewUserAccount(t *testing.T) {
	t.Run("rejects non-positive telegram id", func(t *testing.T) {
		if _, err := NewUserAccount(0, "x", "X"); err != domain.ErrInvalidArgument {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := NewUserAccount(-4, "x", "X"); err != domain.ErrInvalidArgument {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		u, err := NewUserAccount(42, "alice", "Alice")
		if err != nil {
			t.Fatalf("NewUserAccount: %v", err)
		}
		if u.Banned || u.FreeRedeemUsed || u.PremiumUntil != nil {
			t.Errorf("fresh account should carry zero flags: %+v", u)
		}
		if u.PendingAction != PendingNone {
			t.Errorf("fresh account should have no pending action, got %q", u.PendingAction)
		}
	})
}

func TestIsPremiumActive(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name  string
		until *time.Time
		want  bool
	}{
		{"nil expiry", nil, false},
		{"future expiry", ptr(now.Add(time.Hour)), true},
		{"past expiry", ptr(now.Add(-time.Hour)), false},
		{"expiry equal to now", ptr(now), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &UserAccount{TelegramID: 1, PremiumUntil: tc.until}
			if got := u.IsPremiumActive(now); got != tc.want {
				t.Errorf("IsPremiumActive = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPendingActionValid(t *testing.T) {
	for _, p := range []PendingAction{PendingNone, PendingRedeemDetails, PendingKeyEntry} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if PendingAction("redeem").Valid() {
		t.Error("unknown pending action accepted")
	}
}

func TestActivationKeyExpired(t *testing.T) {
	now := time.Now()
	k := NewActivationKey("ABCDEF123456", 30, now)
	if k.Expired(now) {
		t.Error("fresh 30-day key reported expired")
	}
	if want := now.AddDate(0, 0, 30); !k.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", k.ExpiresAt, want)
	}
	if !k.Expired(k.ExpiresAt) {
		t.Error("key should be expired at the exact expiry instant")
	}
}

func TestDisplayHandle(t *testing.T) {
	u := &UserAccount{TelegramID: 1, Username: "bob", FirstName: "Bob"}
	if got := u.DisplayHandle(); got != "@bob" {
		t.Errorf("DisplayHandle = %q", got)
	}
	u.Username = ""
	if got := u.DisplayHandle(); got != "Bob" {
		t.Errorf("DisplayHandle = %q", got)
	}
}

func ptr(t time.Time) *time.Time { return &t }
