package model

import (
	"time"

	"telegram-premium-bot/internal/domain"
)

// PendingAction marks the expected next text input in a two-step
// conversational flow. At most one is set per user at any time; the next
// text interaction from that user always clears it.
type PendingAction string

const (
	PendingNone          PendingAction = ""
	PendingRedeemDetails PendingAction = "redeem_details"
	PendingKeyEntry      PendingAction = "key_entry"
)

// Valid reports whether p is one of the known pending actions. Storage keeps
// this as a bare string, so it is validated here at the domain boundary.
func (p PendingAction) Valid() bool {
	switch p {
	case PendingNone, PendingRedeemDetails, PendingKeyEntry:
		return true
	}
	return false
}

// UserAccount is a domain entity representing a Telegram user in our system.
// Accounts are created on first contact and never deleted; banning is a soft
// flag that short-circuits every interaction.
type UserAccount struct {
	TelegramID     int64
	Username       string
	FirstName      string
	Banned         bool
	FreeRedeemUsed bool
	PremiumUntil   *time.Time
	PendingAction  PendingAction
	RegisteredAt   time.Time
	LastActiveAt   time.Time
}

func NewUserAccount(tgID int64, username, firstName string) (*UserAccount, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &UserAccount{
		TelegramID:    tgID,
		Username:      username,
		FirstName:     firstName,
		PendingAction: PendingNone,
		RegisteredAt:  now,
		LastActiveAt:  now,
	}, nil
}

// IsPremiumActive reports whether the account holds an unexpired premium
// grant at the given instant. An expiry equal to now counts as expired.
func (u *UserAccount) IsPremiumActive(now time.Time) bool {
	return u.PremiumUntil != nil && u.PremiumUntil.After(now)
}

func (u *UserAccount) IsZero() bool { return u == nil || u.TelegramID == 0 }
func (u *UserAccount) Touch()       { u.LastActiveAt = time.Now() }

// DisplayHandle is the label used when relaying this user to the admin.
func (u *UserAccount) DisplayHandle() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "user"
}
