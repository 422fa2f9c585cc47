package model

import (
	"time"
)

// ActivationKey is a single-use token that upgrades a user to premium until
// a fixed expiry. Keys are destroyed on redemption; an expired key is
// invalid even while it still exists in storage.
type ActivationKey struct {
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func NewActivationKey(code string, validityDays int, now time.Time) *ActivationKey {
	return &ActivationKey{
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, validityDays),
	}
}

// Expired reports whether the key is past its validity window at the given
// instant. An expiry equal to now counts as expired.
func (k *ActivationKey) Expired(now time.Time) bool {
	return !k.ExpiresAt.After(now)
}
