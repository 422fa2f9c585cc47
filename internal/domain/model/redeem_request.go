package model

import "time"

// RedeemRequest is one accepted redeem submission. The collection is an
// append-only audit log; records are never mutated or deleted.
type RedeemRequest struct {
	ID         string
	TelegramID int64
	Username   string
	Details    string
	CreatedAt  time.Time
}
