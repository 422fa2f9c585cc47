package repository

import (
	"context"
	"time"

	"telegram-premium-bot/internal/domain/model"
)

// UserRepository is the port for the durable per-user account record.
type UserRepository interface {
	// Save inserts or fully updates an account record.
	Save(ctx context.Context, tx Tx, u *model.UserAccount) error
	// FindByTelegramID returns domain.ErrNotFound for unknown users.
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.UserAccount, error)

	SetPendingAction(ctx context.Context, tx Tx, tgID int64, action model.PendingAction) error
	MarkFreeRedeemUsed(ctx context.Context, tx Tx, tgID int64) error
	SetPremiumUntil(ctx context.Context, tx Tx, tgID int64, until time.Time) error
	SetBanned(ctx context.Context, tx Tx, tgID int64, banned bool) error

	// ListTelegramIDs returns every known user id, for broadcast fan-out.
	ListTelegramIDs(ctx context.Context, tx Tx) ([]int64, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountInactiveUsers(ctx context.Context, tx Tx, since time.Time) (int, error)
}
