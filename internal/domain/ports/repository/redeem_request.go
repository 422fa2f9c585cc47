package repository

import (
	"context"

	"telegram-premium-bot/internal/domain/model"
)

// RedeemRequestRepository is the port for the append-only redeem audit log.
type RedeemRequestRepository interface {
	Append(ctx context.Context, tx Tx, req *model.RedeemRequest) error
	// List returns requests newest-first. A limit of 0 means no limit.
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.RedeemRequest, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
