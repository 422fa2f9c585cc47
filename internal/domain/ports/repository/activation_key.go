package repository

import (
	"context"

	"telegram-premium-bot/internal/domain/model"
)

// KeyRepository is the port for managing activation keys.
type KeyRepository interface {
	// Save inserts a new key. Returns domain.ErrAlreadyExists when the code
	// collides with an existing one, so callers can regenerate instead of
	// silently overwriting.
	Save(ctx context.Context, tx Tx, key *model.ActivationKey) error
	// FindByCode returns the key regardless of expiry; callers enforce the
	// validity window. Unknown codes yield domain.ErrNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.ActivationKey, error)
	// Delete removes a key. Deleting an absent code is a no-op success.
	Delete(ctx context.Context, tx Tx, code string) error
	// DeleteExpired purges keys past their validity window, returning the
	// number removed.
	DeleteExpired(ctx context.Context, tx Tx) (int, error)
}
