package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/model"
	"telegram-premium-bot/internal/domain/ports/repository"
)

var _ repository.KeyRepository = (*keyRepo)(nil)

type keyRepo struct {
	pool *pgxpool.Pool
}

func NewKeyRepo(pool *pgxpool.Pool) repository.KeyRepository {
	return &keyRepo{pool: pool}
}

// Save inserts a fresh key. A code collision surfaces as
// domain.ErrAlreadyExists so the generator can retry with a new code.
func (r *keyRepo) Save(ctx context.Context, tx repository.Tx, key *model.ActivationKey) error {
	const q = `
INSERT INTO activation_keys (code, created_at, expires_at)
VALUES ($1, $2, $3);
`
	_, err := execSQL(ctx, r.pool, tx, q, key.Code, key.CreatedAt, key.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save key: %w", err)
	}
	return nil
}

func (r *keyRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationKey, error) {
	const q = `
SELECT code, created_at, expires_at
  FROM activation_keys
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	var k model.ActivationKey
	if err := row.Scan(&k.Code, &k.CreatedAt, &k.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query key: %w", err)
	}
	return &k, nil
}

// Delete is idempotent: removing an absent code succeeds.
func (r *keyRepo) Delete(ctx context.Context, tx repository.Tx, code string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM activation_keys WHERE code = $1;`, code)
	if err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	return nil
}

func (r *keyRepo) DeleteExpired(ctx context.Context, tx repository.Tx) (int, error) {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM activation_keys WHERE expires_at <= NOW();`)
	if err != nil {
		return 0, fmt.Errorf("delete expired keys: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
