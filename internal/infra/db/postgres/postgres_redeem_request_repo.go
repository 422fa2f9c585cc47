package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-premium-bot/internal/domain/model"
	"telegram-premium-bot/internal/domain/ports/repository"
)

var _ repository.RedeemRequestRepository = (*redeemRequestRepo)(nil)

type redeemRequestRepo struct {
	pool *pgxpool.Pool
}

func NewRedeemRequestRepo(pool *pgxpool.Pool) repository.RedeemRequestRepository {
	return &redeemRequestRepo{pool: pool}
}

func (r *redeemRequestRepo) Append(ctx context.Context, tx repository.Tx, req *model.RedeemRequest) error {
	const q = `
INSERT INTO redeem_requests (id, telegram_id, username, details, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	_, err := execSQL(ctx, r.pool, tx, q, req.ID, req.TelegramID, req.Username, req.Details, req.CreatedAt)
	if err != nil {
		return fmt.Errorf("append redeem request: %w", err)
	}
	return nil
}

func (r *redeemRequestRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.RedeemRequest, error) {
	q := `
SELECT id, telegram_id, username, details, created_at
  FROM redeem_requests
 ORDER BY created_at DESC
 OFFSET $1`
	args := []interface{}{offset}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	q += `;`

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list redeem requests: %w", err)
	}
	defer rows.Close()

	var out []*model.RedeemRequest
	for rows.Next() {
		var req model.RedeemRequest
		if err := rows.Scan(&req.ID, &req.TelegramID, &req.Username, &req.Details, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan redeem request: %w", err)
		}
		out = append(out, &req)
	}
	return out, rows.Err()
}

func (r *redeemRequestRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM redeem_requests;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count redeem requests: %w", err)
	}
	return n, nil
}
