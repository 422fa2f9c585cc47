package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/model"
	"telegram-premium-bot/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.UserAccount) error {
	const q = `
INSERT INTO users (
  telegram_id, username, first_name, banned, free_redeem_used,
  premium_until, pending_action, registered_at, last_active_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
) ON CONFLICT (telegram_id) DO UPDATE SET
  username=$2, first_name=$3, banned=$4, free_redeem_used=$5,
  premium_until=$6, pending_action=$7, last_active_at=$9;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.TelegramID, u.Username, u.FirstName, u.Banned, u.FreeRedeemUsed,
		u.PremiumUntil, string(u.PendingAction), u.RegisteredAt, u.LastActiveAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.UserAccount, error) {
	const q = `
SELECT telegram_id, username, first_name, banned, free_redeem_used,
       premium_until, pending_action, registered_at, last_active_at
  FROM users WHERE telegram_id=$1;
`
	row, err := pickRow(ctx, r.pool, tx, q, tgID)
	if err != nil {
		return nil, err
	}
	var (
		u       model.UserAccount
		pending string
	)
	if err := row.Scan(&u.TelegramID, &u.Username, &u.FirstName, &u.Banned, &u.FreeRedeemUsed,
		&u.PremiumUntil, &pending, &u.RegisteredAt, &u.LastActiveAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.PendingAction = model.PendingAction(pending)
	if !u.PendingAction.Valid() {
		// Unknown marker in storage; treat as no pending step rather than
		// wedging the conversation.
		u.PendingAction = model.PendingNone
	}
	return &u, nil
}

func (r *PostgresUserRepo) SetPendingAction(ctx context.Context, tx repository.Tx, tgID int64, action model.PendingAction) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE users SET pending_action=$2 WHERE telegram_id=$1;`, tgID, string(action))
	if err != nil {
		return fmt.Errorf("set pending action: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) MarkFreeRedeemUsed(ctx context.Context, tx repository.Tx, tgID int64) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE users SET free_redeem_used=TRUE WHERE telegram_id=$1;`, tgID)
	if err != nil {
		return fmt.Errorf("mark free redeem used: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) SetPremiumUntil(ctx context.Context, tx repository.Tx, tgID int64, until time.Time) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE users SET premium_until=$2 WHERE telegram_id=$1;`, tgID, until)
	if err != nil {
		return fmt.Errorf("set premium until: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) SetBanned(ctx context.Context, tx repository.Tx, tgID int64, banned bool) error {
	_, err := execSQL(ctx, r.pool, tx, `UPDATE users SET banned=$2 WHERE telegram_id=$1;`, tgID, banned)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) ListTelegramIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT telegram_id FROM users;`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) CountInactiveUsers(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users WHERE last_active_at < $1;`, since)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count inactive: %w", err)
	}
	return n, nil
}
