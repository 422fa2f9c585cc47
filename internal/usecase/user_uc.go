package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/model"
	"telegram-premium-bot/internal/domain/ports/repository"
	"telegram-premium-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes account operations used by the bot and admin surfaces.
type UserUseCase interface {
	RegisterOrFetch(ctx context.Context, tgID int64, username, firstName string) (*model.UserAccount, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.UserAccount, error)
	Count(ctx context.Context) (int, error)
	CountInactiveSince(ctx context.Context, since time.Time) (int, error)
}

type userUC struct {
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, tm: tm, log: logger}
}

// RegisterOrFetch upserts the account for this contact: identity fields are
// last-write-wins, every other flag is preserved. The find and save run in
// one transaction so two first contacts cannot both insert.
func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, username, firstName string) (*model.UserAccount, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	var acct *model.UserAccount
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing != nil {
			if username != "" {
				existing.Username = username
			}
			if firstName != "" {
				existing.FirstName = firstName
			}
			existing.Touch()
			if err := u.users.Save(ctx, tx, existing); err != nil {
				return err
			}
			acct = existing
			return nil
		}

		nu, err := model.NewUserAccount(tgID, username, firstName)
		if err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		acct = nu
		return nil
	})
	return acct, err
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.UserAccount, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetByTelegramID")()
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.CountUsers(ctx, repository.NoTX)
}

func (u *userUC) CountInactiveSince(ctx context.Context, since time.Time) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.CountInactiveSince")()
	return u.users.CountInactiveUsers(ctx, repository.NoTX, since)
}
