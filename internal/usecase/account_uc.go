package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/model"
	"telegram-premium-bot/internal/domain/ports/repository"
	"telegram-premium-bot/internal/infra/logging"
	"telegram-premium-bot/internal/infra/metrics"
	red "telegram-premium-bot/internal/infra/redis"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase drives the per-user conversational state machine. Each call
// is one inbound interaction: it loads the account, applies the transition,
// persists the result, and returns the effects for the dispatcher.
type AccountUseCase interface {
	HandleMenu(ctx context.Context, tgID int64, username, firstName string, kind MenuKind) ([]Effect, error)
	HandleText(ctx context.Context, tgID int64, username, firstName string, text string) ([]Effect, error)
}

type accountUC struct {
	users   repository.UserRepository
	keys    repository.KeyRepository
	redeems repository.RedeemRequestRepository
	tm      repository.TransactionManager
	locker  red.Locker

	adminID    int64
	devContact string
	log        *zerolog.Logger
}

func NewAccountUseCase(
	users repository.UserRepository,
	keys repository.KeyRepository,
	redeems repository.RedeemRequestRepository,
	tm repository.TransactionManager,
	locker red.Locker,
	adminID int64,
	devContact string,
	logger *zerolog.Logger,
) *accountUC {
	return &accountUC{
		users:      users,
		keys:       keys,
		redeems:    redeems,
		tm:         tm,
		locker:     locker,
		adminID:    adminID,
		devContact: devContact,
		log:        logger,
	}
}

func (u *accountUC) HandleMenu(ctx context.Context, tgID int64, username, firstName string, kind MenuKind) ([]Effect, error) {
	defer logging.TraceDuration(u.log, "AccountUC.HandleMenu")()
	return u.handle(ctx, tgID, username, firstName, MenuEvent(kind))
}

func (u *accountUC) HandleText(ctx context.Context, tgID int64, username, firstName string, text string) ([]Effect, error) {
	defer logging.TraceDuration(u.log, "AccountUC.HandleText")()
	return u.handle(ctx, tgID, username, firstName, TextEvent(text))
}

// handle serializes the read-modify-write cycle per user: a concurrent
// double-submission must not observe the same pending action twice, or the
// single free redeem could be granted more than once.
func (u *accountUC) handle(ctx context.Context, tgID int64, username, firstName string, ev Event) ([]Effect, error) {
	lockKey := red.UserLockKey(tgID)
	token, err := u.locker.TryLock(ctx, lockKey, 10*time.Second)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := u.locker.Unlock(ctx, lockKey, token); err != nil {
			u.log.Warn().Err(err).Int64("tg_id", tgID).Msg("failed to release interaction lock")
		}
	}()

	var out outcome
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		acct, err := u.loadOrCreate(ctx, tx, tgID, username, firstName)
		if err != nil {
			return err
		}

		in := transitionInput{
			event:      ev,
			adminID:    u.adminID,
			devContact: u.devContact,
			now:        time.Now(),
		}
		// Preload the submitted key so the transition itself stays pure.
		if acct.PendingAction == model.PendingKeyEntry && ev.Menu == "" && !acct.Banned {
			key, err := u.keys.FindByCode(ctx, tx, ev.Text)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			in.key = key
		}

		out = transition(*acct, in)

		if err := u.users.Save(ctx, tx, &out.account); err != nil {
			return err
		}
		if out.recordRedeem {
			req := &model.RedeemRequest{
				ID:         ulid.Make().String(),
				TelegramID: acct.TelegramID,
				Username:   acct.Username,
				Details:    ev.Text,
				CreatedAt:  time.Now(),
			}
			if err := u.redeems.Append(ctx, tx, req); err != nil {
				return err
			}
		}
		if out.consumeKey != "" {
			if err := u.keys.Delete(ctx, tx, out.consumeKey); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		u.log.Error().Err(err).Int64("tg_id", tgID).Msg("interaction failed")
		return nil, err
	}

	if out.recordRedeem {
		metrics.IncRedeemRequest()
	}
	if out.consumeKey != "" {
		metrics.IncKeyRedeemed()
	}
	return out.effects, nil
}

// loadOrCreate upserts the account on every contact: identity fields are
// last-write-wins, all other flags are preserved.
func (u *accountUC) loadOrCreate(ctx context.Context, tx repository.Tx, tgID int64, username, firstName string) (*model.UserAccount, error) {
	acct, err := u.users.FindByTelegramID(ctx, tx, tgID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		nu, err := model.NewUserAccount(tgID, username, firstName)
		if err != nil {
			return nil, err
		}
		return nu, nil
	}
	if username != "" {
		acct.Username = username
	}
	if firstName != "" {
		acct.FirstName = firstName
	}
	acct.Touch()
	return acct, nil
}
