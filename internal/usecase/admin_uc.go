package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/ports/adapter"
	"telegram-premium-bot/internal/domain/ports/repository"
	"telegram-premium-bot/internal/infra/logging"
	"telegram-premium-bot/internal/infra/metrics"
	"telegram-premium-bot/internal/infra/worker"

	"github.com/rs/zerolog"
)

var _ AdminUseCase = (*adminUC)(nil)

// AdminUseCase covers the state-affecting admin operations. Authorization is
// enforced at the gateway: only events from the configured admin reach here.
type AdminUseCase interface {
	// Broadcast delivers text to every known user and reports how many
	// deliveries succeeded. Individual failures never abort the loop.
	Broadcast(ctx context.Context, text string) (int, error)
	Ban(ctx context.Context, tgID int64) error
	Unban(ctx context.Context, tgID int64) error
}

type adminUC struct {
	users      repository.UserRepository
	bot        adapter.TelegramBotAdapter
	workerPool *worker.Pool
	adminID    int64
	perSecond  int
	log        *zerolog.Logger
}

func NewAdminUseCase(
	users repository.UserRepository,
	bot adapter.TelegramBotAdapter,
	pool *worker.Pool,
	adminID int64,
	perSecond int,
	logger *zerolog.Logger,
) *adminUC {
	if perSecond <= 0 {
		perSecond = 25 // stay under Telegram's ~30 msg/sec limit
	}
	return &adminUC{
		users:      users,
		bot:        bot,
		workerPool: pool,
		adminID:    adminID,
		perSecond:  perSecond,
		log:        logger,
	}
}

func (uc *adminUC) Broadcast(ctx context.Context, text string) (int, error) {
	defer logging.TraceDuration(uc.log, "AdminUC.Broadcast")()

	ids, err := uc.users.ListTelegramIDs(ctx, repository.NoTX)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to fetch user ids for broadcast")
		return 0, err
	}

	var recipients []int64
	for _, id := range ids {
		if id != uc.adminID {
			recipients = append(recipients, id)
		}
	}
	uc.log.Info().Int("user_count", len(recipients)).Msg("starting broadcast")

	throttle := time.NewTicker(time.Second / time.Duration(uc.perSecond))
	defer throttle.Stop()

	var (
		wg        sync.WaitGroup
		delivered atomic.Int64
	)
	for _, id := range recipients {
		<-throttle.C
		id := id
		wg.Add(1)
		task := func(ctx context.Context) error {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := uc.bot.SendMessage(sendCtx, id, text); err != nil {
				metrics.IncBroadcastSend(false)
				uc.log.Warn().Err(err).Int64("tg_id", id).Msg("broadcast delivery failed")
				return nil // failures are counted, not surfaced
			}
			metrics.IncBroadcastSend(true)
			delivered.Add(1)
			return nil
		}
		if err := uc.workerPool.Submit(task); err != nil {
			wg.Done()
			metrics.IncBroadcastSend(false)
			uc.log.Warn().Err(err).Int64("tg_id", id).Msg("failed to submit broadcast task")
		}
	}
	wg.Wait()

	sent := int(delivered.Load())
	uc.log.Info().Int("sent", sent).Int("total", len(recipients)).Msg("broadcast finished")
	return sent, nil
}

func (uc *adminUC) Ban(ctx context.Context, tgID int64) error {
	return uc.setBanned(ctx, tgID, true, "You have been banned by admin.")
}

func (uc *adminUC) Unban(ctx context.Context, tgID int64) error {
	return uc.setBanned(ctx, tgID, false, "You have been unbanned by admin.")
}

func (uc *adminUC) setBanned(ctx context.Context, tgID int64, banned bool, notice string) error {
	defer logging.TraceDuration(uc.log, "AdminUC.SetBanned")()

	if _, err := uc.users.FindByTelegramID(ctx, repository.NoTX, tgID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if err := uc.users.SetBanned(ctx, repository.NoTX, tgID, banned); err != nil {
		return err
	}
	uc.log.Info().Int64("tg_id", tgID).Bool("banned", banned).Msg("ban flag updated")

	// Best-effort notification; the state change stands even if delivery fails.
	if err := uc.bot.SendMessage(ctx, tgID, notice); err != nil {
		metrics.IncSendFailure()
		uc.log.Warn().Err(err).Int64("tg_id", tgID).Msg("failed to notify user about ban change")
	}
	return nil
}
