package sched

import (
	"context"
	"time"

	"telegram-premium-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// KeyPurgeWorker periodically removes activation keys past their validity
// window. Expired keys are already rejected at redemption time; the purge
// only keeps the table from growing without bound.
type KeyPurgeWorker struct {
	interval time.Duration
	keyUC    usecase.KeyUseCase
	log      *zerolog.Logger
}

func NewKeyPurgeWorker(interval time.Duration, keyUC usecase.KeyUseCase, logger *zerolog.Logger) *KeyPurgeWorker {
	purgeLog := logger.With().Str("component", "KeyPurgeWorker").Logger()
	return &KeyPurgeWorker{
		interval: interval,
		keyUC:    keyUC,
		log:      &purgeLog,
	}
}

func (w *KeyPurgeWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting key purge worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping key purge worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.keyUC.PurgeExpired(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("key purge error")
				continue
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("expired keys purged")
			}
		}
	}
}
