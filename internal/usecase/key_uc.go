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

	"github.com/rs/zerolog"
)

var _ KeyUseCase = (*keyUC)(nil)

// KeyUseCase mints and maintains activation keys.
type KeyUseCase interface {
	// Generate mints a single-use key valid for the given number of days.
	// validityDays must be positive.
	Generate(ctx context.Context, validityDays int) (*model.ActivationKey, error)
	// PurgeExpired removes keys past their validity window.
	PurgeExpired(ctx context.Context) (int, error)
}

type keyUC struct {
	keys       repository.KeyRepository
	codeLength int
	log        *zerolog.Logger
}

func NewKeyUseCase(keys repository.KeyRepository, codeLength int, logger *zerolog.Logger) *keyUC {
	if codeLength <= 0 {
		codeLength = 12
	}
	return &keyUC{keys: keys, codeLength: codeLength, log: logger}
}

func (u *keyUC) Generate(ctx context.Context, validityDays int) (*model.ActivationKey, error) {
	defer logging.TraceDuration(u.log, "KeyUC.Generate")()

	if validityDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	// Regenerate on the (unlikely) code collision instead of overwriting the
	// existing key.
	for attempt := 0; attempt < 5; attempt++ {
		code, err := generateKeyCode(u.codeLength)
		if err != nil {
			return nil, err
		}
		key := model.NewActivationKey(code, validityDays, time.Now())
		err = u.keys.Save(ctx, repository.NoTX, key)
		if err == nil {
			metrics.IncKeyGenerated()
			u.log.Info().Int("validity_days", validityDays).Msg("activation key generated")
			return key, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, errors.New("could not generate a unique activation key")
}

func (u *keyUC) PurgeExpired(ctx context.Context) (int, error) {
	n, err := u.keys.DeleteExpired(ctx, repository.NoTX)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.AddKeysPurged(n)
	}
	return n, nil
}
