package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands. Facade methods
// return either ready-to-send strings or effect lists, so the Telegram
// adapter only does transport work.
type BotFacade struct {
	UserUC    usecase.UserUseCase
	AccountUC usecase.AccountUseCase
	KeyUC     usecase.KeyUseCase
	AdminUC   usecase.AdminUseCase
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	accountUC usecase.AccountUseCase,
	keyUC usecase.KeyUseCase,
	adminUC usecase.AdminUseCase,
) *BotFacade {
	return &BotFacade{
		UserUC:    userUC,
		AccountUC: accountUC,
		KeyUC:     keyUC,
		AdminUC:   adminUC,
	}
}

// HandleStart registers or fetches the user and returns a welcome string.
// The adapter pairs it with the main menu keyboard.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username, firstName string) (string, error) {
	u, err := b.UserUC.RegisterOrFetch(ctx, tgID, username, firstName)
	if err != nil {
		return "", fmt.Errorf("register/fetch user: %w", err)
	}
	name := u.FirstName
	if name == "" {
		name = u.Username
	}
	return fmt.Sprintf("Hello %s!\nWelcome to LogicX 🔥", name), nil
}

func (b *BotFacade) HandleMenuAction(ctx context.Context, tgID int64, username, firstName string, kind usecase.MenuKind) ([]usecase.Effect, error) {
	return b.AccountUC.HandleMenu(ctx, tgID, username, firstName, kind)
}

func (b *BotFacade) HandleText(ctx context.Context, tgID int64, username, firstName, text string) ([]usecase.Effect, error) {
	return b.AccountUC.HandleText(ctx, tgID, username, firstName, text)
}

// HandleGenKey mints an activation key and returns the admin-facing reply.
func (b *BotFacade) HandleGenKey(ctx context.Context, days int) (string, error) {
	key, err := b.KeyUC.Generate(ctx, days)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			return "Usage: /genk <days> (days must be a positive number)", nil
		}
		return "", fmt.Errorf("generate key: %w", err)
	}
	return fmt.Sprintf("Generated key: %s (valid %d days until %s)",
		key.Code, days, key.ExpiresAt.Format(time.RFC1123)), nil
}

func (b *BotFacade) HandleBroadcast(ctx context.Context, text string) (string, error) {
	sent, err := b.AdminUC.Broadcast(ctx, text)
	if err != nil {
		return "", fmt.Errorf("broadcast: %w", err)
	}
	return fmt.Sprintf("Broadcast sent to %d users.", sent), nil
}

func (b *BotFacade) HandleBan(ctx context.Context, target int64) (string, error) {
	if err := b.AdminUC.Ban(ctx, target); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("No user with id %d.", target), nil
		}
		return "", fmt.Errorf("ban: %w", err)
	}
	return fmt.Sprintf("Banned %d", target), nil
}

func (b *BotFacade) HandleUnban(ctx context.Context, target int64) (string, error) {
	if err := b.AdminUC.Unban(ctx, target); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Sprintf("No user with id %d.", target), nil
		}
		return "", fmt.Errorf("unban: %w", err)
	}
	return fmt.Sprintf("Unbanned %d", target), nil
}
