package web

import (
	"context"
	"sync"
	"time"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/model"
	"telegram-premium-bot/internal/domain/ports/repository"
)

// --- Mock usecases and repositories (ports) ---

type mockUserUC struct {
	mu            sync.Mutex
	users         []*model.UserAccount
	CountError    error
	InactiveCount int
}

func (m *mockUserUC) RegisterOrFetch(ctx context.Context, tgID int64, username, firstName string) (*model.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TelegramID == tgID {
			return u, nil
		}
	}
	acct, err := model.NewUserAccount(tgID, username, firstName)
	if err != nil {
		return nil, err
	}
	m.users = append(m.users, acct)
	return acct, nil
}

func (m *mockUserUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TelegramID == tgID {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserUC) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *mockUserUC) CountInactiveSince(ctx context.Context, since time.Time) (int, error) {
	return m.InactiveCount, nil
}

type mockKeyUC struct {
	GenerateError error
	LastDays      int
}

func (m *mockKeyUC) Generate(ctx context.Context, validityDays int) (*model.ActivationKey, error) {
	if m.GenerateError != nil {
		return nil, m.GenerateError
	}
	if validityDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	m.LastDays = validityDays
	return model.NewActivationKey("TESTKEY12345", validityDays, time.Now()), nil
}

func (m *mockKeyUC) PurgeExpired(ctx context.Context) (int, error) { return 0, nil }

type mockAdminUC struct {
	mu       sync.Mutex
	banned   map[int64]bool
	BanError error
}

func (m *mockAdminUC) Broadcast(ctx context.Context, text string) (int, error) { return 0, nil }

func (m *mockAdminUC) Ban(ctx context.Context, tgID int64) error {
	return m.setBanned(tgID, true)
}

func (m *mockAdminUC) Unban(ctx context.Context, tgID int64) error {
	return m.setBanned(tgID, false)
}

func (m *mockAdminUC) setBanned(tgID int64, banned bool) error {
	if m.BanError != nil {
		return m.BanError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.banned == nil {
		m.banned = make(map[int64]bool)
	}
	m.banned[tgID] = banned
	return nil
}

type mockRedeemRepo struct {
	mu        sync.Mutex
	reqs      []*model.RedeemRequest
	ListError error
}

func (m *mockRedeemRepo) Append(ctx context.Context, tx repository.Tx, req *model.RedeemRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reqs = append(m.reqs, req)
	return nil
}

func (m *mockRedeemRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.RedeemRequest, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if offset >= len(m.reqs) {
		return []*model.RedeemRequest{}, nil
	}
	end := len(m.reqs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return m.reqs[offset:end], nil
}

func (m *mockRedeemRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reqs), nil
}
