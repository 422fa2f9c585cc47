package usecase

import (
	"context"
	"sync"
	"time"

	"telegram-premium-bot/internal/domain"
	"telegram-premium-bot/internal/domain/model"
	"telegram-premium-bot/internal/domain/ports/adapter"
	"telegram-premium-bot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fakeTxManager runs the callback without a real transaction.
type fakeTxManager struct{}

func (fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// noopLocker always grants the lock.
type noopLocker struct{}

func (noopLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "token", nil
}
func (noopLocker) Unlock(ctx context.Context, key, token string) error { return nil }

// memUserRepo is a small in-memory implementation used by unit tests.
type memUserRepo struct {
	mu      sync.RWMutex
	store   map[int64]*model.UserAccount
	saveErr error // used by tests to simulate persistence failures
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]*model.UserAccount)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.UserAccount) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.TelegramID] = &cp
	return nil
}

func (m *memUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.UserAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) SetPendingAction(ctx context.Context, tx repository.Tx, tgID int64, action model.PendingAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[tgID]; ok {
		u.PendingAction = action
	}
	return nil
}

func (m *memUserRepo) MarkFreeRedeemUsed(ctx context.Context, tx repository.Tx, tgID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[tgID]; ok {
		u.FreeRedeemUsed = true
	}
	return nil
}

func (m *memUserRepo) SetPremiumUntil(ctx context.Context, tx repository.Tx, tgID int64, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[tgID]; ok {
		u.PremiumUntil = &until
	}
	return nil
}

func (m *memUserRepo) SetBanned(ctx context.Context, tx repository.Tx, tgID int64, banned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[tgID]; ok {
		u.Banned = banned
	}
	return nil
}

func (m *memUserRepo) ListTelegramIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.store))
	for id := range m.store {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *memUserRepo) CountInactiveUsers(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, u := range m.store {
		if u.LastActiveAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// memKeyRepo keeps activation keys in a map.
type memKeyRepo struct {
	mu      sync.Mutex
	store   map[string]*model.ActivationKey
	saveErr error
}

func newMemKeyRepo() *memKeyRepo {
	return &memKeyRepo{store: make(map[string]*model.ActivationKey)}
}

func (m *memKeyRepo) Save(ctx context.Context, tx repository.Tx, key *model.ActivationKey) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[key.Code]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *key
	m.store[key.Code] = &cp
	return nil
}

func (m *memKeyRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (m *memKeyRepo) Delete(ctx context.Context, tx repository.Tx, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, code)
	return nil
}

func (m *memKeyRepo) DeleteExpired(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	n := 0
	for code, k := range m.store {
		if k.Expired(now) {
			delete(m.store, code)
			n++
		}
	}
	return n, nil
}

// memRedeemRepo records appended requests in order.
type memRedeemRepo struct {
	mu       sync.Mutex
	requests []*model.RedeemRequest
}

func newMemRedeemRepo() *memRedeemRepo { return &memRedeemRepo{} }

func (m *memRedeemRepo) Append(ctx context.Context, tx repository.Tx, req *model.RedeemRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *req
	m.requests = append(m.requests, &cp)
	return nil
}

func (m *memRedeemRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.RedeemRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.RedeemRequest, len(m.requests))
	copy(out, m.requests)
	return out, nil
}

func (m *memRedeemRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests), nil
}

// mockBot records sent messages and can simulate per-recipient failures.
type mockBot struct {
	mu       sync.Mutex
	sent     []sentMessage
	sendFunc func(ctx context.Context, telegramID int64, text string) error
}

type sentMessage struct {
	TelegramID int64
	Text       string
}

func (b *mockBot) SendMessage(ctx context.Context, telegramID int64, text string) error {
	if b.sendFunc != nil {
		if err := b.sendFunc(ctx, telegramID, text); err != nil {
			return err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentMessage{TelegramID: telegramID, Text: text})
	return nil
}

func (b *mockBot) SendButtons(ctx context.Context, telegramID int64, text string, rows [][]adapter.InlineButton) error {
	return nil
}

func (b *mockBot) sentTo(tgID int64) []sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []sentMessage
	for _, s := range b.sent {
		if s.TelegramID == tgID {
			out = append(out, s)
		}
	}
	return out
}
