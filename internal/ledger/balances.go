package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dsamoilenko/fintrack/internal/domain"
	"github.com/dsamoilenko/fintrack/internal/storage"
)

// Syncer pulls fresh data from a linked bank feed when it has gone
// stale. Listing balances triggers it so the view reflects recent
// activity on watched accounts.
type Syncer interface {
	SyncIfStale(ctx context.Context, userID string) error
}

// BalanceService implements balance CRUD scoped to the owning user.
type BalanceService struct {
	balances   storage.BalanceStore
	currencies storage.CurrencyStore
	feed       Syncer
}

// NewBalanceService creates a balance service. feed may be nil when no
// bank feed is configured.
func NewBalanceService(balances storage.BalanceStore, currencies storage.CurrencyStore, feed Syncer) *BalanceService {
	return &BalanceService{balances: balances, currencies: currencies, feed: feed}
}

// BalanceInput carries the user-settable fields of a balance.
type BalanceInput struct {
	Name          string
	CurrencyCode  string
	InitialAmount decimal.Decimal
}

// Create makes a new balance for the user. The currency is required.
func (s *BalanceService) Create(ctx context.Context, userID string, in BalanceInput) (*storage.Balance, error) {
	if in.CurrencyCode == "" {
		return nil, domain.Validation("currency", "currency must be specified")
	}
	currency, err := s.currencies.ByAlphaCode(ctx, in.CurrencyCode)
	if err != nil {
		return nil, err
	}

	b := &storage.Balance{
		UserID:     userID,
		Name:       in.Name,
		CurrencyID: currency.ID,
		Amount:     in.InitialAmount,
	}
	if err := s.balances.Create(ctx, b); err != nil {
		return nil, err
	}
	b.Currency = *currency
	return b, nil
}

// List returns the user's balances, first syncing the bank feed when
// it has gone stale so watched accounts show recent activity.
func (s *BalanceService) List(ctx context.Context, userID string) ([]storage.Balance, error) {
	if s.feed != nil {
		if err := s.feed.SyncIfStale(ctx, userID); err != nil {
			return nil, err
		}
	}
	return s.balances.ListByUser(ctx, userID)
}

// Update renames a balance or moves it to another currency.
func (s *BalanceService) Update(ctx context.Context, userID, balanceID string, in BalanceInput) (*storage.Balance, error) {
	b, err := s.owned(ctx, userID, balanceID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		b.Name = in.Name
	}
	if in.CurrencyCode != "" {
		currency, err := s.currencies.ByAlphaCode(ctx, in.CurrencyCode)
		if err != nil {
			return nil, err
		}
		b.CurrencyID = currency.ID
		b.Currency = *currency
	}
	if err := s.balances.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete removes the balance and all of its transactions.
func (s *BalanceService) Delete(ctx context.Context, userID, balanceID string) error {
	if _, err := s.owned(ctx, userID, balanceID); err != nil {
		return err
	}
	return s.balances.Delete(ctx, balanceID)
}

// owned loads a balance scoped to the user; foreign balances surface
// as NotFound.
func (s *BalanceService) owned(ctx context.Context, userID, balanceID string) (*storage.Balance, error) {
	b, err := s.balances.Get(ctx, balanceID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, domain.NotFound("balance", "balance does not exist")
	}
	return b, nil
}
