// Package ledger keeps every balance's cached amount consistent with
// its transactions. All transaction mutations must go through this
// service; writing transaction rows directly desyncs the cached totals.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dsamoilenko/fintrack/internal/domain"
	"github.com/dsamoilenko/fintrack/internal/storage"
)

// Service implements transaction CRUD with incremental balance sync.
//
// The balance update and the transaction write are applied as two
// separate steps with no compensating rollback: a failure between them
// leaves the cached amount and the transaction set inconsistent. This
// mirrors the upstream behavior and is an accepted weakness, not a
// guarantee.
type Service struct {
	balances     storage.BalanceStore
	transactions storage.TransactionStore
	log          zerolog.Logger
}

// NewService creates a ledger service.
func NewService(balances storage.BalanceStore, transactions storage.TransactionStore, log zerolog.Logger) *Service {
	return &Service{balances: balances, transactions: transactions, log: log}
}

// TransactionInput carries the mutable fields of a transaction.
type TransactionInput struct {
	BalanceID string
	Name      string
	Category  string
	Date      time.Time
	Amount    decimal.Decimal
}

// Create persists a transaction on the given balance and adds its
// amount to the balance's cached total. The balance must belong to the
// requesting user.
func (s *Service) Create(ctx context.Context, userID string, in TransactionInput) (*storage.Transaction, error) {
	balance, err := s.balances.Get(ctx, in.BalanceID)
	if err != nil {
		return nil, err
	}
	if balance.UserID != userID {
		return nil, domain.Forbidden("balance", "you do not own this balance")
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	tx := &storage.Transaction{
		UserID:    userID,
		BalanceID: in.BalanceID,
		Name:      in.Name,
		Category:  in.Category,
		Date:      date,
		Amount:    in.Amount,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("creating transaction: %w", err)
	}
	if err := s.balances.ApplyDelta(ctx, in.BalanceID, in.Amount); err != nil {
		return nil, fmt.Errorf("syncing balance after create: %w", err)
	}

	s.log.Debug().
		Str("balance_id", in.BalanceID).
		Str("amount", in.Amount.String()).
		Msg("transaction created")
	return tx, nil
}

// Update rewrites a transaction and re-syncs the owning balance(s):
// the old owning balance is decremented by the old amount, then the
// new owning balance is re-read and incremented by the new amount.
// When the balance reference is unchanged the two deltas land on the
// same row, which is why the increment must not reuse a stale read.
func (s *Service) Update(ctx context.Context, userID, txID string, in TransactionInput) (*storage.Transaction, error) {
	old, err := s.ownedTransaction(ctx, userID, txID)
	if err != nil {
		return nil, err
	}

	newBalanceID := in.BalanceID
	if newBalanceID == "" {
		newBalanceID = old.BalanceID
	}
	if newBalanceID != old.BalanceID {
		target, err := s.balances.Get(ctx, newBalanceID)
		if err != nil {
			return nil, err
		}
		if target.UserID != userID {
			return nil, domain.Forbidden("balance", "you do not own this balance")
		}
	}

	updated := *old
	updated.BalanceID = newBalanceID
	updated.Name = in.Name
	updated.Category = in.Category
	if !in.Date.IsZero() {
		updated.Date = in.Date
	}
	updated.Amount = in.Amount

	if err := s.transactions.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}
	if err := s.balances.ApplyDelta(ctx, old.BalanceID, old.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("reverting old amount: %w", err)
	}
	if err := s.balances.ApplyDelta(ctx, newBalanceID, updated.Amount); err != nil {
		return nil, fmt.Errorf("applying new amount: %w", err)
	}

	return &updated, nil
}

// Delete decrements the owning balance by the transaction amount, then
// removes the transaction. The decrement comes first; a failure after
// it leaves the balance adjusted with the row still present, and
// re-running the delete would decrement again.
func (s *Service) Delete(ctx context.Context, userID, txID string) error {
	tx, err := s.ownedTransaction(ctx, userID, txID)
	if err != nil {
		return err
	}

	if err := s.balances.ApplyDelta(ctx, tx.BalanceID, tx.Amount.Neg()); err != nil {
		return fmt.Errorf("reverting amount before delete: %w", err)
	}
	if err := s.transactions.Delete(ctx, txID); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

// List returns the transactions of one of the user's balances, sorted
// by date or amount (default: date, newest first).
func (s *Service) List(ctx context.Context, userID, balanceID string, sort storage.Sort) ([]storage.Transaction, error) {
	balance, err := s.balances.Get(ctx, balanceID)
	if err != nil {
		return nil, err
	}
	if balance.UserID != userID {
		return nil, domain.NotFound("balance", "balance does not exist")
	}
	return s.transactions.ListByBalance(ctx, balanceID, sort)
}

// ownedTransaction loads a transaction scoped to the user. Foreign
// transactions surface as NotFound, matching the user-scoped queryset
// behavior of the API.
func (s *Service) ownedTransaction(ctx context.Context, userID, txID string) (*storage.Transaction, error) {
	tx, err := s.transactions.Get(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, domain.NotFound("transaction", "transaction does not exist")
	}
	return tx, nil
}
