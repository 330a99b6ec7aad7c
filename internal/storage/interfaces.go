package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Sort describes transaction list ordering. Field is "date" or
// "amount", Order is "asc" or "desc". The ledger validates and
// defaults these before they reach the store.
type Sort struct {
	Field string
	Order string
}

// CurrencyStore is the exchange-rate table. Upsert is keyed by alpha
// code with insert-or-overwrite semantics; duplicate rows are never
// created for the same code.
type CurrencyStore interface {
	Upsert(ctx context.Context, c *Currency) error
	ByAlphaCode(ctx context.Context, code string) (*Currency, error)
	ByNumCode(ctx context.Context, num int) (*Currency, error)
	List(ctx context.Context) ([]Currency, error)
	SearchAlphaCode(ctx context.Context, fragment string) ([]Currency, error)
	SearchName(ctx context.Context, fragment string) ([]Currency, error)
}

// BalanceStore persists balances. The two amount mutations implement
// the two distinct balance policies: ApplyDelta is the ledger's
// incremental update (it re-reads the row before adding, so two deltas
// against the same row within one operation never lose an update), and
// OverwriteAmount is the importer's set-to-closing-balance policy.
// Applying the wrong one corrupts the cached total silently, so they
// are separate named operations.
type BalanceStore interface {
	Create(ctx context.Context, b *Balance) error
	Get(ctx context.Context, id string) (*Balance, error)
	ListByUser(ctx context.Context, userID string) ([]Balance, error)
	Update(ctx context.Context, b *Balance) error
	ApplyDelta(ctx context.Context, id string, delta decimal.Decimal) error
	OverwriteAmount(ctx context.Context, id string, amount decimal.Decimal) error
	Delete(ctx context.Context, id string) error
}

// TransactionStore persists transactions. Deleting a balance cascades
// to its transactions through BalanceStore.Delete.
type TransactionStore interface {
	Create(ctx context.Context, t *Transaction) error
	CreateBatch(ctx context.Context, ts []*Transaction) error
	Get(ctx context.Context, id string) (*Transaction, error)
	ListByBalance(ctx context.Context, balanceID string, sort Sort) ([]Transaction, error)
	ListByUserSince(ctx context.Context, userID string, since time.Time) ([]Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, id string) error
	HasExternalID(ctx context.Context, externalID string) (bool, error)
}

// FeedStore persists bank-feed links and mirrored accounts.
type FeedStore interface {
	UpsertLink(ctx context.Context, l *FeedLink) error
	Link(ctx context.Context, userID string) (*FeedLink, error)
	DeleteLink(ctx context.Context, userID string) error
	CreateAccount(ctx context.Context, a *FeedAccount) error
	Account(ctx context.Context, id string) (*FeedAccount, error)
	ListAccounts(ctx context.Context, userID string) ([]FeedAccount, error)
	UpdateAccount(ctx context.Context, a *FeedAccount) error
}
