package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is one row of the exchange-rate table. Rates are expressed
// against the reference currency (UAH). AlphaCode is the authoritative
// key: upserts are keyed by it and it never changes once assigned.
// NumCode is nil for non-ISO assets such as crypto currencies.
type Currency struct {
	ID        string `gorm:"primaryKey;size:36"`
	AlphaCode string `gorm:"uniqueIndex;size:16;not null"`
	NumCode   *int
	Name      string
	Rate      decimal.Decimal `gorm:"type:numeric(30,10)"`
	UpdatedAt time.Time
}

// Balance is a named pot of money in a single currency. Amount is a
// cached running total: the ledger keeps it equal to the sum of the
// balance's transactions, and the importer overwrites it with the
// closing balance of an imported statement.
type Balance struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     string `gorm:"index;not null"`
	Name       string
	CurrencyID string          `gorm:"size:36;not null"`
	Currency   Currency        `gorm:"foreignKey:CurrencyID"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2)"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Transaction is a single signed movement on a balance. Positive
// amounts are income, negative are expenses. ExternalID carries the
// provider statement id for bank-feed imports so re-imports stay
// idempotent; it is nil for manually entered transactions.
type Transaction struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     string `gorm:"index;not null"`
	BalanceID  string `gorm:"index;not null"`
	Balance    Balance `gorm:"foreignKey:BalanceID"`
	Name       string
	Category   string
	Date       time.Time `gorm:"index"`
	Amount     decimal.Decimal `gorm:"type:numeric(20,2)"`
	ExternalID *string         `gorm:"uniqueIndex"`
	CreatedAt  time.Time
}

// FeedLink stores a user's bank-feed token, one per user.
type FeedLink struct {
	UserID       string `gorm:"primaryKey;size:36"`
	Token        string
	LastSyncedAt time.Time
}

// FeedAccount mirrors one account reported by the bank feed. While
// watched it points at the real Balance created from it.
type FeedAccount struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     string `gorm:"index;not null"`
	ExternalID string `gorm:"uniqueIndex;not null"`
	Name       string
	CurrencyID string          `gorm:"size:36"`
	Amount     decimal.Decimal `gorm:"type:numeric(30,10)"`
	Watch      bool
	BalanceID  *string `gorm:"size:36"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
