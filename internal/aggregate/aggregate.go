// Package aggregate computes currency-normalized totals over a user's
// balances and transactions. Every figure is expressed in the
// reference currency by multiplying amounts with the cached rates.
package aggregate

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dsamoilenko/fintrack/internal/storage"
)

// ReportWindow is the trailing period profits and losses cover when
// the caller does not pick one.
const ReportWindow = 31 * 24 * time.Hour

// Freshener refreshes the rate table when it has gone stale. The net
// worth figure triggers it so a total never multiplies against rates
// older than the staleness threshold.
type Freshener interface {
	Ensure(ctx context.Context) error
}

// Service computes aggregates.
type Service struct {
	balances     storage.BalanceStore
	transactions storage.TransactionStore
	rates        Freshener
	now          func() time.Time
	log          zerolog.Logger
}

// New creates the aggregation service.
func New(balances storage.BalanceStore, transactions storage.TransactionStore, rates Freshener, log zerolog.Logger) *Service {
	return &Service{
		balances:     balances,
		transactions: transactions,
		rates:        rates,
		now:          time.Now,
		log:          log,
	}
}

// Total returns the user's net worth in the reference currency: the
// sum of every balance's amount multiplied by its currency's rate.
// A user without balances totals zero.
func (s *Service) Total(ctx context.Context, userID string) (decimal.Decimal, error) {
	if err := s.rates.Ensure(ctx); err != nil {
		return decimal.Zero, err
	}

	balances, err := s.balances.ListByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Amount.Mul(b.Currency.Rate))
	}
	return total, nil
}

// Profits sums the user's positive transactions over the trailing
// report window, normalized to the reference currency.
func (s *Service) Profits(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.sumSigned(ctx, userID, false)
}

// Losses sums the user's negative transactions over the trailing
// report window, normalized to the reference currency. The result is
// negative or zero.
func (s *Service) Losses(ctx context.Context, userID string) (decimal.Decimal, error) {
	return s.sumSigned(ctx, userID, true)
}

func (s *Service) sumSigned(ctx context.Context, userID string, negative bool) (decimal.Decimal, error) {
	since := s.now().Add(-ReportWindow)
	txs, err := s.transactions.ListByUserSince(ctx, userID, since)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, t := range txs {
		if t.Amount.IsNegative() != negative || t.Amount.IsZero() {
			continue
		}
		sum = sum.Add(t.Amount.Mul(t.Balance.Currency.Rate))
	}
	return sum, nil
}
