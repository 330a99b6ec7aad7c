package aggregate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsamoilenko/fintrack/internal/logger"
	"github.com/dsamoilenko/fintrack/internal/storage"
)

type fakeFreshener struct {
	calls int
}

func (f *fakeFreshener) Ensure(ctx context.Context) error {
	f.calls++
	return nil
}

type fixture struct {
	db    *storage.DB
	fresh *fakeFreshener
	svc   *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	fresh := &fakeFreshener{}
	return &fixture{
		db:    db,
		fresh: fresh,
		svc:   New(db.Balances(), db.Transactions(), fresh, logger.Nop()),
	}
}

func (f *fixture) currency(t *testing.T, code string, rate float64) *storage.Currency {
	t.Helper()
	c := &storage.Currency{AlphaCode: code, Rate: decimal.NewFromFloat(rate)}
	if err := f.db.Currencies().Upsert(context.Background(), c); err != nil {
		t.Fatal(err)
	}
	return c
}

func (f *fixture) balance(t *testing.T, userID string, c *storage.Currency, amount float64) *storage.Balance {
	t.Helper()
	b := &storage.Balance{
		UserID:     userID,
		Name:       "test",
		CurrencyID: c.ID,
		Amount:     decimal.NewFromFloat(amount),
	}
	if err := f.db.Balances().Create(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	return b
}

func (f *fixture) transaction(t *testing.T, b *storage.Balance, amount float64, date time.Time) {
	t.Helper()
	tx := &storage.Transaction{
		UserID:    b.UserID,
		BalanceID: b.ID,
		Name:      "test",
		Date:      date,
		Amount:    decimal.NewFromFloat(amount),
	}
	if err := f.db.Transactions().Create(context.Background(), tx); err != nil {
		t.Fatal(err)
	}
}

func TestTotalNormalizesAcrossCurrencies(t *testing.T) {
	f := newFixture(t)
	uah := f.currency(t, "UAH", 1)
	usd := f.currency(t, "USD", 40)
	f.balance(t, "u1", uah, 500)
	f.balance(t, "u1", usd, 10)
	f.balance(t, "other", usd, 1000)

	got, err := f.svc.Total(context.Background(), "u1")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	// 500*1 + 10*40, the other user's balance excluded.
	if want := decimal.NewFromInt(900); !got.Equal(want) {
		t.Errorf("total = %s, want %s", got, want)
	}
	if f.fresh.calls != 1 {
		t.Errorf("rate freshness checked %d times, want 1", f.fresh.calls)
	}
}

func TestTotalWithoutBalancesIsZero(t *testing.T) {
	f := newFixture(t)

	got, err := f.svc.Total(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("total = %s, want 0", got)
	}
}

func TestProfitsAndLossesSplitBySign(t *testing.T) {
	f := newFixture(t)
	usd := f.currency(t, "USD", 40)
	b := f.balance(t, "u1", usd, 0)

	now := time.Now()
	f.transaction(t, b, 100, now.Add(-24*time.Hour))
	f.transaction(t, b, 25, now.Add(-48*time.Hour))
	f.transaction(t, b, -30, now.Add(-24*time.Hour))
	f.transaction(t, b, 999, now.Add(-40*24*time.Hour)) // outside the window

	profits, err := f.svc.Profits(context.Background(), "u1")
	if err != nil {
		t.Fatalf("profits: %v", err)
	}
	if want := decimal.NewFromInt(5000); !profits.Equal(want) {
		t.Errorf("profits = %s, want %s", profits, want)
	}

	losses, err := f.svc.Losses(context.Background(), "u1")
	if err != nil {
		t.Fatalf("losses: %v", err)
	}
	if want := decimal.NewFromInt(-1200); !losses.Equal(want) {
		t.Errorf("losses = %s, want %s", losses, want)
	}
}

func TestReportScopedToUser(t *testing.T) {
	f := newFixture(t)
	uah := f.currency(t, "UAH", 1)
	mine := f.balance(t, "u1", uah, 0)
	theirs := f.balance(t, "u2", uah, 0)

	now := time.Now()
	f.transaction(t, mine, 10, now.Add(-time.Hour))
	f.transaction(t, theirs, 90, now.Add(-time.Hour))

	profits, err := f.svc.Profits(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.NewFromInt(10); !profits.Equal(want) {
		t.Errorf("profits = %s, want %s", profits, want)
	}
}
