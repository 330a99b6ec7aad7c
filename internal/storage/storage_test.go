package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsamoilenko/fintrack/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return db
}

func intPtr(v int) *int { return &v }

func TestCurrencyUpsertKeyedByAlphaCode(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := db.Currencies()

	usd := &Currency{AlphaCode: "USD", NumCode: intPtr(840), Name: "US Dollar", Rate: decimal.RequireFromString("41.5")}
	if err := repo.Upsert(ctx, usd); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Same code again with a new rate must overwrite, not duplicate.
	if err := repo.Upsert(ctx, &Currency{AlphaCode: "USD", NumCode: intPtr(840), Name: "US Dollar", Rate: decimal.RequireFromString("42.0")}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 currency row, got %d", len(all))
	}
	if !all[0].Rate.Equal(decimal.RequireFromString("42.0")) {
		t.Errorf("rate = %s, want 42.0", all[0].Rate)
	}

	got, err := repo.ByNumCode(ctx, 840)
	if err != nil {
		t.Fatalf("ByNumCode failed: %v", err)
	}
	if got.AlphaCode != "USD" {
		t.Errorf("ByNumCode returned %s, want USD", got.AlphaCode)
	}
}

func TestCurrencySearch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := db.Currencies()

	for _, c := range []*Currency{
		{AlphaCode: "UAH", Name: "Ukrainian hryvnia", Rate: decimal.New(1, 0)},
		{AlphaCode: "USD", Name: "US Dollar", Rate: decimal.RequireFromString("41.5")},
		{AlphaCode: "BTC", Name: "Bitcoin", Rate: decimal.RequireFromString("2500000")},
	} {
		if err := repo.Upsert(ctx, c); err != nil {
			t.Fatalf("Upsert(%s) failed: %v", c.AlphaCode, err)
		}
	}

	byCode, err := repo.SearchAlphaCode(ctx, "u")
	if err != nil {
		t.Fatalf("SearchAlphaCode failed: %v", err)
	}
	if len(byCode) != 2 {
		t.Errorf("SearchAlphaCode(u) returned %d rows, want 2 (UAH, USD)", len(byCode))
	}

	byName, err := repo.SearchName(ctx, "bitcoin")
	if err != nil {
		t.Fatalf("SearchName failed: %v", err)
	}
	if len(byName) != 1 || byName[0].AlphaCode != "BTC" {
		t.Errorf("SearchName(bitcoin) = %v, want [BTC]", byName)
	}
}

func seedBalance(t *testing.T, db *DB, userID string, amount string) *Balance {
	t.Helper()
	ctx := context.Background()
	cur := &Currency{AlphaCode: "USD", NumCode: intPtr(840), Name: "US Dollar", Rate: decimal.RequireFromString("41.5")}
	if err := db.Currencies().Upsert(ctx, cur); err != nil {
		t.Fatalf("seeding currency: %v", err)
	}
	b := &Balance{UserID: userID, Name: "Main Wallet", CurrencyID: cur.ID, Amount: decimal.RequireFromString(amount)}
	if err := db.Balances().Create(ctx, b); err != nil {
		t.Fatalf("seeding balance: %v", err)
	}
	return b
}

func TestBalanceApplyDeltaReadsFresh(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	b := seedBalance(t, db, "user-1", "100")

	// Two deltas against the same row; the second must see the first.
	if err := db.Balances().ApplyDelta(ctx, b.ID, decimal.RequireFromString("-30")); err != nil {
		t.Fatalf("first ApplyDelta failed: %v", err)
	}
	if err := db.Balances().ApplyDelta(ctx, b.ID, decimal.RequireFromString("50")); err != nil {
		t.Fatalf("second ApplyDelta failed: %v", err)
	}

	got, err := db.Balances().Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("120")) {
		t.Errorf("amount = %s, want 120", got.Amount)
	}
}

func TestBalanceOverwriteAmount(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	b := seedBalance(t, db, "user-1", "100")

	if err := db.Balances().OverwriteAmount(ctx, b.ID, decimal.RequireFromString("900")); err != nil {
		t.Fatalf("OverwriteAmount failed: %v", err)
	}
	got, _ := db.Balances().Get(ctx, b.ID)
	if !got.Amount.Equal(decimal.RequireFromString("900")) {
		t.Errorf("amount = %s, want 900", got.Amount)
	}

	err := db.Balances().OverwriteAmount(ctx, "missing", decimal.Zero)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("OverwriteAmount on missing balance = %v, want NotFound", err)
	}
}

func TestBalanceDeleteCascadesTransactions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	b := seedBalance(t, db, "user-1", "0")

	for i := 0; i < 3; i++ {
		tx := &Transaction{UserID: "user-1", BalanceID: b.ID, Name: "coffee", Date: time.Now().UTC(), Amount: decimal.RequireFromString("-5")}
		if err := db.Transactions().Create(ctx, tx); err != nil {
			t.Fatalf("seeding transaction: %v", err)
		}
	}

	if err := db.Balances().Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	left, err := db.Transactions().ListByBalance(ctx, b.ID, Sort{})
	if err != nil {
		t.Fatalf("ListByBalance failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected cascade delete, %d transactions left", len(left))
	}
}

func TestTransactionListOrdering(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	b := seedBalance(t, db, "user-1", "0")

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	amounts := []string{"10", "-40", "25"}
	for i, a := range amounts {
		tx := &Transaction{UserID: "user-1", BalanceID: b.ID, Date: base.AddDate(0, 0, i), Amount: decimal.RequireFromString(a)}
		if err := db.Transactions().Create(ctx, tx); err != nil {
			t.Fatalf("seeding transaction: %v", err)
		}
	}

	tests := []struct {
		name  string
		sort  Sort
		first string
	}{
		{"default is date desc", Sort{}, "25"},
		{"date asc", Sort{Field: "date", Order: "asc"}, "10"},
		{"amount desc", Sort{Field: "amount", Order: "desc"}, "25"},
		{"amount asc", Sort{Field: "amount", Order: "asc"}, "-40"},
		{"unknown field falls back to date", Sort{Field: "name; drop table", Order: "desc"}, "25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Transactions().ListByBalance(ctx, b.ID, tt.sort)
			if err != nil {
				t.Fatalf("ListByBalance failed: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("got %d transactions, want 3", len(got))
			}
			if !got[0].Amount.Equal(decimal.RequireFromString(tt.first)) {
				t.Errorf("first amount = %s, want %s", got[0].Amount, tt.first)
			}
		})
	}
}

func TestTransactionExternalIDDedupe(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	b := seedBalance(t, db, "user-1", "0")

	ext := "stmt-001"
	tx := &Transaction{UserID: "user-1", BalanceID: b.ID, Date: time.Now().UTC(), Amount: decimal.New(-100, 0), ExternalID: &ext}
	if err := db.Transactions().Create(ctx, tx); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	seen, err := db.Transactions().HasExternalID(ctx, "stmt-001")
	if err != nil {
		t.Fatalf("HasExternalID failed: %v", err)
	}
	if !seen {
		t.Error("HasExternalID(stmt-001) = false, want true")
	}

	seen, err = db.Transactions().HasExternalID(ctx, "stmt-002")
	if err != nil {
		t.Fatalf("HasExternalID failed: %v", err)
	}
	if seen {
		t.Error("HasExternalID(stmt-002) = true, want false")
	}
}

func TestFeedLinkLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	link := &FeedLink{UserID: "user-1", Token: "tok", LastSyncedAt: time.Now().UTC()}
	if err := db.Feed().UpsertLink(ctx, link); err != nil {
		t.Fatalf("UpsertLink failed: %v", err)
	}
	acc := &FeedAccount{UserID: "user-1", ExternalID: "acc-1", Name: "black", Amount: decimal.New(10000, -2)}
	if err := db.Feed().CreateAccount(ctx, acc); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := db.Feed().DeleteLink(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteLink failed: %v", err)
	}
	if _, err := db.Feed().Link(ctx, "user-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Link after delete = %v, want NotFound", err)
	}
	accounts, err := db.Feed().ListAccounts(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("expected feed accounts removed with link, got %d", len(accounts))
	}
}
