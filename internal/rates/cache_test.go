package rates

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dsamoilenko/fintrack/internal/logger"
	"github.com/dsamoilenko/fintrack/internal/storage"
)

type fakeFiat struct {
	rates []FiatRate
	calls int
}

func (f *fakeFiat) Rates(ctx context.Context) ([]FiatRate, error) {
	f.calls++
	return f.rates, nil
}

type fakeCrypto struct {
	assets []CryptoAsset
	calls  int
}

func (f *fakeCrypto) Assets(ctx context.Context) ([]CryptoAsset, error) {
	f.calls++
	return f.assets, nil
}

func testCache(t *testing.T, fiat *fakeFiat, crypto *fakeCrypto) (*Cache, storage.CurrencyStore) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	c := NewCache(db.Currencies(), fiat, crypto, logger.Nop())
	return c, db.Currencies()
}

func TestRefreshSeedsReferenceAndSources(t *testing.T) {
	fiat := &fakeFiat{rates: []FiatRate{
		{CurrencyCodeA: 840, CurrencyCodeB: 980, RateBuy: 41.2, RateCross: 0},
		{CurrencyCodeA: 978, CurrencyCodeB: 980, RateCross: 45.1},
		{CurrencyCodeA: 840, CurrencyCodeB: 978, RateCross: 1.08}, // not against the reference
		{CurrencyCodeA: 999, CurrencyCodeB: 980, RateCross: 2},    // unknown numeric code
		{CurrencyCodeA: 392, CurrencyCodeB: 980},                  // no usable rate
	}}
	crypto := &fakeCrypto{assets: []CryptoAsset{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 2500000},
		{ID: "broken", Symbol: "", CurrentPrice: 10},
		{ID: "worthless", Symbol: "nil", CurrentPrice: 0},
	}}
	cache, currencies := testCache(t, fiat, crypto)
	ctx := context.Background()

	if err := cache.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	uah, err := currencies.ByAlphaCode(ctx, "UAH")
	if err != nil {
		t.Fatalf("reference currency not seeded: %v", err)
	}
	if !uah.Rate.Equal(decimal.New(1, 0)) {
		t.Errorf("reference rate = %s, want 1", uah.Rate)
	}

	usd, err := currencies.ByAlphaCode(ctx, "USD")
	if err != nil {
		t.Fatalf("USD not stored: %v", err)
	}
	if got := usd.Rate.InexactFloat64(); got != 41.2 {
		t.Errorf("USD rate = %v, want rateBuy fallback 41.2", got)
	}

	btc, err := currencies.ByAlphaCode(ctx, "BTC")
	if err != nil {
		t.Fatalf("BTC not stored: %v", err)
	}
	if btc.Name != "Bitcoin" {
		t.Errorf("BTC name = %q", btc.Name)
	}

	all, err := currencies.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// UAH, USD, EUR, BTC; the skipped entries must not appear.
	if len(all) != 4 {
		t.Errorf("stored %d currencies, want 4: %+v", len(all), all)
	}
}

func TestRefreshIsIdempotent(t *testing.T) {
	fiat := &fakeFiat{rates: []FiatRate{
		{CurrencyCodeA: 840, CurrencyCodeB: 980, RateCross: 41.5},
	}}
	crypto := &fakeCrypto{}
	cache, currencies := testCache(t, fiat, crypto)
	ctx := context.Background()

	if err := cache.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if err := cache.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	all, err := currencies.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("stored %d currencies after double refresh, want 2", len(all))
	}
}

func TestEnsureRefreshesOnlyWhenStale(t *testing.T) {
	fiat := &fakeFiat{}
	crypto := &fakeCrypto{}
	cache, _ := testCache(t, fiat, crypto)
	ctx := context.Background()

	// Empty table: the first read refreshes.
	if err := cache.Ensure(ctx); err != nil {
		t.Fatal(err)
	}
	if fiat.calls != 1 {
		t.Fatalf("fiat source called %d times, want 1", fiat.calls)
	}

	// Fresh table: no refresh.
	if err := cache.Ensure(ctx); err != nil {
		t.Fatal(err)
	}
	if fiat.calls != 1 {
		t.Errorf("fiat source called %d times on a fresh table, want 1", fiat.calls)
	}

	// Older than the threshold: refresh again.
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := cache.Ensure(ctx); err != nil {
		t.Fatal(err)
	}
	if fiat.calls != 2 {
		t.Errorf("fiat source called %d times on a stale table, want 2", fiat.calls)
	}
}

func TestGetUppercasesCode(t *testing.T) {
	fiat := &fakeFiat{rates: []FiatRate{
		{CurrencyCodeA: 978, CurrencyCodeB: 980, RateCross: 45.0},
	}}
	cache, _ := testCache(t, fiat, &fakeCrypto{})

	got, err := cache.Get(context.Background(), "eur")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AlphaCode != "EUR" {
		t.Errorf("alpha code = %q, want EUR", got.AlphaCode)
	}
}

func TestListSearchFallsBackToName(t *testing.T) {
	fiat := &fakeFiat{rates: []FiatRate{
		{CurrencyCodeA: 840, CurrencyCodeB: 980, RateCross: 41.5},
		{CurrencyCodeA: 978, CurrencyCodeB: 980, RateCross: 45.1},
	}}
	cache, _ := testCache(t, fiat, &fakeCrypto{})
	ctx := context.Background()

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"empty lists all", "", []string{"EUR", "UAH", "USD"}},
		{"alpha code match", "us", []string{"USD"}},
		{"name fallback", "hryv", []string{"UAH"}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cache.List(ctx, tt.search)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			codes := make(map[string]bool, len(got))
			for _, c := range got {
				codes[c.AlphaCode] = true
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d currencies, want %d: %+v", len(got), len(tt.want), got)
			}
			for _, w := range tt.want {
				if !codes[w] {
					t.Errorf("missing %s in %+v", w, got)
				}
			}
		})
	}
}
