// Package rates maintains the table of exchange rates against the
// reference currency, refreshed lazily from external sources.
package rates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dsamoilenko/fintrack/internal/domain"
	"github.com/dsamoilenko/fintrack/internal/storage"
)

// ReferenceCode is the currency all rates are expressed against.
const ReferenceCode = "UAH"

// referenceNumCode is the ISO 4217 numeric code of the reference
// currency; the fiat source quotes pairs against it.
const referenceNumCode = 980

// StaleAfter is how old the reference currency's entry may get before
// a read triggers a blocking refresh.
const StaleAfter = time.Hour

// Cache is the rate table service. Reads go to storage; when the
// table has gone stale the read blocks on a full refresh first.
type Cache struct {
	currencies storage.CurrencyStore
	fiat       FiatSource
	crypto     CryptoSource
	staleAfter time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewCache creates a rate cache over the given stores and sources.
func NewCache(currencies storage.CurrencyStore, fiat FiatSource, crypto CryptoSource, log zerolog.Logger) *Cache {
	return &Cache{
		currencies: currencies,
		fiat:       fiat,
		crypto:     crypto,
		staleAfter: StaleAfter,
		now:        time.Now,
		log:        log,
	}
}

// Ensure refreshes the table when the reference currency's entry is
// missing or older than the staleness threshold.
func (c *Cache) Ensure(ctx context.Context) error {
	ref, err := c.currencies.ByAlphaCode(ctx, ReferenceCode)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Refresh(ctx)
	case err != nil:
		return err
	}

	if c.now().Sub(ref.UpdatedAt) > c.staleAfter {
		return c.Refresh(ctx)
	}
	return nil
}

// Get returns the cached rate entry for code, refreshing first when
// the table is stale.
func (c *Cache) Get(ctx context.Context, code string) (*storage.Currency, error) {
	if err := c.Ensure(ctx); err != nil {
		return nil, err
	}
	return c.currencies.ByAlphaCode(ctx, strings.ToUpper(code))
}

// Refresh pulls all rates from the fiat and crypto sources and upserts
// them keyed by alpha code. A bad entry in a response is logged and
// skipped, never aborting the rest of the refresh; refreshing twice
// with identical upstream data leaves the stored rates unchanged.
func (c *Cache) Refresh(ctx context.Context) error {
	num := referenceNumCode
	err := c.currencies.Upsert(ctx, &storage.Currency{
		AlphaCode: ReferenceCode,
		NumCode:   &num,
		Name:      "Ukrainian hryvnia",
		Rate:      decimal.New(1, 0),
	})
	if err != nil {
		return err
	}

	if err := c.refreshFiat(ctx); err != nil {
		return err
	}
	return c.refreshCrypto(ctx)
}

func (c *Cache) refreshFiat(ctx context.Context) error {
	pairs, err := c.fiat.Rates(ctx)
	if err != nil {
		return domain.Upstream("rates", err)
	}

	for _, pair := range pairs {
		if pair.CurrencyCodeB != referenceNumCode {
			continue
		}
		iso, ok := lookupISO(pair.CurrencyCodeA)
		if !ok {
			c.log.Warn().Int("num_code", pair.CurrencyCodeA).Msg("skipping unknown currency code")
			continue
		}

		rate := pair.RateCross
		if rate == 0 {
			rate = pair.RateBuy
		}
		if rate == 0 {
			c.log.Warn().Str("currency", iso.Alpha).Msg("skipping pair without a usable rate")
			continue
		}

		num := pair.CurrencyCodeA
		err := c.currencies.Upsert(ctx, &storage.Currency{
			AlphaCode: iso.Alpha,
			NumCode:   &num,
			Name:      iso.Name,
			Rate:      decimal.NewFromFloat(rate),
		})
		if err != nil {
			c.log.Warn().Err(err).Str("currency", iso.Alpha).Msg("skipping currency upsert failure")
		}
	}
	return nil
}

func (c *Cache) refreshCrypto(ctx context.Context) error {
	assets, err := c.crypto.Assets(ctx)
	if err != nil {
		return domain.Upstream("rates", err)
	}

	for _, asset := range assets {
		if asset.Symbol == "" || asset.CurrentPrice <= 0 {
			c.log.Warn().Str("asset", asset.ID).Msg("skipping crypto asset without symbol or price")
			continue
		}

		err := c.currencies.Upsert(ctx, &storage.Currency{
			AlphaCode: strings.ToUpper(asset.Symbol),
			Name:      asset.Name,
			Rate:      decimal.NewFromFloat(asset.CurrentPrice),
		})
		if err != nil {
			c.log.Warn().Err(err).Str("asset", asset.ID).Msg("skipping crypto upsert failure")
		}
	}
	return nil
}

// List returns currencies matching search, refreshing first when the
// table is stale. The search matches alpha codes, falling back to
// display names when no code matches; an empty search lists all.
func (c *Cache) List(ctx context.Context, search string) ([]storage.Currency, error) {
	if err := c.Ensure(ctx); err != nil {
		return nil, err
	}

	if search == "" {
		return c.currencies.List(ctx)
	}

	byCode, err := c.currencies.SearchAlphaCode(ctx, search)
	if err != nil {
		return nil, err
	}
	if len(byCode) > 0 {
		return byCode, nil
	}
	return c.currencies.SearchName(ctx, search)
}
