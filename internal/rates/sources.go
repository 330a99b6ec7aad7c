package rates

import "context"

// FiatRate is one currency pair as reported by the fiat rate source.
// Codes are numeric ISO 4217; pairs not quoted against the reference
// currency are ignored. RateCross may be zero, in which case RateBuy
// applies.
type FiatRate struct {
	CurrencyCodeA int     `json:"currencyCodeA"`
	CurrencyCodeB int     `json:"currencyCodeB"`
	RateBuy       float64 `json:"rateBuy"`
	RateSell      float64 `json:"rateSell"`
	RateCross     float64 `json:"rateCross"`
}

// CryptoAsset is one crypto asset quoted directly against the
// reference currency.
type CryptoAsset struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
}

// FiatSource provides fiat currency pairs.
type FiatSource interface {
	Rates(ctx context.Context) ([]FiatRate, error)
}

// CryptoSource provides crypto asset quotes.
type CryptoSource interface {
	Assets(ctx context.Context) ([]CryptoAsset, error)
}
