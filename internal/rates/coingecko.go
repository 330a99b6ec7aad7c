package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
)

// trackedAssets is the market page requested from the crypto source:
// top assets by market cap, quoted in the reference currency.
const trackedAssets = 25

// CoinGeckoSource fetches crypto asset quotes from the CoinGecko
// markets endpoint, priced directly in the reference currency.
type CoinGeckoSource struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoSource creates a crypto source against the given base URL.
func NewCoinGeckoSource(baseURL string) *CoinGeckoSource {
	return &CoinGeckoSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Assets fetches the tracked asset quotes.
func (s *CoinGeckoSource) Assets(ctx context.Context) ([]CryptoAsset, error) {
	q := url.Values{}
	q.Set("vs_currency", "uah")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", fmt.Sprint(trackedAssets))
	q.Set("page", "1")

	var out []CryptoAsset
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/v3/coins/markets?"+q.Encode(), nil)
			if err != nil {
				return err
			}
			req.Header.Set("Accept", "application/json")

			resp, err := s.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("crypto source returned %s", resp.Status)
			}
			out = nil
			return json.NewDecoder(resp.Body).Decode(&out)
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching crypto rates: %w", err)
	}
	return out, nil
}
