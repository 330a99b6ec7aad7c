package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
)

// MonobankSource fetches fiat currency pairs from the Monobank public
// currency endpoint.
type MonobankSource struct {
	baseURL string
	client  *http.Client
}

// NewMonobankSource creates a fiat source against the given base URL.
func NewMonobankSource(baseURL string) *MonobankSource {
	return &MonobankSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Rates fetches the full pair list. Transient failures are retried a
// couple of times before giving up.
func (s *MonobankSource) Rates(ctx context.Context) ([]FiatRate, error) {
	var out []FiatRate
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/bank/currency", nil)
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := s.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("rate source returned %s", resp.Status)
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
		return nil, fmt.Errorf("fetching fiat rates: %w", err)
	}
	return out, nil
}
