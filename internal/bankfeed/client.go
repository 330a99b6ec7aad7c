// Package bankfeed links a user's open-banking account and mirrors
// its balances and transactions into the tracker.
package bankfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/shopspring/decimal"
)

// Account is one account as reported by the provider. Balance is in
// minor units.
type Account struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	CurrencyCode int    `json:"currencyCode"`
	Balance      int64  `json:"balance"`
}

// ClientInfo is the provider's description of the linked client.
type ClientInfo struct {
	Name     string    `json:"name"`
	Accounts []Account `json:"accounts"`
}

// StatementEntry is one statement line. Time is a unix timestamp;
// Amount and Balance are in minor units.
type StatementEntry struct {
	ID          string `json:"id"`
	Time        int64  `json:"time"`
	Description string `json:"description"`
	MCC         int    `json:"mcc"`
	Amount      int64  `json:"amount"`
	Balance     int64  `json:"balance"`
}

// FromMinor converts a provider amount in minor units to its decimal
// form.
func FromMinor(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

// Client talks to a Monobank-style personal API authenticated with a
// per-user token header.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a feed client against the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ClientInfo fetches the linked client's accounts.
func (c *Client) ClientInfo(ctx context.Context, token string) (*ClientInfo, error) {
	var out ClientInfo
	err := c.get(ctx, token, "/personal/client-info", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Statement fetches statement entries for an account from the given
// time onward.
func (c *Client) Statement(ctx context.Context, token, accountID string, from time.Time) ([]StatementEntry, error) {
	var out []StatementEntry
	path := fmt.Sprintf("/personal/statement/%s/%d", accountID, from.Unix())
	if err := c.get(ctx, token, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, token, path string, out interface{}) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return err
			}
			req.Header.Set("X-Token", token)

			resp, err := c.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("bank feed returned %s", resp.Status))
			}
			return json.NewDecoder(resp.Body).Decode(out)
		},
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
}
