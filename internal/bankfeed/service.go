package bankfeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dsamoilenko/fintrack/internal/domain"
	"github.com/dsamoilenko/fintrack/internal/storage"
)

// InitialWindow is how far back statements reach when an account is
// first watched.
const InitialWindow = 31 * 24 * time.Hour

// SyncInterval is how old a link's last sync may get before a balance
// listing triggers a re-import.
const SyncInterval = 6 * time.Hour

// FeedAPI is the provider surface the service depends on.
type FeedAPI interface {
	ClientInfo(ctx context.Context, token string) (*ClientInfo, error)
	Statement(ctx context.Context, token, accountID string, from time.Time) ([]StatementEntry, error)
}

// Service links a provider account and mirrors its data.
type Service struct {
	feed         storage.FeedStore
	balances     storage.BalanceStore
	transactions storage.TransactionStore
	currencies   storage.CurrencyStore
	api          FeedAPI
	now          func() time.Time
	log          zerolog.Logger
}

// New creates the bank feed service.
func New(feed storage.FeedStore, balances storage.BalanceStore, transactions storage.TransactionStore, currencies storage.CurrencyStore, api FeedAPI, log zerolog.Logger) *Service {
	return &Service{
		feed:         feed,
		balances:     balances,
		transactions: transactions,
		currencies:   currencies,
		api:          api,
		now:          time.Now,
		log:          log,
	}
}

// Link stores the user's feed token and mirrors the provider accounts.
// Any previous link and its mirrored accounts are replaced. A token
// the provider rejects surfaces as a validation error.
func (s *Service) Link(ctx context.Context, userID, token string) ([]storage.FeedAccount, error) {
	info, err := s.api.ClientInfo(ctx, token)
	if err != nil {
		return nil, domain.Validation("token", "invalid token")
	}

	if err := s.feed.DeleteLink(ctx, userID); err != nil {
		return nil, err
	}
	link := &storage.FeedLink{UserID: userID, Token: token, LastSyncedAt: s.now()}
	if err := s.feed.UpsertLink(ctx, link); err != nil {
		return nil, err
	}

	for _, a := range info.Accounts {
		currency, err := s.currencies.ByNumCode(ctx, a.CurrencyCode)
		if err != nil {
			s.log.Warn().Int("currency_code", a.CurrencyCode).Str("account", a.ID).
				Msg("skipping feed account with unknown currency")
			continue
		}
		acct := &storage.FeedAccount{
			UserID:     userID,
			ExternalID: a.ID,
			Name:       accountName(a, currency.AlphaCode),
			CurrencyID: currency.ID,
			Amount:     FromMinor(a.Balance),
		}
		if err := s.feed.CreateAccount(ctx, acct); err != nil {
			return nil, err
		}
	}
	return s.feed.ListAccounts(ctx, userID)
}

// Unlink removes the feed link and its mirrored accounts, deleting the
// balances created for watched accounts first.
func (s *Service) Unlink(ctx context.Context, userID string) error {
	accounts, err := s.feed.ListAccounts(ctx, userID)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.BalanceID == nil {
			continue
		}
		if err := s.balances.Delete(ctx, *a.BalanceID); err != nil {
			return err
		}
	}
	return s.feed.DeleteLink(ctx, userID)
}

// Accounts lists the user's mirrored feed accounts.
func (s *Service) Accounts(ctx context.Context, userID string) ([]storage.FeedAccount, error) {
	return s.feed.ListAccounts(ctx, userID)
}

// Watch starts or stops tracking a feed account. Watching creates a
// real balance from the account and imports its trailing statement
// history; unwatching deletes that balance along with its imported
// transactions.
func (s *Service) Watch(ctx context.Context, userID, accountID string, watch bool) error {
	acct, err := s.feed.Account(ctx, accountID)
	if err != nil {
		return err
	}
	if acct.UserID != userID {
		return domain.NotFound("account", "feed account does not exist")
	}
	if acct.Watch == watch {
		return nil
	}

	if !watch {
		if acct.BalanceID != nil {
			if err := s.balances.Delete(ctx, *acct.BalanceID); err != nil {
				return err
			}
		}
		acct.Watch = false
		acct.BalanceID = nil
		return s.feed.UpdateAccount(ctx, acct)
	}

	link, err := s.feed.Link(ctx, userID)
	if err != nil {
		return err
	}

	balance := &storage.Balance{
		UserID:     userID,
		Name:       acct.Name,
		CurrencyID: acct.CurrencyID,
		Amount:     acct.Amount,
	}
	if err := s.balances.Create(ctx, balance); err != nil {
		return err
	}

	if err := s.importStatement(ctx, link.Token, acct, balance.ID, s.now().Add(-InitialWindow)); err != nil {
		return err
	}

	acct.Watch = true
	acct.BalanceID = &balance.ID
	return s.feed.UpdateAccount(ctx, acct)
}

// SyncIfStale re-imports watched accounts when the link has not been
// synced within the sync interval. Provider failures are logged and
// swallowed so a balance listing still works offline.
func (s *Service) SyncIfStale(ctx context.Context, userID string) error {
	link, err := s.feed.Link(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if s.now().Sub(link.LastSyncedAt) < SyncInterval {
		return nil
	}

	if err := s.sync(ctx, userID, link); err != nil {
		s.log.Warn().Err(err).Msg("bank feed sync failed")
		return nil
	}

	link.LastSyncedAt = s.now()
	return s.feed.UpsertLink(ctx, link)
}

func (s *Service) sync(ctx context.Context, userID string, link *storage.FeedLink) error {
	info, err := s.api.ClientInfo(ctx, link.Token)
	if err != nil {
		return domain.Upstream("feed", err)
	}
	latest := make(map[string]int64, len(info.Accounts))
	for _, a := range info.Accounts {
		latest[a.ID] = a.Balance
	}

	accounts, err := s.feed.ListAccounts(ctx, userID)
	if err != nil {
		return err
	}
	for i := range accounts {
		acct := &accounts[i]
		if !acct.Watch || acct.BalanceID == nil {
			continue
		}
		if err := s.importStatement(ctx, link.Token, acct, *acct.BalanceID, link.LastSyncedAt); err != nil {
			return err
		}

		balance, ok := latest[acct.ExternalID]
		if !ok {
			continue
		}
		amount := FromMinor(balance)
		acct.Amount = amount
		if err := s.feed.UpdateAccount(ctx, acct); err != nil {
			return err
		}
		if err := s.balances.OverwriteAmount(ctx, *acct.BalanceID, amount); err != nil {
			return err
		}
	}
	return nil
}

// importStatement mirrors provider statement entries as transactions.
// Entries already imported are recognized by their provider id and
// skipped, keeping re-imports idempotent.
func (s *Service) importStatement(ctx context.Context, token string, acct *storage.FeedAccount, balanceID string, from time.Time) error {
	entries, err := s.api.Statement(ctx, token, acct.ExternalID, from)
	if err != nil {
		return domain.Upstream("feed", err)
	}

	imported := 0
	for _, e := range entries {
		seen, err := s.transactions.HasExternalID(ctx, e.ID)
		if err != nil {
			return err
		}
		if seen {
			continue
		}

		externalID := e.ID
		tx := &storage.Transaction{
			UserID:     acct.UserID,
			BalanceID:  balanceID,
			Name:       e.Description,
			Category:   "-",
			Date:       time.Unix(e.Time, 0),
			Amount:     FromMinor(e.Amount),
			ExternalID: &externalID,
		}
		if err := s.transactions.Create(ctx, tx); err != nil {
			return err
		}
		imported++
	}

	s.log.Debug().Str("account", acct.ExternalID).Int("imported", imported).
		Int("skipped", len(entries)-imported).Msg("imported feed statement")
	return nil
}

// accountName builds a display name for a mirrored account from its
// provider type and currency.
func accountName(a Account, alphaCode string) string {
	if a.Type == "" {
		return fmt.Sprintf("Account (%s)", alphaCode)
	}
	return fmt.Sprintf("%s (%s)", a.Type, alphaCode)
}
