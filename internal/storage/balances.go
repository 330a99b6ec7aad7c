package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type balanceRepo struct {
	db *gorm.DB
}

func (r *balanceRepo) Create(ctx context.Context, b *Balance) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Omit("Currency").Create(b).Error; err != nil {
		return fmt.Errorf("inserting balance: %w", err)
	}
	return nil
}

func (r *balanceRepo) Get(ctx context.Context, id string) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).Preload("Currency").Where("id = ?", id).First(&b).Error
	if err != nil {
		return nil, notFound(err, "balance", "balance does not exist")
	}
	return &b, nil
}

func (r *balanceRepo) ListByUser(ctx context.Context, userID string) ([]Balance, error) {
	var out []Balance
	err := r.db.WithContext(ctx).
		Preload("Currency").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing balances: %w", err)
	}
	return out, nil
}

func (r *balanceRepo) Update(ctx context.Context, b *Balance) error {
	if err := r.db.WithContext(ctx).Omit("Currency").Save(b).Error; err != nil {
		return fmt.Errorf("updating balance: %w", err)
	}
	return nil
}

// ApplyDelta re-reads the balance row and adds delta to its cached
// amount. The fresh read is load-bearing: an update that touches the
// same balance twice (decrement old amount, increment new) must see
// the first write before applying the second.
func (r *balanceRepo) ApplyDelta(ctx context.Context, id string, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b Balance
		if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
			return notFound(err, "balance", "balance does not exist")
		}
		b.Amount = b.Amount.Add(delta)
		if err := tx.Omit("Currency").Save(&b).Error; err != nil {
			return fmt.Errorf("applying delta to balance: %w", err)
		}
		return nil
	})
}

// OverwriteAmount sets the cached amount outright. Used by the
// importer's closing-balance policy, never by the ledger.
func (r *balanceRepo) OverwriteAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&Balance{}).Where("id = ?", id).Update("amount", amount)
	if res.Error != nil {
		return fmt.Errorf("overwriting balance amount: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "balance", "balance does not exist")
	}
	return nil
}

// Delete removes the balance and cascades to its transactions.
func (r *balanceRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("balance_id = ?", id).Delete(&Transaction{}).Error; err != nil {
			return fmt.Errorf("deleting balance transactions: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&Balance{}).Error; err != nil {
			return fmt.Errorf("deleting balance: %w", err)
		}
		return nil
	})
}
