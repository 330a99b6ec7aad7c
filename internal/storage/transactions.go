package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepo struct {
	db *gorm.DB
}

func (r *transactionRepo) Create(ctx context.Context, t *Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Omit("Balance").Create(t).Error; err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) CreateBatch(ctx context.Context, ts []*Transaction) error {
	if len(ts) == 0 {
		return nil
	}
	for _, t := range ts {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
	}
	if err := r.db.WithContext(ctx).Omit("Balance").CreateInBatches(ts, 200).Error; err != nil {
		return fmt.Errorf("inserting transactions: %w", err)
	}
	return nil
}

func (r *transactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	var t Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		return nil, notFound(err, "transaction", "transaction does not exist")
	}
	return &t, nil
}

var sortColumns = map[string]string{
	"date":   "date",
	"amount": "amount",
}

func (r *transactionRepo) ListByBalance(ctx context.Context, balanceID string, sort Sort) ([]Transaction, error) {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = "date"
	}
	direction := "desc"
	if sort.Order == "asc" {
		direction = "asc"
	}

	var out []Transaction
	err := r.db.WithContext(ctx).
		Where("balance_id = ?", balanceID).
		Order(column + " " + direction).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	return out, nil
}

// ListByUserSince returns the user's transactions dated after since,
// with the owning balance and its currency preloaded for rate lookups.
func (r *transactionRepo) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]Transaction, error) {
	var out []Transaction
	err := r.db.WithContext(ctx).
		Preload("Balance").
		Preload("Balance.Currency").
		Where("user_id = ? AND date > ?", userID, since).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing transactions since %s: %w", since.Format(time.RFC3339), err)
	}
	return out, nil
}

func (r *transactionRepo) Update(ctx context.Context, t *Transaction) error {
	if err := r.db.WithContext(ctx).Omit("Balance").Save(t).Error; err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Transaction{}).Error; err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}
	return nil
}

func (r *transactionRepo) HasExternalID(ctx context.Context, externalID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("external_id = ?", externalID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking external id: %w", err)
	}
	return count > 0, nil
}
