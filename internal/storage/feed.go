package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type feedRepo struct {
	db *gorm.DB
}

func (r *feedRepo) UpsertLink(ctx context.Context, l *FeedLink) error {
	if err := r.db.WithContext(ctx).Save(l).Error; err != nil {
		return fmt.Errorf("saving feed link: %w", err)
	}
	return nil
}

func (r *feedRepo) Link(ctx context.Context, userID string) (*FeedLink, error) {
	var l FeedLink
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&l).Error
	if err != nil {
		return nil, notFound(err, "token", "no bank feed is linked")
	}
	return &l, nil
}

// DeleteLink removes the link and all feed accounts mirrored under it.
func (r *feedRepo) DeleteLink(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&FeedAccount{}).Error; err != nil {
			return fmt.Errorf("deleting feed accounts: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&FeedLink{}).Error; err != nil {
			return fmt.Errorf("deleting feed link: %w", err)
		}
		return nil
	})
}

func (r *feedRepo) CreateAccount(ctx context.Context, a *FeedAccount) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("inserting feed account: %w", err)
	}
	return nil
}

func (r *feedRepo) Account(ctx context.Context, id string) (*FeedAccount, error) {
	var a FeedAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, notFound(err, "account", "feed account does not exist")
	}
	return &a, nil
}

func (r *feedRepo) ListAccounts(ctx context.Context, userID string) ([]FeedAccount, error) {
	var out []FeedAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing feed accounts: %w", err)
	}
	return out, nil
}

func (r *feedRepo) UpdateAccount(ctx context.Context, a *FeedAccount) error {
	if err := r.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("updating feed account: %w", err)
	}
	return nil
}
