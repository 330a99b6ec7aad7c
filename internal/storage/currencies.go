package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type currencyRepo struct {
	db *gorm.DB
}

// Upsert inserts the currency or overwrites the existing row with the
// same alpha code. The alpha code itself is immutable; num code, name
// and rate are replaced, and the updated timestamp is bumped so the
// row doubles as a freshness stamp.
func (r *currencyRepo) Upsert(ctx context.Context, c *Currency) error {
	var existing Currency
	err := r.db.WithContext(ctx).Where("alpha_code = ?", c.AlphaCode).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
			return fmt.Errorf("inserting currency %s: %w", c.AlphaCode, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("looking up currency %s: %w", c.AlphaCode, err)
	}

	existing.NumCode = c.NumCode
	existing.Name = c.Name
	existing.Rate = c.Rate
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return fmt.Errorf("updating currency %s: %w", c.AlphaCode, err)
	}
	*c = existing
	return nil
}

func (r *currencyRepo) ByAlphaCode(ctx context.Context, code string) (*Currency, error) {
	var c Currency
	if err := r.db.WithContext(ctx).Where("alpha_code = ?", code).First(&c).Error; err != nil {
		return nil, notFound(err, "currency", fmt.Sprintf("currency %s is not known", code))
	}
	return &c, nil
}

func (r *currencyRepo) ByNumCode(ctx context.Context, num int) (*Currency, error) {
	var c Currency
	if err := r.db.WithContext(ctx).Where("num_code = ?", num).First(&c).Error; err != nil {
		return nil, notFound(err, "currency", fmt.Sprintf("currency with numeric code %d is not known", num))
	}
	return &c, nil
}

func (r *currencyRepo) List(ctx context.Context) ([]Currency, error) {
	var out []Currency
	if err := r.db.WithContext(ctx).Order("alpha_code").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing currencies: %w", err)
	}
	return out, nil
}

func (r *currencyRepo) SearchAlphaCode(ctx context.Context, fragment string) ([]Currency, error) {
	var out []Currency
	err := r.db.WithContext(ctx).
		Where("upper(alpha_code) LIKE upper(?)", "%"+fragment+"%").
		Order("alpha_code").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("searching currencies by code: %w", err)
	}
	return out, nil
}

func (r *currencyRepo) SearchName(ctx context.Context, fragment string) ([]Currency, error) {
	var out []Currency
	err := r.db.WithContext(ctx).
		Where("upper(name) LIKE upper(?)", "%"+fragment+"%").
		Order("alpha_code").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("searching currencies by name: %w", err)
	}
	return out, nil
}
