package storage

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dsamoilenko/fintrack/internal/domain"
)

// DB bundles the concrete sqlite-backed stores.
type DB struct {
	gorm *gorm.DB
}

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	if err := db.AutoMigrate(&Currency{}, &Balance{}, &Transaction{}, &FeedLink{}, &FeedAccount{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{gorm: db}, nil
}

// Currencies returns the currency store.
func (d *DB) Currencies() CurrencyStore {
	return &currencyRepo{db: d.gorm}
}

// Balances returns the balance store.
func (d *DB) Balances() BalanceStore {
	return &balanceRepo{db: d.gorm}
}

// Transactions returns the transaction store.
func (d *DB) Transactions() TransactionStore {
	return &transactionRepo{db: d.gorm}
}

// Feed returns the bank-feed store.
func (d *DB) Feed() FeedStore {
	return &feedRepo{db: d.gorm}
}

// notFound maps gorm's record-not-found onto the domain error model.
func notFound(err error, field, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(field, message)
	}
	return err
}
