// Package config loads application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// DBPath is the path to the sqlite database file.
	// Environment variable: FINTRACK_DB
	DBPath string `koanf:"FINTRACK_DB"`

	// RateSourceURL is the base URL of the fiat exchange-rate source.
	// Environment variable: FINTRACK_RATE_SOURCE_URL
	RateSourceURL string `koanf:"FINTRACK_RATE_SOURCE_URL"`

	// CryptoSourceURL is the base URL of the crypto-asset rate source.
	// Environment variable: FINTRACK_CRYPTO_SOURCE_URL
	CryptoSourceURL string `koanf:"FINTRACK_CRYPTO_SOURCE_URL"`

	// BankFeedURL is the base URL of the open-banking feed.
	// Environment variable: FINTRACK_BANK_FEED_URL
	BankFeedURL string `koanf:"FINTRACK_BANK_FEED_URL"`

	// ArchiveBucket is the GCS bucket for archiving imported statement
	// files. Archiving is disabled when empty.
	// Environment variable: FINTRACK_ARCHIVE_BUCKET
	ArchiveBucket string `koanf:"FINTRACK_ARCHIVE_BUCKET"`

	// UserID identifies the acting user for CLI operations. Token issuance
	// and authentication are external to this system.
	// Environment variable: FINTRACK_USER
	UserID string `koanf:"FINTRACK_USER"`
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = "fintrack.db"
	}
	if cfg.RateSourceURL == "" {
		cfg.RateSourceURL = "https://api.monobank.ua"
	}
	if cfg.CryptoSourceURL == "" {
		cfg.CryptoSourceURL = "https://api.coingecko.com"
	}
	if cfg.BankFeedURL == "" {
		cfg.BankFeedURL = "https://api.monobank.ua"
	}

	return &cfg, nil
}
