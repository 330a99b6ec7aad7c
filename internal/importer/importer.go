// Package importer turns heterogeneous bank export files into
// transactions against a balance. Two tabular formats are supported,
// CSV and XLSX, with column names varying by bank and language.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dsamoilenko/fintrack/internal/archive"
	"github.com/dsamoilenko/fintrack/internal/domain"
	"github.com/dsamoilenko/fintrack/internal/storage"
)

// dateFormats are tried in order when parsing a row's date cell.
var dateFormats = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Service imports bank export files.
type Service struct {
	balances     storage.BalanceStore
	transactions storage.TransactionStore
	archive      archive.Archiver
	now          func() time.Time
	log          zerolog.Logger
}

// New creates the import service. The archiver may be nil, in which
// case raw files are not retained.
func New(balances storage.BalanceStore, transactions storage.TransactionStore, arch archive.Archiver, log zerolog.Logger) *Service {
	return &Service{
		balances:     balances,
		transactions: transactions,
		archive:      arch,
		now:          time.Now,
		log:          log,
	}
}

// Import parses the named file and records its rows as transactions on
// the balance, then overwrites the balance's amount with the closing
// balance found on the first data row. The format is inferred from the
// file name only. Returns the number of transactions recorded.
func (s *Service) Import(ctx context.Context, userID, balanceID, filename string, data []byte) (int, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(data)
	case ".xlsx":
		rows, err = readXLSX(data)
	default:
		return 0, domain.Validation("file", "unsupported file format")
	}
	if err != nil {
		return 0, domain.Validation("file", err.Error())
	}
	if len(rows) < 2 {
		return 0, domain.Validation("file", "file has no data rows")
	}

	balance, err := s.balances.Get(ctx, balanceID)
	if err != nil {
		return 0, err
	}
	if balance.UserID != userID {
		return 0, domain.NotFound("balance", "balance does not exist")
	}

	idx := columnIndex(rows[0])
	if _, ok := idx[colDate]; !ok {
		return 0, domain.Validation("file", "no recognizable date column")
	}
	if _, ok := idx[colAmount]; !ok {
		return 0, domain.Validation("file", "no recognizable amount column")
	}

	var txs []*storage.Transaction
	var closing *decimal.Decimal
	for i, row := range rows[1:] {
		date, ok := parseDate(cell(row, idx, colDate))
		if !ok {
			s.log.Debug().Int("row", i+1).Msg("dropping row without a parseable date")
			continue
		}
		amount, ok := parseAmount(cell(row, idx, colAmount))
		if !ok {
			s.log.Debug().Int("row", i+1).Msg("dropping row without a parseable amount")
			continue
		}

		if closing == nil {
			if c, ok := parseAmount(cell(row, idx, colBalance)); ok {
				closing = &c
			}
		}

		txs = append(txs, &storage.Transaction{
			UserID:    userID,
			BalanceID: balance.ID,
			Name:      rowName(row, idx),
			Category:  rowCategory(row, idx),
			Date:      date,
			Amount:    amount,
		})
	}

	if err := s.transactions.CreateBatch(ctx, txs); err != nil {
		return 0, err
	}
	if closing != nil {
		if err := s.balances.OverwriteAmount(ctx, balance.ID, *closing); err != nil {
			return 0, err
		}
	}

	s.archiveFile(ctx, userID, filename, data)

	s.log.Info().
		Str("balance_id", balance.ID).
		Int("transactions", len(txs)).
		Int("dropped", len(rows)-1-len(txs)).
		Msg("imported bank file")
	return len(txs), nil
}

// archiveFile retains the raw file bytes when an archive is
// configured. Archive failures do not fail the import.
func (s *Service) archiveFile(ctx context.Context, userID, filename string, data []byte) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("imports/%s/%d-%s", userID, s.now().Unix(), filepath.Base(filename))
	if err := s.archive.Store(ctx, key, data); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("archiving imported file failed")
	}
}

func cell(row []string, idx map[string]int, column string) string {
	i, ok := idx[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func rowName(row []string, idx map[string]int) string {
	if d := cell(row, idx, colDescription); d != "" {
		return d
	}
	return "-"
}

// rowCategory prefers an explicit category column; exports that carry
// only a merchant category code get the code resolved to a label.
func rowCategory(row []string, idx map[string]int) string {
	if c := cell(row, idx, colCategory); c != "" {
		return c
	}
	if _, ok := idx[colMCC]; ok {
		return LookupMCC(cell(row, idx, colMCC))
	}
	return "-"
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseAmount reads a decimal cell, tolerating thousands spaces and a
// comma decimal separator.
func parseAmount(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, false
	}
	raw = strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(raw)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading spreadsheet rows: %w", err)
	}
	return rows, nil
}
