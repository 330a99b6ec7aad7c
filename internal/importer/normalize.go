package importer

import "strings"

// Canonical column names a bank export row is mapped onto. Exports
// come in two known shapes with headers varying by bank and language;
// everything funnels through this set.
const (
	colDate        = "date"
	colAmount      = "amount"
	colDescription = "description"
	colCategory    = "category"
	colMCC         = "mcc"
	colBalance     = "balance"
)

// headerAliases maps normalized headers onto canonical columns.
// Covers the English and Ukrainian variants of the known exports.
var headerAliases = map[string]string{
	"date":                  colDate,
	"date_and_time":         colDate,
	"дата":                  colDate,
	"дата_i_час_операції":   colDate,
	"дата_та_час_операції":  colDate,
	"amount":                colAmount,
	"сума":                  colAmount,
	"сума_в_валюті_картки":  colAmount,
	"card_currency_amount":  colAmount,
	"description":           colDescription,
	"details":               colDescription,
	"деталі":                colDescription,
	"деталі_операції":       colDescription,
	"опис":                  colDescription,
	"опис_операції":         colDescription,
	"category":              colCategory,
	"категорія":             colCategory,
	"mcc":                   colMCC,
	"код_mcc":               colMCC,
	"balance":               colBalance,
	"залишок":               colBalance,
	"баланс":                colBalance,
	"залишок_після_операції": colBalance,
}

// headerPrefixes resolves the long compound headers some exports use,
// e.g. "сума_в_валюті_рахунку_(uah)".
var headerPrefixes = []struct {
	prefix    string
	canonical string
}{
	{"дата", colDate},
	{"сума", colAmount},
	{"card_currency_amount", colAmount},
	{"деталі", colDescription},
	{"опис", colDescription},
	{"залишок", colBalance},
	{"balance", colBalance},
}

// normalizeHeader lower-cases a raw header and collapses whitespace
// runs into single underscores.
func normalizeHeader(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(raw))), "_")
}

// canonicalColumn maps a raw header onto its canonical column name.
// Returns false for headers the importer does not care about.
func canonicalColumn(raw string) (string, bool) {
	h := normalizeHeader(raw)
	if c, ok := headerAliases[h]; ok {
		return c, true
	}
	for _, p := range headerPrefixes {
		if strings.HasPrefix(h, p.prefix) {
			return p.canonical, true
		}
	}
	return "", false
}

// columnIndex maps canonical column names to their positions in the
// header row. Later duplicates do not override earlier columns.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int)
	for i, raw := range header {
		c, ok := canonicalColumn(raw)
		if !ok {
			continue
		}
		if _, seen := idx[c]; !seen {
			idx[c] = i
		}
	}
	return idx
}
