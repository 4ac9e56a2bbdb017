package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"mibel_prices/internal/model"
)

// PriceParser reads market prices from a source and returns records.
type PriceParser interface {
	Parse(r io.Reader) ([]model.PriceRecord, error)
}

var (
	_ PriceParser = (*AcumParser)(nil)
	_ PriceParser = (*IndicadoresParser)(nil)
	_ PriceParser = (*MarginalParser)(nil)
	_ PriceParser = (*HistoryParser)(nil)
	_ PriceParser = (*LegacyWorkbookParser)(nil)
)

var errEmptyNumber = errors.New("empty number")

// parseNumber accepts both decimal point and decimal comma.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errEmptyNumber
	}
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

// parsePrice returns model.Missing for empty cells.
func parsePrice(s string) (float64, error) {
	v, err := parseNumber(s)
	if errors.Is(err, errEmptyNumber) {
		return model.Missing, nil
	}
	return v, err
}

// stripBOM drops a leading UTF-8 byte order mark.
func stripBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

func newSemicolonReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// columnIndex maps required column names to their position in header.
func columnIndex(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q in header %q", col, header)
		}
	}
	return idx, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
