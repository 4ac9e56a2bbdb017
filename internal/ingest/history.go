package ingest

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mibel_prices/internal/model"
)

// History column names, shared with the writer.
const (
	ColDate    = "Data"
	ColPeriod  = "Hora"
	ColPriceES = "Preco_ES"
	ColPricePT = "Preco_PT"
)

// HistoryParser parses the persisted MIBEL price history.
//
// Expected format (columns in any order, optional UTF-8 BOM):
//
//	Data,Hora,Preco_ES,Preco_PT
//	2026-01-01,1,85.00,85.00
type HistoryParser struct{}

func NewHistoryParser() *HistoryParser {
	return &HistoryParser{}
}

func (p *HistoryParser) Parse(r io.Reader) ([]model.PriceRecord, error) {
	cr := newSemicolonReader(stripBOM(r))
	cr.Comma = ','

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history header: %w", err)
	}
	idx, err := columnIndex(header, ColDate, ColPeriod)
	if err != nil {
		return nil, err
	}
	esCol, ptCol := -1, -1
	if i, ok := idx[ColPriceES]; ok {
		esCol = i
	}
	if i, ok := idx[ColPricePT]; ok {
		ptCol = i
	}

	var records []model.PriceRecord
	lineNum := 1
	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading history line %d: %w", lineNum, err)
		}

		date, err := parseDay(field(record, idx[ColDate]))
		if err != nil {
			continue
		}
		period, err := parsePeriod(field(record, idx[ColPeriod]))
		if err != nil {
			continue
		}
		es, err := parsePrice(field(record, esCol))
		if err != nil {
			continue
		}
		pt, err := parsePrice(field(record, ptCol))
		if err != nil {
			continue
		}

		records = append(records, model.PriceRecord{Date: date, Period: period, PricePT: pt, PriceES: es})
	}

	return records, nil
}

// ReadHistoryFile parses the history CSV at path. A missing file is reported
// with an error satisfying errors.Is(err, os.ErrNotExist).
func ReadHistoryFile(path string) ([]model.PriceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := NewHistoryParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// LegacyWorkbookParser reads the first sheet of the spreadsheet the history
// was kept in before it moved to CSV.
type LegacyWorkbookParser struct{}

func NewLegacyWorkbookParser() *LegacyWorkbookParser {
	return &LegacyWorkbookParser{}
}

func (p *LegacyWorkbookParser) Parse(r io.Reader) ([]model.PriceRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	idx, err := columnIndex(rows[0], ColDate, ColPeriod, ColPricePT, ColPriceES)
	if err != nil {
		return nil, err
	}

	var records []model.PriceRecord
	for _, row := range rows[1:] {
		date, err := parseCellDate(field(row, idx[ColDate]))
		if err != nil {
			continue
		}
		period, err := parsePeriod(field(row, idx[ColPeriod]))
		if err != nil {
			continue
		}
		pt, err := parsePrice(field(row, idx[ColPricePT]))
		if err != nil {
			continue
		}
		es, err := parsePrice(field(row, idx[ColPriceES]))
		if err != nil {
			continue
		}
		records = append(records, model.PriceRecord{Date: date, Period: period, PricePT: pt, PriceES: es})
	}
	return records, nil
}

// ReadLegacyWorkbookFile parses the legacy spreadsheet at path.
func ReadLegacyWorkbookFile(path string) ([]model.PriceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := NewLegacyWorkbookParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// parseDay reads "YYYY-MM-DD", ignoring any time part.
func parseDay(s string) (time.Time, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	return time.Parse("2006-01-02", s)
}

// parsePeriod accepts integral values written as floats ("12.0").
func parsePeriod(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("period %q is not integral", s)
	}
	return int(f), nil
}

// parseCellDate accepts an Excel serial date or a text date.
func parseCellDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return model.DateOf(t), nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", "02-01-2006"} {
		if len(s) >= len(layout) {
			if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
