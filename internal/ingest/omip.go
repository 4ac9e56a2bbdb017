package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mibel_prices/internal/model"
)

const (
	omipSheet    = "OMIP Daily"
	omipDateCell = "E5"
	omipFirstRow = 11
	omipNameCol  = 1  // B
	omipPriceCol = 10 // K
)

// OMIPReport is the content of the OMIP end-of-day workbook.
type OMIPReport struct {
	// Date is the trading day of the report; zero when the cell is unreadable.
	Date   time.Time
	Quotes []model.Quote
}

// OMIPParser parses omipdaily.xlsx.
type OMIPParser struct{}

func NewOMIPParser() *OMIPParser {
	return &OMIPParser{}
}

func (p *OMIPParser) Parse(r io.Reader) (OMIPReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return OMIPReport{}, fmt.Errorf("opening OMIP workbook: %w", err)
	}
	defer f.Close()

	var report OMIPReport

	raw, err := f.GetCellValue(omipSheet, omipDateCell, excelize.Options{RawCellValue: true})
	if err != nil {
		return OMIPReport{}, fmt.Errorf("reading report date: %w", err)
	}
	if d, err := parseCellDate(raw); err == nil {
		report.Date = d
	}

	rows, err := f.GetRows(omipSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return OMIPReport{}, fmt.Errorf("reading sheet %q: %w", omipSheet, err)
	}

	for i := omipFirstRow - 1; i < len(rows); i++ {
		name := field(rows[i], omipNameCol)
		if name == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(field(rows[i], omipPriceCol)), 64)
		if err != nil {
			price = model.Missing
		}
		report.Quotes = append(report.Quotes, model.Quote{Name: name, Price: price})
	}

	return report, nil
}
