package ingest

import (
	"fmt"
	"io"
	"strings"
	"time"

	"mibel_prices/internal/model"
)

const renTimeColumn = "Data e Hora"

// RENParser parses the REN data hub production breakdown export.
//
// Expected format (two preamble lines before the header):
//
//	Repartição da Produção;
//	;
//	Data e Hora;Hídrica;Eólica;Solar;...
//	2026-01-01 00:00:00;1234,5;2345,6;0;...
type RENParser struct{}

func NewRENParser() *RENParser {
	return &RENParser{}
}

func (p *RENParser) Parse(r io.Reader) (model.ProductionTable, error) {
	cr := newSemicolonReader(stripBOM(r))

	var (
		header  []string
		timeCol = -1
		lineNum int
	)
	for timeCol < 0 {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			return model.ProductionTable{}, fmt.Errorf("no %q header found", renTimeColumn)
		}
		if err != nil {
			return model.ProductionTable{}, fmt.Errorf("reading REN line %d: %w", lineNum, err)
		}
		for i, h := range record {
			if strings.TrimSpace(h) == renTimeColumn {
				header, timeCol = record, i
				break
			}
		}
	}

	var table model.ProductionTable
	var keep []int
	for i, h := range header {
		if i == timeCol {
			continue
		}
		h = strings.TrimSpace(h)
		if h == "" && i == len(header)-1 {
			// trailing separator
			continue
		}
		table.Columns = append(table.Columns, h)
		keep = append(keep, i)
	}

	for {
		lineNum++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.ProductionTable{}, fmt.Errorf("reading REN line %d: %w", lineNum, err)
		}

		ts, err := time.Parse("2006-01-02 15:04:05", field(record, timeCol))
		if err != nil {
			continue
		}
		values := make([]string, len(keep))
		for j, i := range keep {
			values[j] = field(record, i)
		}
		table.Rows = append(table.Rows, model.ProductionRow{Time: ts, Values: values})
	}

	return table, nil
}
