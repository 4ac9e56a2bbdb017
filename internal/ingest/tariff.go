package ingest

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mibel_prices/internal/calendar"
	"mibel_prices/internal/model"
)

const (
	constantsSheet   = "Constantes"
	lossCyclesSheet  = "OMIE_PERDAS_CICLOS"
	lossCyclesOffset = 45 * time.Minute
)

// TariffConfig is the content of the tariff simulator workbook.
type TariffConfig struct {
	Constants  model.Constants
	LossCycles []model.LossCycle
}

// TariffWorkbookParser reads the constants and the per-quarter-hour losses
// and tariff cycles from the simulator workbook.
//
// OMIE_PERDAS_CICLOS rows are written on the Madrid clock; each row is
// placed 45 minutes later and rounded to the quarter hour.
type TariffWorkbookParser struct{}

func NewTariffWorkbookParser() *TariffWorkbookParser {
	return &TariffWorkbookParser{}
}

func (p *TariffWorkbookParser) Parse(r io.Reader) (TariffConfig, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return TariffConfig{}, fmt.Errorf("opening tariff workbook: %w", err)
	}
	defer f.Close()

	constants, err := parseConstants(f)
	if err != nil {
		return TariffConfig{}, err
	}
	cycles, err := parseLossCycles(f)
	if err != nil {
		return TariffConfig{}, err
	}
	return TariffConfig{Constants: constants, LossCycles: cycles}, nil
}

func parseConstants(f *excelize.File) (model.Constants, error) {
	rows, err := f.GetRows(constantsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Constants{}, fmt.Errorf("reading sheet %q: %w", constantsSheet, err)
	}
	if len(rows) == 0 {
		return model.Constants{}, fmt.Errorf("sheet %q is empty", constantsSheet)
	}
	idx, err := columnIndex(rows[0], "constante", "valor_unitário")
	if err != nil {
		return model.Constants{}, fmt.Errorf("sheet %q: %w", constantsSheet, err)
	}

	var list []model.Constant
	for _, row := range rows[1:] {
		name := field(row, idx["constante"])
		if name == "" {
			continue
		}
		v, err := parseNumber(field(row, idx["valor_unitário"]))
		if err != nil {
			continue
		}
		list = append(list, model.Constant{Name: name, Value: v})
	}
	return model.NewConstants(list), nil
}

func parseLossCycles(f *excelize.File) ([]model.LossCycle, error) {
	rows, err := f.GetRows(lossCyclesSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", lossCyclesSheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", lossCyclesSheet)
	}
	idx, err := columnIndex(rows[0], "Data", "Hora", "Perdas", "BD", "BS", "TD", "TS")
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", lossCyclesSheet, err)
	}

	var out []model.LossCycle
	for _, row := range rows[1:] {
		day, err := parseCellDate(field(row, idx["Data"]))
		if err != nil {
			continue
		}
		clock, err := parseClock(field(row, idx["Hora"]))
		if err != nil {
			continue
		}
		start, ok := calendar.Localize(day.Add(clock), calendar.Madrid)
		if !ok {
			continue
		}

		losses, err := parsePrice(field(row, idx["Perdas"]))
		if err != nil {
			losses = model.Missing
		}

		out = append(out, model.LossCycle{
			Start:  start.Add(lossCyclesOffset).Round(calendar.Quarter).In(calendar.Lisbon),
			Losses: losses,
			BD:     field(row, idx["BD"]),
			BS:     field(row, idx["BS"]),
			TD:     field(row, idx["TD"]),
			TS:     field(row, idx["TS"]),
		})
	}
	return out, nil
}

// parseClock reads a time of day written as text ("01:15", "01:15:00") or
// as an Excel day fraction.
func parseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if frac, err := strconv.ParseFloat(s, 64); err == nil {
		_, frac = math.Modf(frac)
		secs := math.Round(frac * 24 * 3600)
		return time.Duration(secs) * time.Second, nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognised time %q", s)
}
