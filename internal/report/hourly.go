package report

import (
	"io"

	"github.com/shopspring/decimal"

	"mibel_prices/internal/model"
	"mibel_prices/internal/tariff"
)

// Column offsets of the side tables in precos-horarios.csv.
const (
	hourlyOffset    = 10
	constantsOffset = 18
)

var (
	quarterHeader   = []string{"dia", "tarifario", "opcao", "intervalo", "col", "omie", "tar", "omieTar"}
	hourlyHeader    = []string{"CSV_Dia", "CSV_Tarifario", "CSV_Opcao", "CSV_Hora", "CSV_OMIE_Medio_MWh", "CSV_Preco_Medio_kWh"}
	constantsHeader = []string{"constante", "valor_unitário"}
)

// WriteHourlyPrices writes the quarter-hour table with the hourly averages
// and the tariff constants beside it.
func WriteHourlyPrices(w io.Writer, quarters []tariff.Row, hourly []tariff.HourlyRow, constants []model.Constant) error {
	rows := make([][]string, 0, len(quarters))
	for _, r := range quarters {
		rows = append(rows, []string{
			dayLabel(r.Day),
			r.Retailer,
			r.Option,
			r.Interval,
			Fixed(r.Value, 5),
			Fixed(r.OMIE, 5),
			Fixed(r.TAR, 5),
			Fixed(r.OMIETar, 5),
		})
	}
	if err := table(w, 0, quarterHeader, rows); err != nil {
		return err
	}

	if err := marker(w, hourlyOffset, "TABELA_HORARIA"); err != nil {
		return err
	}
	rows = rows[:0]
	for _, r := range hourly {
		omie := r.OMIE
		if !model.IsMissing(omie) {
			omie *= 1000
		}
		rows = append(rows, []string{
			dayLabel(r.Day),
			r.Retailer,
			r.Option,
			r.Label,
			Fixed(omie, 2),
			Fixed(r.Value, 5),
		})
	}
	if err := table(w, hourlyOffset, hourlyHeader, rows); err != nil {
		return err
	}

	if err := marker(w, constantsOffset, "TABELA_CONSTANTES"); err != nil {
		return err
	}
	rows = rows[:0]
	for _, k := range constants {
		v := ""
		if !model.IsMissing(k.Value) {
			v = decimal.NewFromFloat(k.Value).String()
		}
		rows = append(rows, []string{k.Name, v})
	}
	return table(w, constantsOffset, constantsHeader, rows)
}
