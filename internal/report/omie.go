package report

import (
	"io"
	"time"

	"mibel_prices/internal/calendar"
	"mibel_prices/internal/futures"
	"mibel_prices/internal/omiereport"
)

var (
	omieHeader    = []string{"dia", "hora", "intervalo", "Simples", "BD", "BS", "TD", "TS", "preco_pt", "preco_es"}
	updatesHeader = []string{"chave", "valor"}
	futuresHeader = []string{"Contrato", "Descricao", "Valor", "Data de Atualizacao"}
)

func dayLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

// WriteOMIEReport writes the quarter-hour table followed by the update dates
// and, when present, the futures tables.
func WriteOMIEReport(w io.Writer, rep omiereport.Report) error {
	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, []string{
			dayLabel(r.Date),
			calendar.EndLabel(r.Start),
			calendar.Interval(r.Start),
			r.Periods.Simples,
			r.Periods.BD,
			r.Periods.BS,
			r.Periods.TD,
			r.Periods.TS,
			Fixed(r.PricePT, 2),
			Fixed(r.PriceES, 2),
		})
	}
	if err := table(w, 0, omieHeader, rows); err != nil {
		return err
	}

	if err := marker(w, 0, "TABELA_ATUALIZACOES"); err != nil {
		return err
	}
	if err := table(w, 0, updatesHeader, [][]string{
		{"Data_Valores_OMIE", dayLabel(rep.HistoryDate)},
		{"Data_Valores_OMIP", dayLabel(rep.OMIPDate)},
	}); err != nil {
		return err
	}

	for _, ft := range []struct {
		name string
		rows []futures.TableRow
	}{
		{"TABELA_FUTUROS_PT", rep.FuturesPT},
		{"TABELA_FUTUROS_ES", rep.FuturesES},
	} {
		if len(ft.rows) == 0 {
			continue
		}
		if err := marker(w, 0, ft.name); err != nil {
			return err
		}
		if err := writeFutures(w, ft.rows); err != nil {
			return err
		}
	}
	return nil
}

func writeFutures(w io.Writer, rows []futures.TableRow) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Contract, r.Description, Fixed(r.Value, 2), r.Updated})
	}
	return table(w, 0, futuresHeader, out)
}
