package report

import (
	"io"
	"strconv"

	"mibel_prices/internal/model"
)

var historyHeader = []string{"Data", "Hora", "Preco_ES", "Preco_PT"}

// WriteHistory writes the MIBEL history table. Records are written in the
// order given.
func WriteHistory(w io.Writer, records []model.PriceRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Date.Format("2006-01-02"),
			strconv.Itoa(r.Period),
			Fixed(r.PriceES, 2),
			Fixed(r.PricePT, 2),
		})
	}
	return table(w, 0, historyHeader, rows)
}
