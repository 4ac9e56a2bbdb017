// Package production reshapes the REN production mix into the layout of the
// OMIE quarter-hour report.
package production

import (
	"mibel_prices/internal/calendar"
	"mibel_prices/internal/model"
)

var leading = []string{"dia", "hora", "intervalo"}

// Table is a header and string rows ready to be written.
type Table struct {
	Header []string
	Rows   [][]string
}

// Transform adds the day, end time and interval labels in front of the
// source columns. Source columns sharing a label name are dropped.
func Transform(src model.ProductionTable) Table {
	var keep []int
	t := Table{Header: append([]string(nil), leading...)}
	for i, c := range src.Columns {
		if c == "dia" || c == "hora" || c == "intervalo" {
			continue
		}
		keep = append(keep, i)
		t.Header = append(t.Header, c)
	}

	t.Rows = make([][]string, 0, len(src.Rows))
	for _, r := range src.Rows {
		row := make([]string, 0, len(t.Header))
		row = append(row,
			r.Time.Format("02/01/2006"),
			calendar.EndLabel(r.Time),
			calendar.Interval(r.Time),
		)
		for _, i := range keep {
			v := ""
			if i < len(r.Values) {
				v = r.Values[i]
			}
			row = append(row, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
