package report

import (
	"io"

	"mibel_prices/internal/production"
)

// WriteProduction writes the REN production mix table.
func WriteProduction(w io.Writer, t production.Table) error {
	return table(w, 0, t.Header, t.Rows)
}
