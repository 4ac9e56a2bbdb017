// Package futures turns OMIP futures quotes into contract tables and daily
// price projections.
package futures

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mibel_prices/internal/model"
)

// Product codes of the Iberian baseload futures.
const (
	ProductPT = "FPB"
	ProductES = "FTB"
)

var kindMarkers = []struct {
	marker string
	kind   model.ContractKind
}{
	{" D ", model.ContractDay},
	{" Wk", model.ContractWeek},
	{" M ", model.ContractMonth},
	{" Q", model.ContractQuarter},
	{" YR-", model.ContractYear},
}

var (
	yearRe    = regexp.MustCompile(`(\d{2})$`)
	dayRe     = regexp.MustCompile(`(\d{2}[A-Za-z]{3})`)
	weekRe    = regexp.MustCompile(`Wk(\d+)`)
	monthRe   = regexp.MustCompile(` M ([A-Za-z]{3})-`)
	quarterRe = regexp.MustCompile(` Q(\d)`)
)

var monthsPT = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Classify returns the delivery period kind encoded in a contract name.
func Classify(name string) (model.ContractKind, bool) {
	for _, m := range kindMarkers {
		if strings.Contains(name, m.marker) {
			return m.kind, true
		}
	}
	return "", false
}

// ParseContract decodes a quote such as "FPB M Jan-26" into a contract with
// its delivery start date.
func ParseContract(q model.Quote) (model.Contract, error) {
	kind, ok := Classify(q.Name)
	if !ok {
		return model.Contract{}, fmt.Errorf("unknown contract kind %q", q.Name)
	}
	if model.IsMissing(q.Price) {
		return model.Contract{}, fmt.Errorf("contract %q has no price", q.Name)
	}

	m := yearRe.FindStringSubmatch(q.Name)
	if m == nil {
		return model.Contract{}, fmt.Errorf("contract %q has no year suffix", q.Name)
	}
	year, _ := strconv.Atoi("20" + m[1])

	start, err := startDate(q.Name, kind, year)
	if err != nil {
		return model.Contract{}, err
	}

	return model.Contract{Name: q.Name, Kind: kind, Start: start, Price: q.Price}, nil
}

func startDate(name string, kind model.ContractKind, year int) (time.Time, error) {
	switch kind {
	case model.ContractDay:
		m := dayRe.FindStringSubmatch(name)
		if m == nil {
			return time.Time{}, fmt.Errorf("day contract %q: no date", name)
		}
		d, err := time.Parse("02Jan2006", m[1]+strconv.Itoa(year))
		if err != nil {
			return time.Time{}, fmt.Errorf("day contract %q: %w", name, err)
		}
		return d, nil

	case model.ContractWeek:
		m := weekRe.FindStringSubmatch(name)
		if m == nil {
			return time.Time{}, fmt.Errorf("week contract %q: no week number", name)
		}
		week, _ := strconv.Atoi(m[1])
		if week < 1 || week > 53 {
			return time.Time{}, fmt.Errorf("week contract %q: week %d out of range", name, week)
		}
		monday := isoWeekMonday(year, week)
		if y, w := monday.ISOWeek(); y != year || w != week {
			return time.Time{}, fmt.Errorf("week contract %q: %d has no ISO week %d", name, year, week)
		}
		return monday, nil

	case model.ContractMonth:
		m := monthRe.FindStringSubmatch(name)
		if m == nil {
			return time.Time{}, fmt.Errorf("month contract %q: no month", name)
		}
		d, err := time.Parse("Jan2006", m[1]+strconv.Itoa(year))
		if err != nil {
			return time.Time{}, fmt.Errorf("month contract %q: %w", name, err)
		}
		return d, nil

	case model.ContractQuarter:
		m := quarterRe.FindStringSubmatch(name)
		if m == nil {
			return time.Time{}, fmt.Errorf("quarter contract %q: no quarter", name)
		}
		q, _ := strconv.Atoi(m[1])
		if q < 1 || q > 4 {
			return time.Time{}, fmt.Errorf("quarter contract %q: quarter %d out of range", name, q)
		}
		return model.NewDate(year, time.Month((q-1)*3+1), 1), nil

	default:
		return model.NewDate(year, time.January, 1), nil
	}
}

// isoWeekMonday returns the Monday of ISO week w of year y.
func isoWeekMonday(y, w int) time.Time {
	// January 4th is always in week 1.
	jan4 := model.NewDate(y, time.January, 4)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDate(0, 0, -offset+(w-1)*7)
}

// Describe returns the Portuguese label of a contract delivery period.
func Describe(c model.Contract) string {
	switch c.Kind {
	case model.ContractDay:
		return c.Start.Format("02/01/2006")
	case model.ContractWeek:
		y, w := c.Start.ISOWeek()
		return fmt.Sprintf("Semana %d, %d", w, y)
	case model.ContractMonth:
		return fmt.Sprintf("%s %d", monthsPT[c.Start.Month()-1], c.Start.Year())
	case model.ContractQuarter:
		return fmt.Sprintf("%dº Trimestre %d", (int(c.Start.Month())-1)/3+1, c.Start.Year())
	case model.ContractYear:
		return fmt.Sprintf("Ano %d", c.Start.Year())
	}
	return ""
}

// Contracts parses the quotes of one product, skipping rows that cannot be
// decoded.
func Contracts(quotes []model.Quote, product string) []model.Contract {
	var out []model.Contract
	for _, q := range quotes {
		if !strings.HasPrefix(q.Name, product) {
			continue
		}
		c, err := ParseContract(q)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// TableRow is one line of a futures table in the OMIE report.
type TableRow struct {
	Contract    string
	Description string
	Value       float64
	Updated     string
}

// Table lists the contracts of one product with the report date.
func Table(quotes []model.Quote, product string, reportDate time.Time) []TableRow {
	updated := ""
	if !reportDate.IsZero() {
		updated = reportDate.Format("02/01/2006")
	}

	contracts := Contracts(quotes, product)
	rows := make([]TableRow, 0, len(contracts))
	for _, c := range contracts {
		rows = append(rows, TableRow{
			Contract:    c.Name,
			Description: Describe(c),
			Value:       c.Price,
			Updated:     updated,
		})
	}
	return rows
}
