package futures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mibel_prices/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want model.ContractKind
		ok   bool
	}{
		{"FPB D Tu10Mar-26", model.ContractDay, true},
		{"FPB Wk11-26", model.ContractWeek, true},
		{"FPB M Apr-26", model.ContractMonth, true},
		{"FPB Q3-26", model.ContractQuarter, true},
		{"FPB YR-27", model.ContractYear, true},
		{"FPB WE 14Mar-26", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseContract(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		desc  string
	}{
		{"FPB D Tu10Mar-26", model.NewDate(2026, time.March, 10), "10/03/2026"},
		{"FPB Wk11-26", model.NewDate(2026, time.March, 9), "Semana 11, 2026"},
		{"FPB Wk01-26", model.NewDate(2025, time.December, 29), "Semana 1, 2026"},
		{"FPB Wk53-26", model.NewDate(2026, time.December, 28), "Semana 53, 2026"},
		{"FPB M Apr-26", model.NewDate(2026, time.April, 1), "Abril 2026"},
		{"FPB M Mar-27", model.NewDate(2027, time.March, 1), "Março 2027"},
		{"FPB Q3-26", model.NewDate(2026, time.July, 1), "3º Trimestre 2026"},
		{"FPB YR-27", model.NewDate(2027, time.January, 1), "Ano 2027"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseContract(model.Quote{Name: tt.name, Price: 55.5})
			require.NoError(t, err)
			assert.Equal(t, tt.start, c.Start)
			assert.Equal(t, tt.desc, Describe(c))
			assert.InDelta(t, 55.5, c.Price, 1e-9)
		})
	}
}

func TestParseContract_Errors(t *testing.T) {
	_, err := ParseContract(model.Quote{Name: "FPB Q3-26", Price: model.Missing})
	assert.Error(t, err)

	_, err = ParseContract(model.Quote{Name: "FPB M Xyz-26", Price: 10})
	assert.Error(t, err)

	_, err = ParseContract(model.Quote{Name: "FPB Q9-26", Price: 10})
	assert.Error(t, err)

	// 2025 has 52 ISO weeks.
	_, err = ParseContract(model.Quote{Name: "FPB Wk53-25", Price: 10})
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	quotes := []model.Quote{
		{Name: "FPB M Jan-26", Price: 60},
		{Name: "FTB M Jan-26", Price: 61},
		{Name: "FPB Q2-26", Price: model.Missing},
		{Name: "Some header", Price: 1},
	}

	rows := Table(quotes, ProductPT, model.NewDate(2025, time.December, 19))
	require.Len(t, rows, 1)
	assert.Equal(t, TableRow{
		Contract:    "FPB M Jan-26",
		Description: "Janeiro 2026",
		Value:       60,
		Updated:     "19/12/2025",
	}, rows[0])

	es := Table(quotes, ProductES, time.Time{})
	require.Len(t, es, 1)
	assert.Equal(t, "", es[0].Updated)
}

func TestProjection_Hierarchy(t *testing.T) {
	contracts := Contracts([]model.Quote{
		{Name: "FPB D Tu06Jan-26", Price: 80},
		{Name: "FPB Wk02-26", Price: 70},
		{Name: "FPB M Jan-26", Price: 60},
		{Name: "FPB M Jan-26", Price: 999},
		{Name: "FPB Q1-26", Price: 50},
	}, ProductPT)

	real := map[int]float64{
		20260105: 90,
		20260107: model.Missing,
	}
	p := NewProjection(2026, real, contracts)

	tests := []struct {
		date time.Time
		want float64
		ok   bool
	}{
		{model.NewDate(2026, time.January, 2), 70, true},
		{model.NewDate(2026, time.January, 5), 90, true},
		{model.NewDate(2026, time.January, 6), 80, true},
		{model.NewDate(2026, time.January, 7), 70, true},
		{model.NewDate(2026, time.January, 11), 70, true},
		{model.NewDate(2026, time.January, 20), 60, true},
		{model.NewDate(2026, time.February, 10), 50, true},
		{model.NewDate(2026, time.April, 1), 0, false},
		{model.NewDate(2025, time.December, 31), 0, false},
		{model.NewDate(2028, time.January, 1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			got, ok := p.Price(tt.date)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestProjection_FillsAheadOfListedPeriods(t *testing.T) {
	contracts := Contracts([]model.Quote{
		{Name: "FPB Wk43-26", Price: 80},
		{Name: "FPB M Nov-26", Price: 90},
	}, ProductPT)
	p := NewProjection(2026, map[int]float64{20261014: 60}, contracts)

	tests := []struct {
		date time.Time
		want float64
	}{
		{model.NewDate(2026, time.October, 14), 60},
		{model.NewDate(2026, time.October, 15), 80},
		{model.NewDate(2026, time.October, 18), 80},
		{model.NewDate(2026, time.October, 19), 80},
		{model.NewDate(2026, time.October, 25), 80},
		{model.NewDate(2026, time.October, 26), 90},
		{model.NewDate(2026, time.October, 31), 90},
		{model.NewDate(2026, time.November, 30), 90},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			got, ok := p.Price(tt.date)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, ok := p.Price(model.NewDate(2026, time.December, 1))
	assert.False(t, ok)
}
