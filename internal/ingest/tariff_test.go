package ingest

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mibel_prices/internal/calendar"
	"mibel_prices/internal/model"
)

func tariffWorkbook(t *testing.T, cycles [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName(f.GetSheetName(0), "Constantes"))
	rows := [][]any{
		{"constante", "valor_unitário"},
		{"TAR_Energia_Simples", 0.0364},
		{"Galp_Ci", 0.011},
		{"", 1},
		{"Broken", "abc"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Constantes", cell, &row))
	}

	_, err := f.NewSheet("OMIE_PERDAS_CICLOS")
	require.NoError(t, err)
	header := []any{"Data", "Hora", "Perdas", "BD", "BS", "TD", "TS"}
	require.NoError(t, f.SetSheetRow("OMIE_PERDAS_CICLOS", "A1", &header))
	for i, row := range cycles {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, f.SetSheetRow("OMIE_PERDAS_CICLOS", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestTariffWorkbookParser_Parse(t *testing.T) {
	data := tariffWorkbook(t, [][]any{
		{"2026-07-01", "00:15:00", 1.12, "V", "V", "V", "V"},
		{"2026-07-01", "12:00", "", "F", "F", "P", ""},
		// Madrid spring-forward gap: 02:15 becomes 03:00 CEST.
		{"2026-03-29", "02:15", 1.1, "V", "V", "V", "V"},
		// Madrid autumn fold is ambiguous and dropped.
		{"2026-10-25", "02:30", 1.1, "V", "V", "V", "V"},
		{"bad", "00:00", 1.1, "V", "V", "V", "V"},
	})

	cfg, err := NewTariffWorkbookParser().Parse(bytes.NewReader(data))
	require.NoError(t, err)

	consts := cfg.Constants.List()
	require.Len(t, consts, 2)
	assert.Equal(t, "TAR_Energia_Simples", consts[0].Name)
	assert.InDelta(t, 0.011, cfg.Constants.Get("Galp_Ci", 0), 1e-9)

	require.Len(t, cfg.LossCycles, 3)

	// 00:15 Madrid + 45 min = 01:00 Madrid = 00:00 Lisbon.
	first := cfg.LossCycles[0]
	assert.True(t, time.Date(2026, 6, 30, 23, 0, 0, 0, time.UTC).Equal(first.Start))
	assert.Equal(t, calendar.Lisbon, first.Start.Location())
	assert.InDelta(t, 1.12, first.Losses, 1e-9)
	assert.Equal(t, "V", first.BD)

	second := cfg.LossCycles[1]
	assert.Equal(t, "11:45", second.Start.Format("15:04"))
	assert.True(t, model.IsMissing(second.Losses))
	assert.Equal(t, "P", second.TD)
	assert.Equal(t, "", second.TS)

	gap := cfg.LossCycles[2]
	assert.True(t, time.Date(2026, 3, 29, 1, 45, 0, 0, time.UTC).Equal(gap.Start))
}

func TestParseClock(t *testing.T) {
	d, err := parseClock("0.5")
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, d)

	d, err = parseClock("13:45")
	require.NoError(t, err)
	assert.Equal(t, 13*time.Hour+45*time.Minute, d)

	_, err = parseClock("noon")
	assert.Error(t, err)
}
