package report

import (
	"bytes"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mibel_prices/internal/calendar"
	"mibel_prices/internal/futures"
	"mibel_prices/internal/model"
	"mibel_prices/internal/omiereport"
	"mibel_prices/internal/production"
	"mibel_prices/internal/tariff"
)

func assertCSV(t *testing.T, want, got string) {
	t.Helper()
	if diff := cmp.Diff(strings.Split(want, "\n"), strings.Split(got, "\n")); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestFixed(t *testing.T) {
	tests := []struct {
		v      float64
		places int32
		want   string
	}{
		{55.5, 2, "55.50"},
		{0.125, 2, "0.12"},
		{0.375, 2, "0.38"},
		{2.675, 2, "2.67"},
		{-1.005, 2, "-1.00"},
		{1.005, 2, "1.00"},
		{0.123456, 5, "0.12346"},
		{math.NaN(), 2, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fixed(tt.v, tt.places))
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "out.csv")

	err := WriteFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("a,b\n"))
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, BOM+"a,b\n", string(data))
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHistory(&buf, []model.PriceRecord{
		{Date: model.NewDate(2026, 1, 1), Period: 1, PriceES: 80.1, PricePT: 80},
		{Date: model.NewDate(2026, 1, 1), Period: 2, PriceES: model.Missing, PricePT: 79.456},
	})
	require.NoError(t, err)

	assertCSV(t, "Data,Hora,Preco_ES,Preco_PT\n"+
		"2026-01-01,1,80.10,80.00\n"+
		"2026-01-01,2,,79.46\n", buf.String())
}

func TestWriteOMIEReport(t *testing.T) {
	start := time.Date(2026, 1, 15, 23, 45, 0, 0, calendar.Lisbon)
	rep := omiereport.Report{
		Year: 2026,
		Rows: []omiereport.Row{{
			QuarterHour: model.QuarterHour{
				Start:   start,
				Date:    model.NewDate(2026, 1, 15),
				Period:  96,
				PricePT: 55.5,
				PriceES: model.Missing,
			},
			Periods: model.Periods{Simples: "S", BD: "V", BS: "V", TD: "V", TS: "V"},
		}},
		HistoryDate: model.NewDate(2026, 1, 15),
		FuturesPT: []futures.TableRow{
			{Contract: "FPB M Feb-26", Description: "Fevereiro 2026", Value: 70.25, Updated: "14/01/2026"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOMIEReport(&buf, rep))

	assertCSV(t, "dia,hora,intervalo,Simples,BD,BS,TD,TS,preco_pt,preco_es\n"+
		"15/01/2026,23:59,[23:45-00:00[,S,V,V,V,V,55.50,\n"+
		"\n"+
		"TABELA_ATUALIZACOES\n"+
		"chave,valor\n"+
		"Data_Valores_OMIE,15/01/2026\n"+
		"Data_Valores_OMIP,\n"+
		"\n"+
		"TABELA_FUTUROS_PT\n"+
		"Contrato,Descricao,Valor,Data de Atualizacao\n"+
		"FPB M Feb-26,Fevereiro 2026,70.25,14/01/2026\n", buf.String())
}

func TestWriteHourlyPrices(t *testing.T) {
	day := model.NewDate(2026, 1, 15)
	quarters := []tariff.Row{{
		Day:      day,
		Retailer: "Galp Plano Dinâmico",
		Option:   tariff.OptSimples,
		Interval: "[00:00-00:15[",
		Value:    0.17,
		OMIE:     0.1,
		TAR:      0.05,
		OMIETar:  model.Missing,
	}}
	hourly := []tariff.HourlyRow{{
		Day:      day,
		Retailer: "Galp Plano Dinâmico",
		Option:   tariff.OptSimples,
		Label:    "[00:00-01:00[",
		OMIE:     0.1,
		Value:    0.17,
	}}
	constants := []model.Constant{{Name: "Galp_Ci", Value: 0.01}, {Name: "EDP_H_K1", Value: 1}}

	var buf bytes.Buffer
	require.NoError(t, WriteHourlyPrices(&buf, quarters, hourly, constants))

	h := strings.Repeat(",", 10)
	c := strings.Repeat(",", 18)
	assertCSV(t, "dia,tarifario,opcao,intervalo,col,omie,tar,omieTar\n"+
		"15/01/2026,Galp Plano Dinâmico,Simples,[00:00-00:15[,0.17000,0.10000,0.05000,\n"+
		"\n"+
		h+"TABELA_HORARIA\n"+
		h+"CSV_Dia,CSV_Tarifario,CSV_Opcao,CSV_Hora,CSV_OMIE_Medio_MWh,CSV_Preco_Medio_kWh\n"+
		h+"15/01/2026,Galp Plano Dinâmico,Simples,[00:00-01:00[,100.00,0.17000\n"+
		"\n"+
		c+"TABELA_CONSTANTES\n"+
		c+"constante,valor_unitário\n"+
		c+"Galp_Ci,0.01\n"+
		c+"EDP_H_K1,1\n", buf.String())
}

func TestWriteProduction(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProduction(&buf, production.Table{
		Header: []string{"dia", "hora", "intervalo", "Eólica"},
		Rows:   [][]string{{"01/01/2026", "00:15", "[00:00-00:15[", "1234,5"}},
	})
	require.NoError(t, err)

	assertCSV(t, "dia,hora,intervalo,Eólica\n"+
		"01/01/2026,00:15,[00:00-00:15[,\"1234,5\"\n", buf.String())
}
