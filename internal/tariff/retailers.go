// Package tariff computes the quarter-hour and hourly energy prices of the
// Portuguese indexed retail tariffs.
package tariff

import "mibel_prices/internal/model"

// Retailers lists the indexed tariffs in report order.
var Retailers = []string{
	"Alfa Power Index BTN",
	"Coopérnico Base",
	"Coopérnico GO",
	"EDP Indexada Horária",
	"EZU Tarifa Indexada",
	"Galp Plano Dinâmico",
	"G9 Smart Dynamic",
	"MeoEnergia Tarifa Variável",
	"Repsol Leve Sem Mais",
	"Iberdrola - Simples Indexado Dinâmico",
	"Plenitude - Tendência",
}

// simplesOnly tariffs are not offered with multi-period options.
var simplesOnly = map[string]bool{
	"Iberdrola - Simples Indexado Dinâmico": true,
	"Plenitude - Tendência":                 true,
}

const tse = "Financiamento_TSE"

// RetailerPrice returns the energy price in €/kWh before access tariffs.
// omie is the market price in €/kWh and losses the loss factor.
func RetailerPrice(retailer string, omie, losses float64, c model.Constants) float64 {
	k := func(name string) float64 { return c.Get(name, 0) }

	switch retailer {
	case "Alfa Power Index BTN":
		return (omie+k("Alfa_CGS"))*losses + k("Alfa_K") + k(tse)
	case "Coopérnico Base":
		return (omie+k("Coop_CS_CR")+k("Coop_K"))*losses + k(tse)
	case "Coopérnico GO":
		return (omie+k("Coop_CS_CR")+k("Coop_K"))*losses + k("Coop_GO") + k(tse)
	case "EDP Indexada Horária":
		return omie*losses*c.Get("EDP_H_K1", 1) + k("EDP_H_K2")
	case "EZU Tarifa Indexada":
		return (omie+k("EZU_K")+k("EZU_CGS"))*losses + k(tse)
	case "Galp Plano Dinâmico":
		return (omie + k("Galp_Ci")) * losses
	case "G9 Smart Dynamic":
		return omie*k("G9_FA")*losses + k("G9_CGS") + k("G9_AC")
	case "MeoEnergia Tarifa Variável":
		return (omie + k("Meo_K")) * losses
	case "Repsol Leve Sem Mais":
		return omie*losses*k("Repsol_FA") + k("Repsol_Q_Tarifa") + k(tse)
	case "Iberdrola - Simples Indexado Dinâmico":
		return omie*losses + k("Iberdrola_Dinamico_Q") + k("Iberdrola_mFRR")
	case "Plenitude - Tendência":
		return (omie+k("Plenitude_CGS")+k("Plenitude_GDOs"))*losses + k("Plenitude_Fee")
	}
	return omie * losses
}

var usedConstants = map[string]bool{
	"Alfa_CGS": true, "Alfa_K": true,
	"Coop_CS_CR": true, "Coop_K": true, "Coop_GO": true,
	"EDP_H_K1": true, "EDP_H_K2": true,
	"EZU_K": true, "EZU_CGS": true,
	"Galp_Ci": true,
	"G9_FA": true, "G9_CGS": true, "G9_AC": true,
	"Iberdrola_Dinamico_Q": true, "Iberdrola_mFRR": true,
	"Meo_K": true,
	"Repsol_FA": true, "Repsol_Q_Tarifa": true,
	"Plenitude_CGS": true, "Plenitude_GDOs": true, "Plenitude_Fee": true,
	tse: true,

	tarSimples: true,
	tarBiVazio: true, tarBiForaVazio: true,
	tarTriVazio: true, tarTriCheias: true, tarTriPonta: true,
	tarTri27Vazio: true, tarTri27Cheias: true, tarTri27Ponta: true,
}

// UsedConstants returns the constants referenced by the price formulas, in
// workbook order.
func UsedConstants(c model.Constants) []model.Constant {
	var out []model.Constant
	for _, k := range c.List() {
		if usedConstants[k.Name] {
			out = append(out, k)
		}
	}
	return out
}
