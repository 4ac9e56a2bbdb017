package tariff

import (
	"mibel_prices/internal/cycles"
	"mibel_prices/internal/model"
)

// Hourly options in report order.
const (
	OptSimples      = "Simples"
	OptBiDaily      = "Bi-horário - Ciclo Diário"
	OptBiWeekly     = "Bi-horário - Ciclo Semanal"
	OptTriDaily     = "Tri-horário - Ciclo Diário"
	OptTriWeekly    = "Tri-horário - Ciclo Semanal"
	OptTriDaily27   = "Tri-horário > 20.7 kVA - Ciclo Diário"
	OptTriWeekly27  = "Tri-horário > 20.7 kVA - Ciclo Semanal"
	unknownOptOrder = 99
)

var optionOrder = map[string]int{
	OptSimples:     0,
	OptBiDaily:     1,
	OptBiWeekly:    2,
	OptTriDaily:    3,
	OptTriWeekly:   4,
	OptTriDaily27:  5,
	OptTriWeekly27: 6,
}

// OptionOrder returns the report position of an option.
func OptionOrder(name string) int {
	if o, ok := optionOrder[name]; ok {
		return o
	}
	return unknownOptOrder
}

// Access tariff (TAR) energy constants.
const (
	tarSimples     = "TAR_Energia_Simples"
	tarBiVazio     = "TAR_Energia_Bi_Vazio"
	tarBiForaVazio = "TAR_Energia_Bi_ForaVazio"
	tarTriVazio    = "TAR_Energia_Tri_Vazio"
	tarTriCheias   = "TAR_Energia_Tri_Cheias"
	tarTriPonta    = "TAR_Energia_Tri_Ponta"
	tarTri27Vazio  = "TAR_Energia_Tri_27.6_Vazio"
	tarTri27Cheias = "TAR_Energia_Tri_27.6_Cheias"
	tarTri27Ponta  = "TAR_Energia_Tri_27.6_Ponta"
)

func biTAR(period string) string {
	if period == cycles.Vazio {
		return tarBiVazio
	}
	return tarBiForaVazio
}

func triTAR(period string) string {
	switch period {
	case cycles.Vazio:
		return tarTriVazio
	case cycles.Cheias:
		return tarTriCheias
	case cycles.Ponta:
		return tarTriPonta
	}
	return ""
}

func tri27TAR(period string) string {
	switch period {
	case cycles.Vazio:
		return tarTri27Vazio
	case cycles.Cheias:
		return tarTri27Cheias
	case cycles.Ponta:
		return tarTri27Ponta
	}
	return ""
}

// choice is an option applicable to one quarter hour with its TAR key.
type choice struct {
	option string
	tarKey string
}

// choices lists the options available for a retailer in a quarter hour.
// Multi-period options exist only when the workbook defines the cycle.
func choices(retailer string, lc model.LossCycle) []choice {
	out := []choice{{OptSimples, tarSimples}}
	if simplesOnly[retailer] {
		return out
	}
	if lc.BD != "" {
		out = append(out, choice{OptBiDaily, biTAR(lc.BD)})
	}
	if lc.BS != "" {
		out = append(out, choice{OptBiWeekly, biTAR(lc.BS)})
	}
	if lc.TD != "" {
		out = append(out,
			choice{OptTriDaily, triTAR(lc.TD)},
			choice{OptTriDaily27, tri27TAR(lc.TD)},
		)
	}
	if lc.TS != "" {
		out = append(out,
			choice{OptTriWeekly, triTAR(lc.TS)},
			choice{OptTriWeekly27, tri27TAR(lc.TS)},
		)
	}
	return out
}
