package model

import "time"

// Periods holds the tariff period code of every cycle for one quarter hour.
//
//	Simples: S
//	BD, BS:  V (vazio) or F (fora de vazio)
//	TD, TS:  V (vazio), C (cheias) or P (ponta)
type Periods struct {
	Simples string
	BD      string
	BS      string
	TD      string
	TS      string
}

type ContractKind string

const (
	ContractDay     ContractKind = "Dia"
	ContractWeek    ContractKind = "Semana"
	ContractMonth   ContractKind = "Mês"
	ContractQuarter ContractKind = "Trimestre"
	ContractYear    ContractKind = "Ano"
)

// Contract is one OMIP futures product, e.g. "FPB M Jan-26".
type Contract struct {
	Name  string
	Kind  ContractKind
	Start time.Time
	Price float64
}

// Constant is one entry of the tariff workbook "Constantes" sheet.
type Constant struct {
	Name  string
	Value float64
}

// Constants keeps sheet order alongside a lookup index.
type Constants struct {
	list  []Constant
	index map[string]int
}

func NewConstants(list []Constant) Constants {
	c := Constants{index: make(map[string]int, len(list))}
	for _, k := range list {
		if i, ok := c.index[k.Name]; ok {
			c.list[i].Value = k.Value
			continue
		}
		c.index[k.Name] = len(c.list)
		c.list = append(c.list, k)
	}
	return c
}

// Get returns the named constant or def when absent.
func (c Constants) Get(name string, def float64) float64 {
	if i, ok := c.index[name]; ok {
		return c.list[i].Value
	}
	return def
}

func (c Constants) List() []Constant {
	out := make([]Constant, len(c.list))
	copy(out, c.list)
	return out
}

// LossCycle is one row of the OMIE_PERDAS_CICLOS sheet, placed on an absolute
// quarter-hour instant. Empty cycle codes mean the cycle is not defined.
type LossCycle struct {
	Start  time.Time
	Losses float64
	BD     string
	BS     string
	TD     string
	TS     string
}

// Quote is a raw futures row as listed in the OMIP daily report.
type Quote struct {
	Name  string
	Price float64
}

// ProductionRow is one quarter hour of the REN production breakdown. Values
// keep the source text in column order.
type ProductionRow struct {
	Time   time.Time
	Values []string
}

type ProductionTable struct {
	Columns []string
	Rows    []ProductionRow
}
