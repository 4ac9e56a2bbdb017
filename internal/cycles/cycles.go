// Package cycles classifies Portuguese quarter hours into the regulated
// tariff periods of each hourly option.
package cycles

import (
	"time"

	"mibel_prices/internal/calendar"
	"mibel_prices/internal/model"
)

const (
	Simples = "S"
	Vazio   = "V"
	Fora    = "F"
	Cheias  = "C"
	Ponta   = "P"
)

// window is a half-open range of minutes since midnight.
type window struct {
	from, to int
}

func hm(h, m int) int { return h*60 + m }

func in(minute int, windows ...window) bool {
	for _, w := range windows {
		if minute >= w.from && minute < w.to {
			return true
		}
	}
	return false
}

var (
	dailyVazioEnd   = hm(8, 0)
	dailyVazioStart = hm(22, 0)

	dailyPeakSummer = []window{{hm(10, 30), hm(13, 0)}, {hm(19, 30), hm(21, 0)}}
	dailyPeakWinter = []window{{hm(9, 0), hm(10, 30)}, {hm(18, 0), hm(20, 30)}}

	saturdaySummer = []window{{hm(9, 0), hm(14, 0)}, {hm(20, 0), hm(22, 0)}}
	saturdayWinter = []window{{hm(9, 30), hm(13, 0)}, {hm(18, 30), hm(22, 0)}}

	weekdayVazioEnd   = hm(7, 0)
	weekdayPeakSummer = []window{{hm(9, 15), hm(12, 15)}}
	weekdayPeakWinter = []window{{hm(9, 30), hm(12, 0)}, {hm(18, 30), hm(21, 0)}}
)

// Classify returns the tariff periods for the quarter hour starting at t.
// t is read on the Lisbon clock.
func Classify(t time.Time) model.Periods {
	lt := t.In(calendar.Lisbon)
	minute := hm(lt.Hour(), lt.Minute())
	summer := calendar.IsSummer(lt)

	p := model.Periods{Simples: Simples}

	vazio := minute >= dailyVazioStart || minute < dailyVazioEnd
	if vazio {
		p.BD = Vazio
		p.TD = Vazio
	} else {
		p.BD = Fora
		peaks := dailyPeakWinter
		if summer {
			peaks = dailyPeakSummer
		}
		p.TD = Cheias
		if in(minute, peaks...) {
			p.TD = Ponta
		}
	}

	switch lt.Weekday() {
	case time.Sunday:
		p.BS, p.TS = Vazio, Vazio
	case time.Saturday:
		windows := saturdayWinter
		if summer {
			windows = saturdaySummer
		}
		if in(minute, windows...) {
			p.BS, p.TS = Fora, Cheias
		} else {
			p.BS, p.TS = Vazio, Vazio
		}
	default:
		if minute < weekdayVazioEnd {
			p.BS, p.TS = Vazio, Vazio
			break
		}
		peaks := weekdayPeakWinter
		if summer {
			peaks = weekdayPeakSummer
		}
		p.BS = Fora
		p.TS = Cheias
		if in(minute, peaks...) {
			p.TS = Ponta
		}
	}

	return p
}
