package model

import (
	"math"
	"time"
)

// Missing marks a price that is not known for a period. It is written as an
// empty CSV cell.
var Missing = math.NaN()

// IsMissing reports whether v is the Missing marker.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// NewDate returns the civil date y-m-d as midnight UTC.
func NewDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the civil date of t in t's own location, as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// DateKey packs a civil date into YYYYMMDD.
func DateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// PriceRecord is one market period of the Iberian day-ahead auction. Date is
// the market (Madrid) day and Period counts quarter hours from 1; DST days
// have 92 or 100 periods.
type PriceRecord struct {
	Date    time.Time
	Period  int
	PricePT float64
	PriceES float64
}

// Key identifies a record within a price table.
type Key struct {
	Date   int
	Period int
}

func (r PriceRecord) Key() Key {
	return Key{Date: DateKey(r.Date), Period: r.Period}
}

// QuarterHour is a price record placed on the Portuguese clock.
type QuarterHour struct {
	Start   time.Time // Europe/Lisbon
	Date    time.Time // Lisbon civil date
	Period  int
	PricePT float64
	PriceES float64
}
