package app

import (
	"strconv"

	"slow_travel/internal/domain"
)

// Money carries one amount in both currencies the agency quotes in.
type Money struct {
	MAD float64 `json:"mad"`
	EUR float64 `json:"eur"`
}

func (m Money) Add(o Money) Money { return Money{MAD: m.MAD + o.MAD, EUR: m.EUR + o.EUR} }

// Quote is the price breakdown of a day trip booking.
type Quote struct {
	Base   Money `json:"base"`
	Addons Money `json:"addons"`
	Total  Money `json:"total"`
}

// PriceTrip prices a day trip. The base price is per car and does not depend on
// guests; every add-on is charged per person.
func PriceTrip(trip domain.DayTrip, addons []domain.Addon, guests int) Quote {
	q := Quote{Base: Money{MAD: trip.PriceMAD, EUR: trip.PriceEUR}}
	for _, a := range addons {
		q.Addons = q.Addons.Add(Money{
			MAD: a.PriceMAD * float64(guests),
			EUR: a.PriceEUR * float64(guests),
		})
	}
	q.Total = q.Base.Add(q.Addons)
	return q
}

// FormatAmount renders an amount the way the payment provider expects it: two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
