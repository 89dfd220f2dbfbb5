package models

import "time"

// PriceBar is one trading day of a price history.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// History is the daily price bars of one symbol in date order.
type History struct {
	Symbol string     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Point is one (date, value) sample of a chart series.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series returns the chart series selected by value, with dates formatted as YYYY-MM-DD.
func (h *History) Series(value func(PriceBar) float64) []Point {
	out := make([]Point, len(h.Bars))
	for i, b := range h.Bars {
		out[i] = Point{Date: b.Date.Format("2006-01-02"), Value: value(b)}
	}
	return out
}

// CloseSeries returns the closing prices.
func (h *History) CloseSeries() []Point {
	return h.Series(func(b PriceBar) float64 { return b.Close })
}

// VolumeSeries returns the traded volumes.
func (h *History) VolumeSeries() []Point {
	return h.Series(func(b PriceBar) float64 { return float64(b.Volume) })
}
