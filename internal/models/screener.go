package models

import "math"

// Screener index universes.
const (
	IndexSP500     = "sp500"
	IndexNasdaq100 = "nasdaq100"
)

// SectorAny disables the sector filter.
const SectorAny = "any"

// Bounds is an optional inclusive range on one fundamental.
type Bounds struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Empty reports whether neither bound is set.
func (b Bounds) Empty() bool {
	return b.Min == nil && b.Max == nil
}

// ScreenerRequest is the body of POST /api/screener.
type ScreenerRequest struct {
	Index   string            `json:"index"`
	Sector  string            `json:"sector"`
	Filters map[string]Bounds `json:"filters"`
}

// ScreenerFilter describes a filter as entered by the user. Unit converts
// the entered number into the engine's unit.
type ScreenerFilter struct {
	Key   string
	Label string
	Unit  float64
}

// ScreenerFilters lists the supported filters in display order.
var ScreenerFilters = []ScreenerFilter{
	{Key: "marketCap", Label: "Market cap (x100M)", Unit: 1e8},
	{Key: "trailingPE", Label: "Trailing P/E", Unit: 1},
	{Key: "dividendYield", Label: "Dividend yield %", Unit: 0.01},
	{Key: "returnOnEquity", Label: "ROE %", Unit: 0.01},
	{Key: "revenueGrowth", Label: "Revenue growth %", Unit: 0.01},
	{Key: "earningsGrowth", Label: "Earnings growth %", Unit: 0.01},
}

// NewScreenerRequest converts user-unit bounds into a request. Unknown keys
// and bounds with neither side set are dropped; non-finite inputs are ignored.
func NewScreenerRequest(index, sector string, input map[string]Bounds) ScreenerRequest {
	if index != IndexNasdaq100 {
		index = IndexSP500
	}
	if sector == "" {
		sector = SectorAny
	}
	req := ScreenerRequest{Index: index, Sector: sector, Filters: map[string]Bounds{}}
	for _, f := range ScreenerFilters {
		b, ok := input[f.Key]
		if !ok {
			continue
		}
		scaled := Bounds{Min: scale(b.Min, f.Unit), Max: scale(b.Max, f.Unit)}
		if !scaled.Empty() {
			req.Filters[f.Key] = scaled
		}
	}
	return req
}

func scale(v *float64, unit float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v * unit
	return &out
}
