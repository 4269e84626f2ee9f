package models

import "time"

// Sample is one observation of the two tracked series: a price index
// (series A) and a volatility index (series B). Timestamps are
// non-decreasing across successive samples.
type Sample struct {
	Timestamp time.Time
	SeriesA   float64
	SeriesB   float64
}

// Tick is a raw reading from a market feed. A feed that has no fresh
// value for a series reports it as unavailable and the collector keeps
// the last known value.
type Tick struct {
	SeriesA *float64
	SeriesB *float64
}

// Trend is a coarse direction label for a delta or percent change.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendFlat Trend = "FLAT"
	TrendNA   Trend = "NA"
)

// TrendSignal carries one classification per series.
type TrendSignal struct {
	SeriesA Trend `json:"series_a"`
	SeriesB Trend `json:"series_b"`
}

// Snapshot is the latest derived view the collector exposes to the API
// and websocket subscribers. Pointer fields are nil while the lookback
// window has not yet covered the signal horizon.
type Snapshot struct {
	Timestamp time.Time   `json:"timestamp"`
	SeriesA   float64     `json:"series_a"`
	SeriesB   float64     `json:"series_b"`
	DeltaA    *float64    `json:"delta_a,omitempty"`
	DeltaB    *float64    `json:"delta_b,omitempty"`
	PctA      *float64    `json:"pct_a,omitempty"`
	PctB      *float64    `json:"pct_b,omitempty"`
	AbsTrend  TrendSignal `json:"abs_trend"`
	PctTrend  TrendSignal `json:"pct_trend"`
}
