package models

import "time"

// Bar represents one OHLCV bar for a symbol.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// BarSeries is a timestamp-ordered sequence of bars for one symbol.
// Ordering is an invariant every rolling computation relies on.
type BarSeries []Bar

// Closes returns the close column.
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// LastClose returns the close of the most recent bar, or 0 for an empty series.
func (s BarSeries) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Tick is a single streamed trade print.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// Returns computes simple returns close[i]/close[i-1]-1, one per bar
// after the first.
func (s BarSeries) Returns() []float64 {
	if len(s) < 2 {
		return nil
	}
	out := make([]float64, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Close
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, s[i].Close/prev-1)
	}
	return out
}
