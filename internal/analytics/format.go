package analytics

import (
	"encoding/json"
	"math"
	"strconv"

	"searchlens/internal/gsc"
)

// Percent is a click-through rate carried as a numeric fraction. Arithmetic
// always uses the fraction or Points value; the display string is derived
// from it and never parsed back.
type Percent struct {
	fraction float64
}

// NewPercent wraps a fraction in [0,1].
func NewPercent(fraction float64) Percent {
	return Percent{fraction: fraction}
}

// Fraction returns the raw fraction, e.g. 0.035.
func (p Percent) Fraction() float64 {
	return p.fraction
}

// Points returns the percentage points rounded to 1 decimal, e.g. 3.5.
func (p Percent) Points() float64 {
	return roundTo(p.fraction*100, 1)
}

// String renders the display form, e.g. "3.5%".
func (p Percent) String() string {
	return strconv.FormatFloat(p.Points(), 'f', 1, 64) + "%"
}

// MarshalJSON emits the Points value so charts receive a plain number.
func (p Percent) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Points())
}

// FormatCount converts a count-like metric to an integer. Fractional inputs
// are truncated toward zero, matching a plain numeric cast.
func FormatCount(value float64) int64 {
	return int64(value)
}

// RoundPosition rounds an average position to 1 decimal, staying numeric so
// it remains sortable and chartable.
func RoundPosition(value float64) float64 {
	return roundTo(value, 1)
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

// formatRow converts one raw analytics row into a display-ready cell.
func formatRow(row gsc.Row) *PageMetrics {
	return &PageMetrics{
		Clicks:      FormatCount(row.Clicks),
		Impressions: FormatCount(row.Impressions),
		CTR:         NewPercent(row.CTR),
		Position:    RoundPosition(row.Position),
	}
}
