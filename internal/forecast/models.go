package forecast

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used by the feed, the persisted
// settings and the API.
const DateLayout = "2006-01-02"

// DefaultHorizonDays is the length of the forecast horizon: the feed covers
// the 14 days starting the day after the query date.
const DefaultHorizonDays = 14

// Reason tags, listed in the order the checks run.
const (
	ReasonPrecipitation = "precipitation_exceeded"
	ReasonWind          = "wind_exceeded"
	ReasonRainText      = "rain_text_detected"
)

// RawDay is one entry as delivered by the forecast source boundary. Numeric
// fields arrive as strings because the upstream table is scraped text;
// coercion happens in BuildTable.
type RawDay struct {
	Date          string `json:"date"`
	Weekday       string `json:"weekday,omitempty"`
	Sky           string `json:"weather"`
	Precipitation string `json:"precipitation"`
	Wind          string `json:"wind"`
}

// Day is one normalized forecast day.
type Day struct {
	Date     time.Time `json:"date"`
	Sky      string    `json:"sky"`
	PrecipMM float64   `json:"precipMm"`
	WindMS   float64   `json:"windMs"`
}

// Verdict classifies a single forecast day. Reasons is empty when the day is
// playable and otherwise lists every failed check in evaluation order.
type Verdict struct {
	Playable bool     `json:"playable"`
	Reasons  []string `json:"reasons,omitempty"`
}

// Glyph renders the verdict the way the report table shows it.
func (v Verdict) Glyph() string {
	if v.Playable {
		return "○ playable"
	}
	return "× unplayable"
}

// ReasonText joins the reason tags with a stable separator.
func (v Verdict) ReasonText() string {
	if len(v.Reasons) == 0 {
		return "within limits"
	}
	return strings.Join(v.Reasons, "/")
}

// EvaluatedDay pairs a forecast day with its verdict and position in the
// horizon (0 = first day after the query date).
type EvaluatedDay struct {
	Day
	DayIndex int     `json:"dayIndex"`
	Verdict  Verdict `json:"verdict"`
}

// Table is an ordered, evaluated forecast horizon. Dates are unique and
// chronological; the slice index equals the day index.
type Table []EvaluatedDay
