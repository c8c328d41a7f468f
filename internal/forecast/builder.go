package forecast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BuildTable normalizes raw source entries into an evaluated forecast table.
// Entries beyond the horizon are discarded; the position in the truncated
// input becomes the day index. Numeric fields that fail to parse fall back to
// 0.0, but a missing or unparseable date aborts the build: a verdict must
// never be attached to a day we cannot identify.
func (r Rules) BuildTable(raw []RawDay) (Table, error) {
	horizon := r.HorizonDays
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	if len(raw) > horizon {
		raw = raw[:horizon]
	}

	table := make(Table, 0, len(raw))
	for i, rd := range raw {
		date, err := time.ParseInLocation(DateLayout, strings.TrimSpace(rd.Date), time.UTC)
		if err != nil {
			return nil, fmt.Errorf("forecast: entry %d has invalid date %q: %w", i, rd.Date, err)
		}

		day := Day{
			Date:     date,
			Sky:      rd.Sky,
			PrecipMM: parseMeasure(rd.Precipitation),
			WindMS:   parseMeasure(rd.Wind),
		}
		table = append(table, EvaluatedDay{
			Day:      day,
			DayIndex: i,
			Verdict:  r.Evaluate(day, i),
		})
	}

	return table, nil
}

// parseMeasure coerces a scraped numeric field. Feeds emit placeholders like
// "--" for missing values; those, and anything else unparseable or negative,
// normalize to zero.
func parseMeasure(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
