package notify

import (
	"fmt"
	"strings"

	"golfwatch/internal/forecast"
)

const rowDateLayout = "2006-01-02 (Mon)"

// FormatReservationAlert builds the subject and body announcing the verdict
// for the reserved day.
func FormatReservationAlert(courseName string, day forecast.EvaluatedDay) (string, string) {
	subject := fmt.Sprintf("%s %s: %s",
		courseName, day.Date.Format(forecast.DateLayout), day.Verdict.Glyph())

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Reserved date: %s\n", day.Date.Format(rowDateLayout)))
	b.WriteString(fmt.Sprintf("Sky: %s\n", day.Sky))
	b.WriteString(fmt.Sprintf("Precipitation: %.1f mm\n", day.PrecipMM))
	b.WriteString(fmt.Sprintf("Wind: %.1f m/s\n", day.WindMS))
	b.WriteString(fmt.Sprintf("Verdict: %s\n", day.Verdict.Glyph()))
	b.WriteString(fmt.Sprintf("Reason: %s\n", day.Verdict.ReasonText()))

	return subject, b.String()
}

// FormatTableReport renders the whole evaluated horizon, one line per day.
func FormatTableReport(courseName string, table forecast.Table) (string, string) {
	subject := fmt.Sprintf("%s forecast report", courseName)

	var b strings.Builder
	for _, d := range table {
		b.WriteString(fmt.Sprintf("%s: %s, %.1f mm, %.1f m/s → %s (%s)\n",
			d.Date.Format(rowDateLayout),
			d.Sky,
			d.PrecipMM,
			d.WindMS,
			d.Verdict.Glyph(),
			d.Verdict.ReasonText(),
		))
	}

	return subject, b.String()
}
