package forecast

import "strings"

// Regime selects which checks apply to a horizon day.
type Regime int

const (
	// RegimeStandard days are governed by the numeric thresholds only.
	RegimeStandard Regime = iota
	// RegimeCaution days additionally fail when the sky text mentions rain.
	RegimeCaution
)

// Rules holds the playability thresholds. Numeric comparisons are inclusive:
// a day sitting exactly on a limit is unplayable. The caution window is
// expressed as zero-based day indices because upstream sources have disagreed
// about where it sits; deployments can move it without touching the evaluator.
type Rules struct {
	PrecipLimitMM float64
	WindLimitMS   float64
	CautionStart  int // zero-based, inclusive
	CautionEnd    int // zero-based, inclusive
	RainTokens    []string
	HorizonDays   int
}

// DefaultRules returns the course's standing rule set: 1.0 mm / 5.0 m/s
// limits, caution window over days 11-13 of the horizon.
func DefaultRules() Rules {
	return Rules{
		PrecipLimitMM: 1.0,
		WindLimitMS:   5.0,
		CautionStart:  10,
		CautionEnd:    12,
		RainTokens:    []string{"雨", "rain"},
		HorizonDays:   DefaultHorizonDays,
	}
}

// Regime maps a day index to its rule regime.
func (r Rules) Regime(dayIndex int) Regime {
	if dayIndex >= r.CautionStart && dayIndex <= r.CautionEnd {
		return RegimeCaution
	}
	return RegimeStandard
}

// Evaluate classifies one forecast day. Checks run in a fixed order so the
// reason text is reproducible: precipitation, wind, then the sky-text scan on
// caution days. Every failed check contributes its tag.
func (r Rules) Evaluate(day Day, dayIndex int) Verdict {
	var reasons []string

	if day.PrecipMM >= r.PrecipLimitMM {
		reasons = append(reasons, ReasonPrecipitation)
	}
	if day.WindMS >= r.WindLimitMS {
		reasons = append(reasons, ReasonWind)
	}
	if r.Regime(dayIndex) == RegimeCaution && hasAnyFold(day.Sky, r.RainTokens) {
		reasons = append(reasons, ReasonRainText)
	}

	return Verdict{Playable: len(reasons) == 0, Reasons: reasons}
}

// hasAnyFold reports whether s contains any of the tokens, ignoring case.
func hasAnyFold(s string, tokens []string) bool {
	ls := strings.ToLower(s)
	for _, tok := range tokens {
		if tok != "" && strings.Contains(ls, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}
