package form

import (
	"strconv"
	"strings"
)

// ParseOutcome carries a coerced numeric value together with whether the
// raw input actually parsed. Malformed or absent numerics degrade to zero
// rather than aborting the pipeline; Defaulted lets callers and tests tell
// a real zero from a failed parse.
type ParseOutcome struct {
	Value     float64
	Defaulted bool
}

// ParseNumber coerces a raw form value to float64. The forms use a comma
// decimal separator depending on the operator's locale, so commas are
// accepted as decimal points.
func ParseNumber(raw string) ParseOutcome {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ParseOutcome{Defaulted: true}
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ParseOutcome{Defaulted: true}
	}
	return ParseOutcome{Value: v}
}
