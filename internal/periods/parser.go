package periods

import (
	"fmt"
	"strconv"
	"strings"
)

// YearOverYearSelector is the selector value for year-over-year comparison.
const YearOverYearSelector = "YoY"

// Selector describes which kind of window plan was requested: a fixed number
// of days per window, or year-over-year mode.
type Selector struct {
	Days         int
	YearOverYear bool
}

func (s Selector) String() string {
	if s.YearOverYear {
		return YearOverYearSelector
	}
	return strconv.Itoa(s.Days)
}

// ParseSelector parses a period selector. Accepted values are a positive
// number of days ("30", "60", "90", "180", "360", ...) or "YoY" in any case.
func ParseSelector(value string) (Selector, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Selector{}, NewInvalidArgumentError("period selector is required")
	}

	if strings.EqualFold(trimmed, YearOverYearSelector) {
		return Selector{YearOverYear: true}, nil
	}

	days, err := strconv.Atoi(trimmed)
	if err != nil {
		return Selector{}, NewInvalidArgumentError(fmt.Sprintf("unknown period selector %q", value))
	}
	if days < 1 {
		return Selector{}, NewInvalidArgumentError(fmt.Sprintf("period days must be positive, got %d", days))
	}

	return Selector{Days: days}, nil
}
