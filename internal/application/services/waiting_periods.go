package services

import (
	"math"
	"regexp"
	"strings"
)

// Three overlapping shapes: "24 months", "24-months", and the explicit
// "waiting period of 24 months". Matches from every shape are collected
// as-is; duplicates are kept and the caller reduces the list.
var waitingPeriodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*(days?|months?|years?|yrs?)`),
	regexp.MustCompile(`(\d+)-?(days?|months?|years?|yrs?)`),
	regexp.MustCompile(`waiting\s+period\s+(?:of\s+)?(\d+)\s*(days?|months?|years?|yrs?)`),
}

// ExtractWaitingPeriods extracts every temporal mention from the text,
// normalized to months. It never fails; unusable input yields an empty list.
// Non-positive values are discarded.
func ExtractWaitingPeriods(text string) []int {
	if text == "" {
		return nil
	}

	lowered := strings.ToLower(text)

	var periods []int
	for _, re := range waitingPeriodPatterns {
		for _, match := range re.FindAllStringSubmatch(lowered, -1) {
			num, ok := parseInt(match[1])
			if !ok || num <= 0 {
				continue
			}
			periods = append(periods, monthsFromUnit(num, match[2]))
		}
	}

	return periods
}

// monthsFromUnit normalizes a numeric duration to months: years multiply by
// twelve, days divide by thirty (rounded, floored at one month), anything
// else is already months.
func monthsFromUnit(num int, unit string) int {
	switch {
	case strings.HasPrefix(unit, "y"):
		return num * 12
	case strings.HasPrefix(unit, "d"):
		months := int(math.Round(float64(num) / 30.0))
		if months < 1 {
			months = 1
		}
		return months
	default:
		return num
	}
}
