package sm2

import "fmt"

// IntervalLabel formats an interval in days as a human-readable duration.
// Boundaries use integer division (7-day weeks, 30-day months, 365-day
// years) so repeated formatting never drifts.
func IntervalLabel(days int) string {
	switch {
	case days <= 0:
		return "New"
	case days == 1:
		return "1 day"
	case days < 7:
		return fmt.Sprintf("%d days", days)
	case days < 30:
		return plural(days/7, "week")
	case days < 365:
		return plural(days/30, "month")
	default:
		return plural(days/365, "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
