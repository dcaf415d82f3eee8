// Package period computes leaderboard period key suffixes. Write and read
// paths must share these functions: a key produced at commit time has to match
// the key queried later in the same period.
package period

import (
	"fmt"
	"math"
	"time"
)

// WeekNumber returns the week-of-year used in weekly leaderboard keys.
// Note: this is day-of-year arithmetic offset by Jan-1's weekday, not ISO-8601
// week numbering. Changing it would orphan every existing weekly key.
func WeekNumber(t time.Time) int {
	firstDay := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	pastDays := t.Sub(firstDay).Hours() / 24
	return int(math.Ceil((pastDays + float64(firstDay.Weekday()) + 1) / 7))
}

// Quarter returns the calendar quarter (1-4).
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// Daily returns the YYYY-MM-DD suffix.
func Daily(t time.Time) string {
	return t.Format("2006-01-02")
}

// Weekly returns the YYYY-Wnn suffix.
func Weekly(t time.Time) string {
	return fmt.Sprintf("%d-W%02d", t.Year(), WeekNumber(t))
}

// Monthly returns the YYYY-MM suffix.
func Monthly(t time.Time) string {
	return t.Format("2006-01")
}

// Quarterly returns the YYYY-Qn suffix.
func Quarterly(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), Quarter(t))
}

// Yearly returns the YYYY suffix.
func Yearly(t time.Time) string {
	return t.Format("2006")
}

// Suffixes returns every period suffix covering t, in commit order.
func Suffixes(t time.Time) []string {
	return []string{
		"alltime",
		"yearly:" + Yearly(t),
		"quarterly:" + Quarterly(t),
		"monthly:" + Monthly(t),
		"weekly:" + Weekly(t),
		"daily:" + Daily(t),
	}
}

// ForQuery maps a public query period name to the suffix covering t.
// Unknown values fall back to alltime.
func ForQuery(name string, t time.Time) string {
	switch name {
	case "realtime", "today":
		return "daily:" + Daily(t)
	case "week":
		return "weekly:" + Weekly(t)
	case "month":
		return "monthly:" + Monthly(t)
	case "quarter":
		return "quarterly:" + Quarterly(t)
	case "year":
		return "yearly:" + Yearly(t)
	default:
		return "alltime"
	}
}
