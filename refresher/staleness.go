package refresher

import (
	"fmt"
	"time"

	"github.com/bitmark-inc/covid-dashboard/schema"
	"github.com/bitmark-inc/covid-dashboard/utils"
)

// Rule decides how the day gap of the cache is measured
type Rule string

const (
	// RuleCalendar counts the elapsed calendar days
	RuleCalendar Rule = "calendar"

	// RuleDayOfMonth subtracts the day-of-month components only, so the
	// gap is wrong across month boundaries. Kept for comparison with the
	// legacy dashboard.
	RuleDayOfMonth Rule = "day_of_month"
)

// ParseRule maps a config value into a Rule, empty means RuleCalendar
func ParseRule(s string) (Rule, error) {
	switch Rule(s) {
	case "", RuleCalendar:
		return RuleCalendar, nil
	case RuleDayOfMonth:
		return RuleDayOfMonth, nil
	}
	return "", fmt.Errorf("unknown staleness rule %q", s)
}

// DayGap returns the gap in days between now, taken in loc, and the
// calendar day last.
func (rule Rule) DayGap(now time.Time, loc *time.Location, last time.Time) int {
	today := utils.CalendarDay(now, loc)
	lastDay := utils.CalendarDay(last, time.UTC)

	if rule == RuleDayOfMonth {
		return today.Day() - lastDay.Day()
	}
	return utils.DaysBetween(lastDay, today)
}

// IsStale reports whether cached is too old to display. An empty cache is
// always stale.
func (r *Refresher) IsStale(cached []schema.CaseRecord) bool {
	if len(cached) == 0 {
		return true
	}
	last := cached[len(cached)-1]
	return r.rule.DayGap(r.now(), r.location, last.Date) >= r.threshold
}
