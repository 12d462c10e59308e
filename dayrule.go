package tzdb

import (
	"fmt"
	"time"

	"github.com/tzkit/tzdb/internal/calendar"
	"github.com/tzkit/tzdb/tzsrc"
)

// weekdayOf returns the day of week (0=Sunday) for the given date, via
// the calendar kernel rather than re-deriving Zeller's congruence.
func weekdayOf(year, month, day int) int {
	instant, err := calendar.InstantFromDate(year, month, day, 0, 0, 0)
	if err != nil {
		// Callers only ever pass already-range-checked days; this would
		// indicate an internal-consistency bug, not bad input.
		panic(fmt.Sprintf("tzdb: weekdayOf(%d,%d,%d): %v", year, month, day, err))
	}
	return calendar.DateFromInstant(instant).Weekday
}

// resolveDayRule applies a DayRule within a given (year, month), returning
// the concrete (year, month, day) it denotes. Month or year may roll over
// for WeekdayAfterOrOn rules whose search window crosses a month
// boundary (this cannot happen for any rule actually present in the IANA
// database, but is handled for robustness, matching the original
// reference's nextWeekday/lastWeekday helpers).
func resolveDayRule(year int, month time.Month, d tzsrc.DayRule) (ry int, rm time.Month, rday int, err error) {
	switch d.Kind {
	case tzsrc.EqualToDate:
		if d.Day < 1 || d.Day > calendar.DaysInMonth(year, int(month)) {
			return 0, 0, 0, fmt.Errorf("day %d out of range for %04d-%02d", d.Day, year, int(month))
		}
		return year, month, d.Day, nil

	case tzsrc.WeekdayBeforeOrOn:
		start := d.Day
		if max := calendar.DaysInMonth(year, int(month)); start > max {
			start = max
		}
		for day := start; day > start-7; day-- {
			if day < 1 {
				break
			}
			if weekdayOf(year, int(month), day) == int(d.Weekday) {
				return year, month, day, nil
			}
		}
		return 0, 0, 0, fmt.Errorf("no %s on or before day %d in %04d-%02d", d.Weekday, d.Day, year, int(month))

	case tzsrc.WeekdayAfterOrOn:
		daysInMonth := calendar.DaysInMonth(year, int(month))
		for day := d.Day; day < d.Day+7; day++ {
			y, m, dd := year, month, day
			if dd > daysInMonth {
				dd -= daysInMonth
				m++
				if m > 12 {
					m = 1
					y++
				}
			}
			if weekdayOf(y, int(m), dd) == int(d.Weekday) {
				return y, m, dd, nil
			}
		}
		return 0, 0, 0, fmt.Errorf("no %s on or after day %d in %04d-%02d", d.Weekday, d.Day, year, int(month))

	default:
		return 0, 0, 0, fmt.Errorf("invalid day rule kind %d", d.Kind)
	}
}
