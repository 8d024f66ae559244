// Package calendar builds the typed day records for a planning month:
// weekday category, holiday flags, per-day point values and ISO week numbers.
package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jakechorley/duty-planner/pkg/core/model"
)

// PointSchedule is the configured point value per day category.
// A holiday overrides whatever category the day falls in.
type PointSchedule struct {
	Weekday float64
	Friday  float64
	Weekend float64
	Holiday float64
}

// DefaultPointSchedule mirrors the sheet's long-standing values
func DefaultPointSchedule() PointSchedule {
	return PointSchedule{Weekday: 1.0, Friday: 1.5, Weekend: 2.0, Holiday: 2.0}
}

// For returns the point value for a single day record
func (p PointSchedule) For(category model.DayCategory, holiday bool) float64 {
	if holiday {
		return p.Holiday
	}
	switch category {
	case model.CategoryFriday:
		return p.Friday
	case model.CategoryWeekend:
		return p.Weekend
	default:
		return p.Weekday
	}
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Categorize maps a weekday to its point category
func Categorize(weekday time.Weekday) model.DayCategory {
	switch weekday {
	case time.Friday:
		return model.CategoryFriday
	case time.Saturday, time.Sunday:
		return model.CategoryWeekend
	default:
		return model.CategoryWeekday
	}
}

// BuildMonth constructs the immutable day records for a month. Holidays may
// fall outside the month; those are ignored.
func BuildMonth(year int, month time.Month, holidays []time.Time, schedule PointSchedule) []model.DayRecord {
	holidaySet := make(map[int]bool)
	for _, h := range holidays {
		if h.Year() == year && h.Month() == month {
			holidaySet[h.Day()] = true
		}
	}

	numDays := DaysIn(year, month)
	days := make([]model.DayRecord, 0, numDays)
	for d := 1; d <= numDays; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		category := Categorize(date.Weekday())
		holiday := holidaySet[d]
		_, isoWeek := date.ISOWeek()
		days = append(days, model.DayRecord{
			Date:     date,
			Day:      d,
			Category: category,
			Holiday:  holiday,
			Points:   schedule.For(category, holiday),
			ISOWeek:  isoWeek,
		})
	}
	return days
}

// ExpandHolidayRules evaluates recurring holiday rules (RRULE strings, e.g.
// "FREQ=YEARLY;BYMONTH=8;BYMONTHDAY=9") within the given month and returns
// the concrete dates. Used to merge configured annual holidays with the
// holiday table.
func ExpandHolidayRules(rules []string, year int, month time.Month) ([]time.Time, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, month, DaysIn(year, month), 23, 59, 59, 0, time.UTC)

	var dates []time.Time
	for i, rule := range rules {
		r, err := rrule.StrToRRule(rule)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday rule [%d] %q: %w", i, rule, err)
		}
		// Anchor the rule well before the target month so yearly rules
		// without an explicit DTSTART still yield occurrences.
		r.DTStart(first.AddDate(-1, 0, 0))
		for _, occ := range r.Between(first, last, true) {
			dates = append(dates, time.Date(occ.Year(), occ.Month(), occ.Day(), 0, 0, 0, 0, time.UTC))
		}
	}
	return dates, nil
}

// NextMonth returns the year and month that follow the given month
func NextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

// PrevMonth returns the year and month that precede the given month
func PrevMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}
