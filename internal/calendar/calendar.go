// Package calendar holds the date arithmetic shared by the scheduling engine.
// Every function is pure; only ParseDate can fail.
package calendar

import (
	"strings"
	"time"
)

// Weekday enumerates the seven days, Monday first.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of Weekday values.
const DaysInWeek = 7

var weekdayNames = [DaysInWeek]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// String returns the lowercase English name.
func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return ""
	}
	return weekdayNames[w]
}

// ParseWeekday maps a case-insensitive day name to a Weekday.
func ParseWeekday(name string) (Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), true
		}
	}
	return Monday, false
}

func weekdayFromStd(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d - 1)
}

// Cadence describes which days a batch meets on.
type Cadence string

const (
	CadenceWeekday Cadence = "weekday"
	CadenceWeekend Cadence = "weekend"
)

// Valid reports whether c is a known cadence.
func (c Cadence) Valid() bool {
	return c == CadenceWeekday || c == CadenceWeekend
}

// HolidaySet is a lookup of holiday dates.
type HolidaySet map[Date]struct{}

// NewHolidaySet indexes the provided dates.
func NewHolidaySet(dates ...Date) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// Contains reports whether d is a holiday.
func (h HolidaySet) Contains(d Date) bool {
	if h == nil {
		return false
	}
	_, ok := h[d]
	return ok
}

// IsWeekend reports whether d falls on Saturday or Sunday.
func IsWeekend(d Date) bool {
	w := d.Weekday()
	return w == Saturday || w == Sunday
}

// IsHoliday reports whether d is one of the holiday dates.
func IsHoliday(d Date, holidays HolidaySet) bool {
	return holidays.Contains(d)
}

// IsWorkingDay reports whether d is within the cadence. Holidays are not considered.
func IsWorkingDay(d Date, cadence Cadence) bool {
	if cadence == CadenceWeekend {
		return IsWeekend(d)
	}
	return !IsWeekend(d)
}

// IsSchedulable reports whether d is a working day for the cadence and not a holiday.
func IsSchedulable(d Date, cadence Cadence, holidays HolidaySet) bool {
	return IsWorkingDay(d, cadence) && !holidays.Contains(d)
}

// AddBusinessDays moves n Monday-to-Friday, non-holiday days away from start.
// A negative n walks backwards; zero returns start unchanged.
func AddBusinessDays(start Date, n int, holidays HolidaySet) Date {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	current := start
	for n > 0 {
		current = current.PlusDays(step)
		if !IsWeekend(current) && !holidays.Contains(current) {
			n--
		}
	}
	return current
}

// NextWorkingDays returns the first count schedulable days on or after start.
func NextWorkingDays(start Date, count int, cadence Cadence, holidays HolidaySet) []Date {
	if count <= 0 {
		return nil
	}
	days := make([]Date, 0, count)
	for current := start; len(days) < count; current = current.PlusDays(1) {
		if IsSchedulable(current, cadence, holidays) {
			days = append(days, current)
		}
	}
	return days
}

// WorkingDaysBetween lists schedulable days in [start, end].
func WorkingDaysBetween(start, end Date, cadence Cadence, holidays HolidaySet) []Date {
	var days []Date
	for current := start; !current.After(end); current = current.PlusDays(1) {
		if IsSchedulable(current, cadence, holidays) {
			days = append(days, current)
		}
	}
	return days
}

// DayOfWeek returns the lowercase weekday name of d.
func DayOfWeek(d Date) string {
	return d.Weekday().String()
}
