package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the only date format accepted and produced by the engine.
const ISOLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string is not a valid YYYY-MM-DD value.
var ErrInvalidDate = errors.New("invalid date")

// Date is an immutable calendar date without time or zone.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate normalises the provided fields into a Date (e.g. Jan 32 becomes Feb 1).
func NewDate(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime keeps the calendar fields of t as seen in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Year returns the year component.
func (d Date) Year() int { return d.year }

// Month returns the month component.
func (d Date) Month() time.Month { return d.month }

// Day returns the day-of-month component.
func (d Date) Day() int { return d.day }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.year == 0 && d.month == 0 && d.day == 0 }

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// PlusDays returns a new date n days away; n may be negative.
func (d Date) PlusDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// Weekday returns the enumerated day of week.
func (d Date) Weekday() Weekday {
	return weekdayFromStd(d.Time().Weekday())
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.compare(other) < 0 }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.compare(other) > 0 }

// Equal reports whether both dates denote the same day.
func (d Date) Equal(other Date) bool { return d.compare(other) == 0 }

// Between reports whether start <= d <= end.
func (d Date) Between(start, end Date) bool {
	return !d.Before(start) && !d.After(end)
}

func (d Date) compare(other Date) int {
	switch {
	case d.year != other.year:
		return d.year - other.year
	case d.month != other.month:
		return int(d.month) - int(other.month)
	default:
		return d.day - other.day
	}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

// MarshalJSON encodes the date as an ISO string, or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO date string.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, raw)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(raw string) error {
	if len(raw) > len(ISOLayout) {
		raw = raw[:len(ISOLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// ParseDate parses a strict YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(ISOLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return FromTime(t), nil
}

// MustParseDate is ParseDate for literals known to be valid; it panics otherwise.
func MustParseDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatDate renders the date as YYYY-MM-DD.
func FormatDate(d Date) string {
	return d.String()
}
