package types

import (
	"fmt"
	"time"
)

// Month identifies a calendar month. It is the cursor that selects which
// MonthData every cell read and write targets. It is session state only
// and never persisted.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t, using t's wall-clock fields.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a month key in YYYY-MM form.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthKeyLayout, s)
	if err != nil || len(s) != len(monthKeyLayout) {
		return Month{}, fmt.Errorf("%w: month %q must be YYYY-MM", ErrValidation, s)
	}
	return MonthOf(t), nil
}

const (
	monthKeyLayout = "2006-01"
	dateLayout     = "2006-01-02"
)

// Key returns the YYYY-MM month key.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// String implements fmt.Stringer.
func (m Month) String() string {
	return m.Key()
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether day is a valid day of the month.
func (m Month) Contains(day int) bool {
	return day >= 1 && day <= m.Days()
}

// Date returns the canonical YYYY-MM-DD string for day of the month.
// The string is built from the calendar components alone, so the same
// local date yields the same key in every time zone.
func (m Month) Date(day int) string {
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

// Weekday returns the day of the week of day in the month.
func (m Month) Weekday(day int) time.Weekday {
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Includes reports whether t falls inside the month, comparing
// wall-clock fields only.
func (m Month) Includes(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// Prev returns the preceding month.
func (m Month) Prev() Month {
	return MonthOf(time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC))
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

// IsDate reports whether s is a well-formed YYYY-MM-DD date.
func IsDate(s string) bool {
	if len(s) != len(dateLayout) {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
