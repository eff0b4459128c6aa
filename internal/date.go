package internal

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CalendarDate is a day-granularity date ordered year, then month, then day.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseCalendarDate reads a three-field date split by sep. Fields arrive in
// display order (MM/DD/YYYY) unless the first field has four digits, in which
// case storage order (YYYY/MM/DD) is assumed.
func ParseCalendarDate(s, sep string) (CalendarDate, error) {
	if sep == "" {
		return CalendarDate{}, fmt.Errorf("empty date separator")
	}
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != 3 {
		return CalendarDate{}, fmt.Errorf("date %q: expected 3 fields separated by %q, got %d", s, sep, len(parts))
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return CalendarDate{}, fmt.Errorf("date %q: field %q is not a number", s, p)
		}
		nums[i] = n
	}

	var year, month, day int
	if len(strings.TrimSpace(parts[0])) == 4 {
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		month, day, year = nums[0], nums[1], nums[2]
	}

	d := CalendarDate{Year: year, Month: time.Month(month), Day: day}
	if !d.valid() {
		return CalendarDate{}, fmt.Errorf("date %q is not a calendar date", s)
	}
	return d, nil
}

// MustParseCalendarDate is ParseCalendarDate for literals known to be valid.
func MustParseCalendarDate(s, sep string) CalendarDate {
	d, err := ParseCalendarDate(s, sep)
	if err != nil {
		panic(err)
	}
	return d
}

// ComparableDate returns the (year, month, day) key of a date string, which
// orders chronologically under lexicographic comparison.
func ComparableDate(s, sep string) ([3]int, error) {
	d, err := ParseCalendarDate(s, sep)
	if err != nil {
		return [3]int{}, err
	}
	return d.Key(), nil
}

func (d CalendarDate) valid() bool {
	if d.Year < 1 || d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	t := d.Time()
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

// Key returns the (year, month, day) tuple.
func (d CalendarDate) Key() [3]int {
	return [3]int{d.Year, int(d.Month), d.Day}
}

// Compare returns -1, 0 or +1 like cmp.Compare.
func (d CalendarDate) Compare(o CalendarDate) int {
	if c := cmp.Compare(d.Year, o.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(d.Month, o.Month); c != 0 {
		return c
	}
	return cmp.Compare(d.Day, o.Day)
}

func (d CalendarDate) Before(o CalendarDate) bool { return d.Compare(o) < 0 }
func (d CalendarDate) After(o CalendarDate) bool  { return d.Compare(o) > 0 }
func (d CalendarDate) Equal(o CalendarDate) bool  { return d.Compare(o) == 0 }

// Time returns midnight UTC of the date.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Format renders the date in display order with zero padding, e.g. 01/02/2024.
func (d CalendarDate) Format(sep string) string {
	return fmt.Sprintf("%02d%s%02d%s%04d", int(d.Month), sep, d.Day, sep, d.Year)
}

func (d CalendarDate) String() string {
	return d.Format("/")
}
