package internal

import (
	"errors"
	"io/fs"
	"strings"
)

// ParseWatermark validates a CLI date (MM/DD/YYYY). An empty string means no
// watermark.
func ParseWatermark(s, sep string) (*CalendarDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.Count(s, sep) != 2 {
		return nil, &ConfigError{Field: "date", Value: s, Err: errors.New("expected MM" + sep + "DD" + sep + "YYYY")}
	}
	d, err := ParseCalendarDate(s, sep)
	if err != nil {
		return nil, &ConfigError{Field: "date", Value: s, Err: err}
	}
	return &d, nil
}

// ParsePrices splits a comma-separated price allow-list and normalizes each
// entry. An empty string yields nil.
func ParsePrices(s string) ([]string, error) {
	var prices []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := NormalizeAmount(part)
		if err != nil {
			return nil, &ConfigError{Field: "prices", Value: part, Err: err}
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// ResumeWatermark derives a watermark from the newest receipt already in dir.
// A missing or empty directory yields nil, meaning capture everything.
func ResumeWatermark(dir string) (*CalendarDate, error) {
	receipts, _, err := ReadReceiptDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	latest, ok := LatestDate(receipts)
	if !ok {
		return nil, nil
	}
	return &latest, nil
}
