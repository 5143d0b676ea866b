package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the display format of due dates (day/month/year).
const DateLayout = "02/01/2006"

var ErrInvalidDate = errors.New("invalid date")

// ParseDueDate parses a day-month-year date such as "31/12/2024" or
// "1/2/2024". ISO dates ("2024-12-31", optionally followed by a time part)
// are accepted too, since the remote backend stores dates that way.
// The result is midnight in loc.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if loc == nil {
		loc = time.Local
	}

	var y, m, d int
	var err error
	switch {
	case strings.Count(s, "/") == 2:
		parts := strings.Split(s, "/")
		d, m, y, err = atoi3(parts[0], parts[1], parts[2])
	case len(s) >= 10 && s[4] == '-' && s[7] == '-':
		y, m, d, err = atoi3(s[0:4], s[5:7], s[8:10])
	default:
		err = ErrInvalidDate
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if y < 1 || m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	// time.Date normalizes 31/02 into March; reject it instead
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDueDate renders t in DateLayout.
func FormatDueDate(t time.Time) string {
	return t.Format(DateLayout)
}

func atoi3(a, b, c string) (int, int, int, error) {
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, 0, err
	}
	z, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}
