// Package timeutil holds the wall-clock and calendar-date helpers shared by
// shift patterns, time slots and shifts.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DateLayout is the wire and column format of calendar dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidTime = errors.New("time must be HH:MM or HH:MM:SS")
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

// H:MM, HH:MM, H:MM:SS, HH:MM:SS. Minutes and seconds are always two digits.
var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// NormalizeTime converts an accepted clock string to canonical "HH:MM".
// Seconds are validated and then dropped.
func NormalizeTime(s string) (string, error) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return "", ErrInvalidTime
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return "", ErrInvalidTime
	}
	if m[3] != "" {
		if sec, _ := strconv.Atoi(m[3]); sec > 59 {
			return "", ErrInvalidTime
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// MinuteOfDay returns minutes since midnight for an accepted clock string.
func MinuteOfDay(s string) (int, error) {
	n, err := NormalizeTime(s)
	if err != nil {
		return 0, err
	}
	hour, _ := strconv.Atoi(n[:2])
	minute, _ := strconv.Atoi(n[3:])
	return hour*60 + minute, nil
}

// ValidRange reports whether start is strictly before end.
func ValidRange(start, end string) (bool, error) {
	s, err := MinuteOfDay(start)
	if err != nil {
		return false, err
	}
	e, err := MinuteOfDay(end)
	if err != nil {
		return false, err
	}
	return s < e, nil
}

// Overlaps reports whether the half-open ranges [aStart,aEnd) and
// [bStart,bEnd) intersect. All inputs must already be valid.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	as, _ := MinuteOfDay(aStart)
	ae, _ := MinuteOfDay(aEnd)
	bs, _ := MinuteOfDay(bStart)
	be, _ := MinuteOfDay(bEnd)
	return as < be && bs < ae
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders a date column value.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekWindow returns [start, end] for a bulk week operation. An empty end
// means start + 6 days.
func WeekWindow(start, end string) (time.Time, time.Time, error) {
	from, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end == "" {
		return from, from.AddDate(0, 0, 6), nil
	}
	to, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("week_end must not be before week_start")
	}
	return from, to, nil
}

// WeekdayKey is the lower-case English weekday used as the key of a
// store's required-staff map.
func WeekdayKey(t time.Time) string {
	switch t.Weekday() {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}
