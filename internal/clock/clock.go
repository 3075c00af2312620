// Package clock derives day identities and deadline instants from wall-clock time.
package clock

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tenaday/internal/model"
)

const dateLayout = "2006-01-02"

// Clock defines the fixed daily deadline. All methods are pure functions of the
// supplied instant.
type Clock struct {
	DeadlineHour   int
	DeadlineMinute int
}

// Default is the standard 20:00 local deadline.
var Default = Clock{DeadlineHour: 20}

// ParseDeadline builds a Clock from an "HH:MM" string.
func ParseDeadline(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("invalid deadline %q, use HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return Clock{}, fmt.Errorf("invalid deadline hour %q: %w", parts[0], err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return Clock{}, fmt.Errorf("invalid deadline minute %q: %w", parts[1], err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("deadline %q out of range", s)
	}
	return Clock{DeadlineHour: hour, DeadlineMinute: minute}, nil
}

// DateID returns the calendar-date identity of t in its location.
func DateID(t time.Time) string {
	return t.Format(dateLayout)
}

// NormalizeDateID reduces a stored date identity to its calendar-date part,
// tolerating identities that carry time-of-day noise from older data.
func NormalizeDateID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", false
	}
	return s, true
}

// Today returns the calendar-date identity for now.
func (c Clock) Today(now time.Time) string {
	return DateID(now)
}

// DeadlineInstant returns the next occurrence of the deadline at or after from.
func (c Clock) DeadlineInstant(from time.Time) time.Time {
	d := c.deadlineOn(from)
	if d.Before(from) {
		d = c.deadlineOn(from.AddDate(0, 0, 1))
	}
	return d
}

// TimeRemaining returns the time left until today's deadline, floor-divided into
// hours, minutes and seconds. Once the deadline has passed it stays at zero until
// the next calendar day.
func (c Clock) TimeRemaining(from time.Time) model.Countdown {
	var rem time.Duration
	// A next deadline on a later day means today's already passed.
	if deadline := c.DeadlineInstant(from); DateID(deadline) == c.Today(from) {
		rem = deadline.Sub(from)
	}
	return model.Countdown{
		Hours:   int(rem / time.Hour),
		Minutes: int(rem % time.Hour / time.Minute),
		Seconds: int(rem % time.Minute / time.Second),
		Total:   rem,
	}
}

func (c Clock) deadlineOn(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.DeadlineHour, c.DeadlineMinute, 0, 0, day.Location())
}

// IsYesterday reports whether dateID names the calendar day immediately before
// relativeTo's day. Time-of-day components in either argument are ignored.
func IsYesterday(dateID string, relativeTo time.Time) bool {
	id, ok := NormalizeDateID(dateID)
	if !ok {
		return false
	}
	return id == DateID(relativeTo.AddDate(0, 0, -1))
}
