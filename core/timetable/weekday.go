package timetable

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Weekday is the canonical day-of-week encoding used everywhere inside the
// application: Monday=0 .. Sunday=6. Course data, selections and projections
// all store this encoding; anything else (time.Weekday, ISO-8601 numbering,
// display names) is converted at the boundary by the functions below.
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

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var errInvalidWeekday = errors.New("invalid weekday")

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

func (d Weekday) String() string {
	if !d.Valid() {
		return "???"
	}
	return dayNames[d]
}

// Time converts to the stdlib encoding (Sunday=0 .. Saturday=6).
func (d Weekday) Time() time.Weekday {
	if d == Sunday {
		return time.Sunday
	}
	return time.Weekday(int(d) + 1)
}

// FromTime converts from the stdlib encoding (Sunday=0 .. Saturday=6).
func FromTime(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(int(d) - 1)
}

// FromISO converts from ISO-8601 numbering (Monday=1 .. Sunday=7).
func FromISO(n int) (Weekday, error) {
	if n < 1 || n > 7 {
		return 0, errors.Wrapf(errInvalidWeekday, "%d", n)
	}
	return Weekday(n - 1), nil
}

// ParseDay parses a short day name ("Mon" .. "Sun", case-insensitive).
func ParseDay(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	for i, name := range dayNames {
		if strings.EqualFold(s, name) {
			return Weekday(i), nil
		}
	}
	return 0, errors.Wrapf(errInvalidWeekday, "%q", s)
}

// WeekAnchor returns the Monday on or before ref, at midnight in ref's
// location. The offset math is the classic footgun: time.Weekday is
// Sunday-based, so Sunday must rewind 6 days rather than advance 1.
func WeekAnchor(ref time.Time) time.Time {
	y, m, d := ref.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())

	native := int(ref.Weekday()) // Sunday=0 .. Saturday=6
	offset := 1 - native
	if native == 0 {
		offset = -6
	}
	return midnight.AddDate(0, 0, offset)
}
