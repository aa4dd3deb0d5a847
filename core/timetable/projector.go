package timetable

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"time"
)

// DefaultProjectionWeeks is the forward window projected for calendar views:
// the current week plus one more.
const DefaultProjectionWeeks = 2

// Event is a concrete, dated occurrence of a selected session. Events are
// never persisted; they are recomputed from selections on every projection.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FullTitle string    `json:"full_title,omitempty"`
	ClassNo   string    `json:"class_no,omitempty"`
	Room      string    `json:"room,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Color     string    `json:"color,omitempty"`
}

// Project materializes calendar events for the given selections over a
// bounded forward window: the week containing ref (anchored on its Monday)
// plus weeks-1 subsequent weeks.
//
// Project is a pure function of its arguments: identical inputs yield
// identical output, so callers must snapshot "now" once per projection.
// Selections with malformed times or weekdays are skipped, never fatal.
func Project(selections []SelectedSession, ref time.Time, weeks int) []Event {
	anchor := WeekAnchor(ref)
	loc := ref.Location()

	events := make([]Event, 0, len(selections)*weeks)
	for _, sel := range selections {
		sh, sm, err := ParseClock(sel.StartTime)
		if err != nil {
			continue
		}
		eh, em, err := ParseClock(sel.EndTime)
		if err != nil {
			continue
		}
		if !sel.Weekday.Valid() {
			continue
		}

		for week := 0; week < weeks; week++ {
			date := anchor.AddDate(0, 0, week*7+int(sel.Weekday))
			y, m, d := date.Date()

			events = append(events, Event{
				ID:        fmt.Sprintf("%s-%s-w%d-d%d-%02d%02d", sel.CourseCode, sel.ClassNo, week, sel.Weekday, sh, sm),
				Title:     sel.CourseCode,
				FullTitle: sel.Title,
				ClassNo:   sel.ClassNo,
				Room:      sel.Room,
				Start:     time.Date(y, m, d, sh, sm, 0, 0, loc),
				End:       time.Date(y, m, d, eh, em, 0, 0, loc),
				Color:     sel.Color,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
	return events
}

// ParseClock parses a wall-clock "HH:MM" time-of-day string.
func ParseClock(s string) (hour, min int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed time %q", s)
	}
	if hour, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("malformed time %q", s)
	}
	if min, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("malformed time %q", s)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return hour, min, nil
}
