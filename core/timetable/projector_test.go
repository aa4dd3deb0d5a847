package timetable

import (
	"reflect"
	"testing"
	"time"
)

func eng101Selection() SelectedSession {
	return NewSelection("English I", Session{
		CourseCode: "ENG101",
		ClassNo:    "01",
		Weekday:    Monday,
		StartTime:  "09:00",
		EndTime:    "10:30",
		Room:       "ADC101",
	})
}

func TestProject(t *testing.T) {
	// 2021-03-03 is a Wednesday
	ref := time.Date(2021, time.March, 3, 12, 0, 0, 0, time.UTC)

	events := Project([]SelectedSession{eng101Selection()}, ref, 2)

	if len(events) != 2 {
		t.Fatalf("Project() returned %d events, want 2", len(events))
	}
	for i, ev := range events {
		if ev.Start.Weekday() != time.Monday {
			t.Errorf("events[%d].Start = %v; not a Monday", i, ev.Start)
		}
		if h, m, _ := ev.Start.Clock(); h != 9 || m != 0 {
			t.Errorf("events[%d].Start = %v; want 09:00", i, ev.Start)
		}
		if h, m, _ := ev.End.Clock(); h != 10 || m != 30 {
			t.Errorf("events[%d].End = %v; want 10:30", i, ev.End)
		}
	}
	if diff := events[1].Start.Sub(events[0].Start); diff != 7*24*time.Hour {
		t.Errorf("events are %v apart, want one week", diff)
	}
	// the Wednesday reference projects back onto the Monday of the same week
	if want := time.Date(2021, time.March, 1, 9, 0, 0, 0, time.UTC); !events[0].Start.Equal(want) {
		t.Errorf("events[0].Start = %v, want %v", events[0].Start, want)
	}
	if events[0].ID == events[1].ID {
		t.Errorf("event ids collide across weeks: %q", events[0].ID)
	}
}

func TestProjectIdempotent(t *testing.T) {
	ref := time.Date(2021, time.March, 3, 12, 0, 0, 0, time.UTC)
	sels := []SelectedSession{
		eng101Selection(),
		NewSelection("Statistics", Session{
			CourseCode: "STA210", ClassNo: "02", Weekday: Friday,
			StartTime: "14:00", EndTime: "15:30", Room: "KEC204",
		}),
	}

	first := Project(sels, ref, 2)
	second := Project(sels, ref, 2)
	if !reflect.DeepEqual(first, second) {
		t.Error("Project() is not idempotent for a frozen reference instant")
	}
}

func TestProjectSkipsMalformedSessions(t *testing.T) {
	ref := time.Date(2021, time.March, 3, 12, 0, 0, 0, time.UTC)
	sels := []SelectedSession{
		{CourseCode: "BAD001", ClassNo: "01", Weekday: Monday, StartTime: "aa:bb", EndTime: "10:30"},
		{CourseCode: "BAD002", ClassNo: "01", Weekday: Monday, StartTime: "09:00", EndTime: "late"},
		{CourseCode: "BAD003", ClassNo: "01", Weekday: Weekday(9), StartTime: "09:00", EndTime: "10:30"},
		eng101Selection(),
	}

	events := Project(sels, ref, 1)
	if len(events) != 1 {
		t.Fatalf("Project() returned %d events, want 1 (malformed sessions skipped)", len(events))
	}
	if events[0].Title != "ENG101" {
		t.Errorf("surviving event = %q, want ENG101", events[0].Title)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{in: "09:00", h: 9, m: 0},
		{in: "23:59", h: 23, m: 59},
		{in: " 8:15 ", h: 8, m: 15},
		{in: "aa:bb", wantErr: true},
		{in: "0900", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "10:60", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := ParseClock(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && (h != tt.h || m != tt.m) {
				t.Errorf("ParseClock(%q) = %d:%d, want %d:%d", tt.in, h, m, tt.h, tt.m)
			}
		})
	}
}
