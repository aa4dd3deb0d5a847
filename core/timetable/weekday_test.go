package timetable

import (
	"testing"
	"time"
)

func TestWeekdayConversions(t *testing.T) {
	tests := []struct {
		name   string
		native time.Weekday
		iso    int
		day    string
		want   Weekday
	}{
		{name: "Monday", native: time.Monday, iso: 1, day: "Mon", want: Monday},
		{name: "Tuesday", native: time.Tuesday, iso: 2, day: "Tue", want: Tuesday},
		{name: "Wednesday", native: time.Wednesday, iso: 3, day: "Wed", want: Wednesday},
		{name: "Thursday", native: time.Thursday, iso: 4, day: "Thu", want: Thursday},
		{name: "Friday", native: time.Friday, iso: 5, day: "Fri", want: Friday},
		{name: "Saturday", native: time.Saturday, iso: 6, day: "Sat", want: Saturday},
		{name: "Sunday", native: time.Sunday, iso: 7, day: "Sun", want: Sunday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromTime(tt.native); got != tt.want {
				t.Errorf("FromTime(%v) = %v, want %v", tt.native, got, tt.want)
			}
			if got, err := FromISO(tt.iso); err != nil || got != tt.want {
				t.Errorf("FromISO(%d) = %v, %v, want %v", tt.iso, got, err, tt.want)
			}
			if got, err := ParseDay(tt.day); err != nil || got != tt.want {
				t.Errorf("ParseDay(%q) = %v, %v, want %v", tt.day, got, err, tt.want)
			}
			if got := tt.want.Time(); got != tt.native {
				t.Errorf("%v.Time() = %v, want %v", tt.want, got, tt.native)
			}
			if got := tt.want.String(); got != tt.day {
				t.Errorf("%v.String() = %q, want %q", tt.want, got, tt.day)
			}
		})
	}
}

func TestWeekdayConversionErrors(t *testing.T) {
	if _, err := FromISO(0); err == nil {
		t.Error("FromISO(0) expected error")
	}
	if _, err := FromISO(8); err == nil {
		t.Error("FromISO(8) expected error")
	}
	if _, err := ParseDay("Monday?"); err == nil {
		t.Error(`ParseDay("Monday?") expected error`)
	}
}

// The Monday anchor must hold for all seven native weekday inputs: the result
// is a Monday at midnight, at most 6 days before the reference date.
func TestWeekAnchor(t *testing.T) {
	// 2021-03-01 is a Monday
	monday := time.Date(2021, time.March, 1, 15, 4, 5, 0, time.UTC)

	for i := 0; i < 7; i++ {
		ref := monday.AddDate(0, 0, i)
		t.Run(ref.Weekday().String(), func(t *testing.T) {
			anchor := WeekAnchor(ref)

			if anchor.Weekday() != time.Monday {
				t.Errorf("WeekAnchor(%v) = %v; not a Monday", ref, anchor)
			}
			if h, m, s := anchor.Clock(); h != 0 || m != 0 || s != 0 {
				t.Errorf("WeekAnchor(%v) = %v; not midnight", ref, anchor)
			}
			if anchor.After(ref) {
				t.Errorf("WeekAnchor(%v) = %v; after reference", ref, anchor)
			}
			if ref.Sub(anchor) > 7*24*time.Hour {
				t.Errorf("WeekAnchor(%v) = %v; more than 6 days before reference", ref, anchor)
			}
		})
	}
}
