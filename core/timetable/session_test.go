package timetable

import "testing"

func TestGroupSessions(t *testing.T) {
	sessions := []Session{
		{CourseCode: "ENG101", ClassNo: "02", Weekday: Tuesday, StartTime: "09:00", EndTime: "10:30"},
		{CourseCode: "ENG101", ClassNo: "01", Weekday: Monday, StartTime: "09:00", EndTime: "10:30"},
		{CourseCode: "ENG101", ClassNo: "01", Weekday: Thursday, StartTime: "09:00", EndTime: "10:30"},
		{CourseCode: "ACY200", ClassNo: "01", Weekday: Friday, StartTime: "14:00", EndTime: "15:30"},
	}

	groups := GroupSessions(sessions)
	if len(groups) != 3 {
		t.Fatalf("GroupSessions() returned %d groups, want 3", len(groups))
	}

	// sorted by course code then class number
	wantKeys := []struct{ code, classNo string }{
		{"ACY200", "01"}, {"ENG101", "01"}, {"ENG101", "02"},
	}
	for i, want := range wantKeys {
		if groups[i].CourseCode != want.code || groups[i].ClassNo != want.classNo {
			t.Errorf("groups[%d] = (%s, %s), want (%s, %s)",
				i, groups[i].CourseCode, groups[i].ClassNo, want.code, want.classNo)
		}
	}

	// two meetings of the same class stay one group
	if n := len(groups[1].Sessions); n != 2 {
		t.Errorf("ENG101/01 has %d sessions, want 2", n)
	}
}

func TestGroupSessionsEmptyClassNo(t *testing.T) {
	sessions := []Session{
		{CourseCode: "ENG101", ClassNo: "", Weekday: Monday, StartTime: "09:00", EndTime: "10:30"},
		{CourseCode: "ENG101", ClassNo: "", Weekday: Wednesday, StartTime: "09:00", EndTime: "10:30"},
		{CourseCode: "ACY200", ClassNo: "", Weekday: Friday, StartTime: "14:00", EndTime: "15:30"},
	}

	// empty class numbers form one group per course, not one global group
	groups := GroupSessions(sessions)
	if len(groups) != 2 {
		t.Fatalf("GroupSessions() returned %d groups, want 2", len(groups))
	}
	if n := len(groups[1].Sessions); n != 2 {
		t.Errorf("ENG101 empty-classNo group has %d sessions, want 2", n)
	}
}

func TestClassGroupCombined(t *testing.T) {
	plain := ClassGroup{CourseCode: "ENG101", ClassNo: "01"}
	if plain.IsCombined() {
		t.Error("plain class reported as combined")
	}
	if got := plain.OriginalClassNos(); len(got) != 1 || got[0] != "01" {
		t.Errorf("OriginalClassNos() = %v, want [01]", got)
	}

	combined := ClassGroup{CourseCode: "MAT150", ClassNo: "01+02+03"}
	if !combined.IsCombined() {
		t.Error("combined class not reported as combined")
	}
	want := []string{"01", "02", "03"}
	got := combined.OriginalClassNos()
	if len(got) != len(want) {
		t.Fatalf("OriginalClassNos() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OriginalClassNos()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCampusFor(t *testing.T) {
	tests := []struct {
		room string
		want string
	}{
		{room: "ADC101", want: "Admiralty Learning Centre"},
		{room: "kec204", want: "Kowloon East Campus"},
		{room: "UNC12", want: "United Centre"},
		{room: "XYZ501", want: "XYZ501"},
		{room: "A1", want: "A1"},
		{room: "", want: ""},
	}
	for _, tt := range tests {
		if got := CampusFor(tt.room); got != tt.want {
			t.Errorf("CampusFor(%q) = %q, want %q", tt.room, got, tt.want)
		}
	}
}
