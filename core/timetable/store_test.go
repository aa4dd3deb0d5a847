package timetable

import (
	"context"
	"reflect"
	"testing"
)

func eng101Group() ClassGroup {
	return ClassGroup{
		CourseCode: "ENG101",
		ClassNo:    "01",
		Sessions: []Session{
			{CourseCode: "ENG101", ClassNo: "01", Weekday: Monday, StartTime: "09:00", EndTime: "10:30", Room: "ADC101"},
			{CourseCode: "ENG101", ClassNo: "01", Weekday: Thursday, StartTime: "09:00", EndTime: "10:30", Room: "ADC101"},
		},
	}
}

func TestStoreAddRemoveRoundTrip(t *testing.T) {
	s := NewStore("21000001", nil)

	warn, err := s.AddClass("English I", eng101Group())
	if err != nil {
		t.Fatalf("AddClass() failed: %v", err)
	}
	if warn != "" {
		t.Errorf("AddClass() warning = %q, want none", warn)
	}
	if s.Len() != 2 {
		t.Fatalf("store has %d selections, want 2 (one per weekly meeting)", s.Len())
	}

	// same class again is rejected
	if _, err := s.AddClass("English I", eng101Group()); err != ErrAlreadySelected {
		t.Errorf("AddClass() error = %v, want ErrAlreadySelected", err)
	}
	if s.Len() != 2 {
		t.Errorf("rejected AddClass() changed the store: %d selections", s.Len())
	}

	if removed := s.RemoveClass("ENG101", "01"); removed != 2 {
		t.Errorf("RemoveClass() removed %d, want 2", removed)
	}
	if s.Len() != 0 {
		t.Errorf("store has %d selections after remove, want 0", s.Len())
	}
}

func TestStoreCombinedClass(t *testing.T) {
	s := NewStore("21000001", nil)

	combined := ClassGroup{
		CourseCode: "MAT150",
		ClassNo:    "01+02",
		Sessions: []Session{
			{CourseCode: "MAT150", ClassNo: "01+02", Weekday: Tuesday, StartTime: "11:00", EndTime: "12:30", Room: "KWC301"},
		},
	}
	if _, err := s.AddClass("Maths", combined); err != nil {
		t.Fatalf("AddClass() failed: %v", err)
	}

	// the combined class registers as selected under either original section
	if !s.HasClass("MAT150", "01") {
		t.Error(`HasClass("MAT150", "01") = false, want true`)
	}
	if !s.HasClass("MAT150", "02") {
		t.Error(`HasClass("MAT150", "02") = false, want true`)
	}
	if s.HasClass("MAT150", "03") {
		t.Error(`HasClass("MAT150", "03") = true, want false`)
	}

	// adding a sibling original section warns but is not blocked
	sibling := ClassGroup{
		CourseCode: "MAT150",
		ClassNo:    "02",
		Sessions: []Session{
			{CourseCode: "MAT150", ClassNo: "02", Weekday: Friday, StartTime: "11:00", EndTime: "12:30", Room: "KWC301"},
		},
	}
	warn, err := s.AddClass("Maths", sibling)
	if err != nil {
		t.Fatalf("AddClass(sibling) failed: %v", err)
	}
	if warn == "" {
		t.Error("AddClass(sibling) returned no warning")
	}
	if s.Len() != 2 {
		t.Errorf("store has %d selections, want 2", s.Len())
	}
}

func TestStoreExportImportRoundTrip(t *testing.T) {
	s := NewStore("21000001", nil)
	if _, err := s.AddClass("English I", eng101Group()); err != nil {
		t.Fatalf("AddClass() failed: %v", err)
	}

	doc, err := s.Export()
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	fresh := NewStore("21000002", nil)
	if err := fresh.Import(doc); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	if !reflect.DeepEqual(s.Selections(), fresh.Selections()) {
		t.Error("imported selections differ from exported ones")
	}
}

func TestStoreImportRejectsNonArray(t *testing.T) {
	s := NewStore("21000001", nil)
	if _, err := s.AddClass("English I", eng101Group()); err != nil {
		t.Fatalf("AddClass() failed: %v", err)
	}

	for _, doc := range []string{`{"id":"x"}`, `"nope"`, `42`, ``} {
		if err := s.Import([]byte(doc)); err != ErrNotAnArray {
			t.Errorf("Import(%q) error = %v, want ErrNotAnArray", doc, err)
		}
	}
	// a rejected import leaves the store untouched
	if s.Len() != 2 {
		t.Errorf("store has %d selections after rejected imports, want 2", s.Len())
	}
}

type memPersister struct {
	slots map[string][]SelectedSession
}

func (p *memPersister) SaveSelections(_ context.Context, sid string, sels []SelectedSession) error {
	if p.slots == nil {
		p.slots = make(map[string][]SelectedSession)
	}
	p.slots[sid] = sels
	return nil
}

func (p *memPersister) LoadSelections(_ context.Context, sid string) ([]SelectedSession, error) {
	return p.slots[sid], nil
}

func TestStoreSaveLoad(t *testing.T) {
	p := new(memPersister)
	ctx := context.Background()

	s := NewStore("21000001", p)
	if _, err := s.AddClass("English I", eng101Group()); err != nil {
		t.Fatalf("AddClass() failed: %v", err)
	}
	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	restored := NewStore("21000001", p)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !reflect.DeepEqual(s.Selections(), restored.Selections()) {
		t.Error("restored selections differ from saved ones")
	}
}
