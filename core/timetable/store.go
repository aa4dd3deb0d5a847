package timetable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrAlreadySelected = errors.New("class already selected")
	ErrNotAnArray      = errors.New("import payload must be a JSON array")
)

// SelectedSession is a denormalized snapshot of a Session the user added to
// their timetable, decorated with everything the calendar needs to render it.
type SelectedSession struct {
	ID         string  `json:"id"`
	CourseCode string  `json:"code"`
	ClassNo    string  `json:"class_no"`
	Title      string  `json:"title,omitempty"`
	Weekday    Weekday `json:"weekday"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Room       string  `json:"room,omitempty"`
	Campus     string  `json:"campus,omitempty"`
	Day        string  `json:"day"`
	Time       string  `json:"time"`
	Color      string  `json:"color"`
}

// SelectionID derives the stable selection key. The start time keeps two
// weekly meetings of the same class from colliding.
func SelectionID(code, classNo, startTime string) string {
	return fmt.Sprintf("%s-%s-%s", code, classNo, strings.Replace(startTime, ":", "", 1))
}

// NewSelection snapshots a Session into a SelectedSession.
func NewSelection(title string, s Session) SelectedSession {
	return SelectedSession{
		ID:         SelectionID(s.CourseCode, s.ClassNo, s.StartTime),
		CourseCode: s.CourseCode,
		ClassNo:    s.ClassNo,
		Title:      title,
		Weekday:    s.Weekday,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Room:       s.Room,
		Campus:     CampusFor(s.Room),
		Day:        s.Weekday.String(),
		Time:       s.StartTime + "-" + s.EndTime,
		Color:      ColorFor(s.CourseCode),
	}
}

// Persister persists one selection snapshot per owner key. The server-side
// implementation keeps a row per student ID; tests keep a map.
type Persister interface {
	SaveSelections(ctx context.Context, sid string, selections []SelectedSession) error
	LoadSelections(ctx context.Context, sid string) ([]SelectedSession, error)
}

// Store owns a user's ordered list of selected sessions. It is not safe for
// concurrent use; mutations are synchronous with respect to the caller.
type Store struct {
	sid        string
	persister  Persister
	selections []SelectedSession
}

func NewStore(sid string, p Persister) *Store {
	return &Store{sid: sid, persister: p}
}

// AddClass fans the group's sessions out into selections. It returns
// ErrAlreadySelected when the exact class is already in the store, and a
// non-empty warning (without blocking) when a sibling original section of a
// combined class is.
func (s *Store) AddClass(title string, g ClassGroup) (warning string, err error) {
	if s.hasExactClass(g.CourseCode, g.ClassNo) {
		return "", ErrAlreadySelected
	}
	if sibling := s.selectedSibling(g); sibling != "" {
		warning = fmt.Sprintf("class %s of %s overlaps already selected class %s", g.ClassNo, g.CourseCode, sibling)
	}
	for _, sess := range g.Sessions {
		s.selections = append(s.selections, NewSelection(title, sess))
	}
	return warning, nil
}

// RemoveClass drops every selection of one class; reports how many were removed.
func (s *Store) RemoveClass(code, classNo string) int {
	prefix := code + "-" + classNo + "-"
	kept := s.selections[:0]
	removed := 0
	for _, sel := range s.selections {
		if strings.HasPrefix(sel.ID, prefix) {
			removed++
			continue
		}
		kept = append(kept, sel)
	}
	s.selections = kept
	return removed
}

func (s *Store) Clear() { s.selections = nil }

func (s *Store) Len() int { return len(s.selections) }

// Selections returns a copy of the ordered selection list.
func (s *Store) Selections() []SelectedSession {
	res := make([]SelectedSession, len(s.selections))
	copy(res, s.selections)
	return res
}

// HasClass reports whether the class is selected, treating combined class
// numbers ("01+02") as matching any of their original sections.
func (s *Store) HasClass(code, classNo string) bool {
	for _, sel := range s.selections {
		if sel.CourseCode == code && classNosOverlap(sel.ClassNo, classNo) {
			return true
		}
	}
	return false
}

func (s *Store) hasExactClass(code, classNo string) bool {
	for _, sel := range s.selections {
		if sel.CourseCode == code && sel.ClassNo == classNo {
			return true
		}
	}
	return false
}

// selectedSibling returns the class number of an already-selected class that
// shares an original section with g, excluding exact matches.
func (s *Store) selectedSibling(g ClassGroup) string {
	for _, sel := range s.selections {
		if sel.CourseCode != g.CourseCode || sel.ClassNo == g.ClassNo {
			continue
		}
		if classNosOverlap(sel.ClassNo, g.ClassNo) {
			return sel.ClassNo
		}
	}
	return ""
}

// classNosOverlap reports whether two class numbers share any original
// section once '+'-composites are split.
func classNosOverlap(a, b string) bool {
	if a == b {
		return true
	}
	for _, pa := range strings.Split(a, "+") {
		for _, pb := range strings.Split(b, "+") {
			if pa == pb {
				return true
			}
		}
	}
	return false
}

// Export serializes the full ordered selection list.
func (s *Store) Export() ([]byte, error) {
	data, err := json.Marshal(s.Selections())
	return data, errors.Wrap(err, "exporting selections")
}

// Import replaces the store's contents with the given snapshot. Only the
// outer shape is validated; field shapes are trusted as-is.
func (s *Store) Import(doc []byte) error {
	trimmed := bytes.TrimLeft(doc, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return ErrNotAnArray
	}
	var selections []SelectedSession
	if err := json.Unmarshal(doc, &selections); err != nil {
		return errors.Wrap(err, "importing selections")
	}
	s.selections = selections
	return nil
}

// Save persists the current snapshot under the store's owner key.
func (s *Store) Save(ctx context.Context) error {
	return s.persister.SaveSelections(ctx, s.sid, s.Selections())
}

// Load replaces the store's contents with the persisted snapshot.
func (s *Store) Load(ctx context.Context) error {
	selections, err := s.persister.LoadSelections(ctx, s.sid)
	if err != nil {
		return err
	}
	s.selections = selections
	return nil
}
