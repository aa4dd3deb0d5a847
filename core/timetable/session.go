package timetable

import (
	"sort"
	"strings"
)

// Session is one scheduled weekly meeting of one class of one course.
// The course catalog (storage/database) is the source of truth for these.
type Session struct {
	ID         string  `db:"id" json:"id,omitempty"`
	CourseCode string  `db:"course_code" json:"code"`
	ClassNo    string  `db:"class_no" json:"class_no"`
	Weekday    Weekday `db:"weekday" json:"weekday"`
	StartTime  string  `db:"start_time" json:"start_time"` // "HH:MM"
	EndTime    string  `db:"end_time" json:"end_time"`     // "HH:MM"
	Room       string  `db:"room" json:"room"`
}

// ClassGroup aggregates all Sessions sharing one (course code, class number)
// identity: the unit a student adds to their timetable in one action.
type ClassGroup struct {
	CourseCode string    `json:"code"`
	ClassNo    string    `json:"class_no"`
	Sessions   []Session `json:"sessions"`
}

// IsCombined reports whether the class number is a '+'-delimited composite of
// merged original sections (e.g. "01+02" for cross-listed lectures).
func (g ClassGroup) IsCombined() bool {
	return strings.Contains(g.ClassNo, "+")
}

// OriginalClassNos returns the underlying section numbers of a combined
// class; for a plain class it returns the class number itself.
func (g ClassGroup) OriginalClassNos() []string {
	return strings.Split(g.ClassNo, "+")
}

// GroupSessions groups a flat session list into ClassGroups keyed by
// (course code, class number), sorted by course code then class number.
// A session with an empty class number groups under the "" key of its
// course; two sessions with the same key are two weekly meetings of the
// same class, never duplicates.
func GroupSessions(sessions []Session) []ClassGroup {
	type key struct{ code, classNo string }

	groups := make(map[key]*ClassGroup)
	order := make([]key, 0, len(sessions))

	for _, s := range sessions {
		k := key{s.CourseCode, s.ClassNo}
		g, ok := groups[k]
		if !ok {
			g = &ClassGroup{CourseCode: s.CourseCode, ClassNo: s.ClassNo}
			groups[k] = g
			order = append(order, k)
		}
		g.Sessions = append(g.Sessions, s)
	}

	res := make([]ClassGroup, 0, len(order))
	for _, k := range order {
		res = append(res, *groups[k])
	}
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].CourseCode != res[j].CourseCode {
			return res[i].CourseCode < res[j].CourseCode
		}
		return res[i].ClassNo < res[j].ClassNo
	})
	return res
}
