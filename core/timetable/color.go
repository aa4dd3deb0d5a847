package timetable

// palette is the fixed set of display colors assigned to courses.
var palette = [...]string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444",
	"#8b5cf6", "#ec4899", "#14b8a6", "#f97316",
}

// ColorFor deterministically maps a course code to one of the palette
// colors. The hash intentionally reproduces the historical JS one
// (ch + (hash << 5) - hash over 32-bit ints) so colors stay stable for
// users migrating saved timetables. Collisions are fine; this is cosmetic.
func ColorFor(courseCode string) string {
	var hash int32
	for _, ch := range courseCode {
		hash = int32(ch) + (hash << 5) - hash
	}
	idx := hash % int32(len(palette))
	if idx < 0 {
		idx = -idx
	}
	return palette[idx]
}
