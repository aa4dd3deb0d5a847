package timetable

import "strings"

// campusNames maps the 3-letter room prefix to a campus display name.
var campusNames = map[string]string{
	"ADC": "Admiralty Learning Centre",
	"CIT": "CITA Learning Centre",
	"HPC": "HPSHCC Campus",
	"KEC": "Kowloon East Campus",
	"KWC": "Kowloon West Campus",
	"UNC": "United Centre",
}

// CampusFor resolves a room string to its campus name; unknown prefixes fall
// back to the raw room text.
func CampusFor(room string) string {
	if len(room) < 3 {
		return room
	}
	if name, ok := campusNames[strings.ToUpper(room[:3])]; ok {
		return name
	}
	return room
}
