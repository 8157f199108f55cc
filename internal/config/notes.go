package config

import "strconv"

// NoteNames lists the note bytes offered for bindings with the labels the
// lighting software shows for them.
var NoteNames = [...]string{
	"129", "130", "131", "132", "133", "134",
	"135", "136", "137", "138", "139", "140",
}

// NoteName returns the label for note, or its decimal value outside the table.
func NoteName(note uint8) string {
	if int(note) < len(NoteNames) {
		return NoteNames[note]
	}
	return strconv.Itoa(int(note))
}

// ParseNoteName is the inverse of NoteName for labelled notes.
func ParseNoteName(name string) (uint8, bool) {
	for i, n := range NoteNames {
		if n == name {
			return uint8(i), true
		}
	}
	return 0, false
}
