// Package serialio reads button codes from the serial remote receiver.
package serialio

import "strings"

const (
	// FrameLength is the number of digits in a valid frame.
	FrameLength = 7
	// Terminator ends every frame.
	Terminator = ';'
)

// Assembler rebuilds ";"-terminated digit frames from a character stream.
// Frames of the wrong length are noise and dropped silently; characters
// other than digits and the terminator are skipped.
type Assembler struct {
	buf strings.Builder
}

// Feed consumes one character and returns a frame when r completes one.
func (a *Assembler) Feed(r rune) (string, bool) {
	switch {
	case r >= '0' && r <= '9':
		a.buf.WriteRune(r)
	case r == Terminator:
		frame := a.buf.String()
		a.buf.Reset()
		if len(frame) == FrameLength {
			return frame, true
		}
	}
	return "", false
}

// FeedBytes runs Feed over p and calls emit for each complete frame.
func (a *Assembler) FeedBytes(p []byte, emit func(string)) {
	for _, b := range p {
		if frame, ok := a.Feed(rune(b)); ok {
			emit(frame)
		}
	}
}

// Reset drops any partial frame.
func (a *Assembler) Reset() {
	a.buf.Reset()
}
