package midi

import "fmt"

// Signal is the normalized form of every event coming from the controller:
// a MIDI channel message, or a SysEx button report dressed up as one.
type Signal struct {
	Type    uint8
	Control uint8
	Value   uint8
}

// Bytes encodes the signal as a 3-byte MIDI channel message.
func (s Signal) Bytes() []byte {
	return []byte{s.Type, s.Control, s.Value}
}

func (s Signal) String() string {
	return fmt.Sprintf("Signal(type=%02X control=%02X value=%02X)", s.Type, s.Control, s.Value)
}
