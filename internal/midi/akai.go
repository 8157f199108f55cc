package midi

import (
	"fmt"
	"strings"
)

// The mapping sent to the MPD26 stays as close as possible to the factory
// "Stylus" preset (number 12), so QLC+ projects written against Stylus keep
// working when the mapping could not be sent.

// SpecialMode makes the controller report every button press through SysEx,
// even for buttons without a MIDI assignment. The official editor runs the
// device in this mode.
var SpecialMode = []byte{0xF0, 0x47, 0x00, 0x78, 0x30, 0x00, 0x04, 0x01, 0x00, 0x00, 0x38, 0xF7}

var (
	mappingHeader = []byte{0xF0, 0x47, 0x00, 0x78, 0x10, 0x04, 0x59, 0x00}
	// probably the MIDI message type of the group of 5 transport buttons
	mappingFlags = []byte{0x20, 0x78, 0x01, 0x07, 0x01, 0x32, 0x3A, 0x03}
)

const (
	sysExEnd = 0xF7

	// MappingNameLength is the fixed width of the preset name on the device.
	MappingNameLength = 8

	PadsPerBank = 16
	BankCount   = 4
	PotiCount   = 6
	FaderCount  = 6

	padRecordLength   = 8
	potiRecordLength  = 7
	faderRecordLength = 5

	headerLength = 8
	flagsLength  = 8

	// MappingLength is the size of a generated mapping image.
	MappingLength = headerLength + MappingNameLength + flagsLength +
		BankCount*PadsPerBank*padRecordLength +
		PotiCount*potiRecordLength + FaderCount*faderRecordLength + 1
)

// Pad assigns a MIDI note to one pad position.
type Pad struct{ Value uint8 }

// Fader assigns a control number to one fader.
type Fader struct{ Value uint8 }

// Poti assigns a control number to one potentiometer.
type Poti struct{ Value uint8 }

// Layout is the full set of assignments written to the controller.
// Slice lengths are fixed by the hardware; Generate panics otherwise.
type Layout struct {
	Banks  [BankCount][]Pad
	Potis  []Poti  // bottom left, bottom right, middle left, middle right, top left, top right
	Faders []Fader // left to right
	// PadFlag is byte 4 of every pad record.
	PadFlag uint8
}

// StylusLayout returns the layout matching the Stylus preset: banks A-D
// cover notes 0x24-0x63 in contiguous blocks of 16.
func StylusLayout() Layout {
	var l Layout
	for b := 0; b < BankCount; b++ {
		pads := make([]Pad, PadsPerBank)
		for i := range pads {
			pads[i] = Pad{Value: uint8(0x24 + b*PadsPerBank + i)}
		}
		l.Banks[b] = pads
	}
	for _, cc := range []uint8{0x0F, 0x10, 0x0D, 0x0E, 0x0B, 0x0C} {
		l.Potis = append(l.Potis, Poti{Value: cc})
	}
	for cc := uint8(0x01); cc <= 0x06; cc++ {
		l.Faders = append(l.Faders, Fader{Value: cc})
	}
	l.PadFlag = 0x01
	return l
}

// Generate builds the SysEx image that reprograms the controller.
func (l Layout) Generate(name string) []byte {
	out := make([]byte, 0, MappingLength)
	out = append(out, mappingHeader...)
	out = append(out, mappingName(name)...)
	out = append(out, mappingFlags...)
	for _, bank := range l.Banks {
		out = append(out, l.padBank(bank)...)
	}
	out = append(out, potiRecords(l.Potis)...)
	out = append(out, faderRecords(l.Faders)...)
	return append(out, sysExEnd)
}

// GenerateMapping builds the Stylus-compatible mapping image for name.
func GenerateMapping(name string) []byte {
	return StylusLayout().Generate(name)
}

func (l Layout) padBank(pads []Pad) []byte {
	if len(pads) != PadsPerBank {
		panic(fmt.Sprintf("akai: pad bank needs %d pads, got %d", PadsPerBank, len(pads)))
	}
	out := make([]byte, 0, PadsPerBank*padRecordLength)
	for _, p := range pads {
		out = append(out, 0x03, 0x00, p.Value, 0x00, l.PadFlag, 0x00, 0x00, 0x00)
	}
	return out
}

func potiRecords(potis []Poti) []byte {
	if len(potis) != PotiCount {
		panic(fmt.Sprintf("akai: need %d potis, got %d", PotiCount, len(potis)))
	}
	out := make([]byte, 0, PotiCount*potiRecordLength)
	for _, p := range potis {
		out = append(out, 0x00, 0x01, p.Value, 0x00, 0x7F, 0x7F, 0x7F)
	}
	return out
}

func faderRecords(faders []Fader) []byte {
	if len(faders) != FaderCount {
		panic(fmt.Sprintf("akai: need %d faders, got %d", FaderCount, len(faders)))
	}
	out := make([]byte, 0, FaderCount*faderRecordLength)
	for _, f := range faders {
		out = append(out, 0x00, 0x01, f.Value, 0x00, 0x7F)
	}
	return out
}

// mappingName pads or truncates name to MappingNameLength characters.
// Names that still encode to more bytes (non-ASCII) are a programming error.
func mappingName(name string) []byte {
	b := fitName(name)
	if len(b) != MappingNameLength {
		panic(fmt.Sprintf("akai: mapping name %q is %d bytes, want %d", name, len(b), MappingNameLength))
	}
	return b
}

func fitName(name string) []byte {
	runes := []rune(name + strings.Repeat(" ", MappingNameLength))
	return []byte(string(runes[:MappingNameLength]))
}

// ValidateMappingName reports whether name can be written to the device.
func ValidateMappingName(name string) error {
	if n := len(fitName(name)); n != MappingNameLength {
		return fmt.Errorf("mapping name %q needs %d bytes, the device stores %d", name, n, MappingNameLength)
	}
	return nil
}
