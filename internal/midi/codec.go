package midi

// SysExButtonType is the status byte given to SysEx button reports so they
// look like Note On messages on channel 2.
const SysExButtonType uint8 = 0x91

// Buttons reported through SysEx in special mode that are forwarded.
// Everything else (e.g. "16 levels") changes what the controller itself
// shows or does, so it stays local to the device.
const (
	ButtonFullLevel    uint8 = 0x00
	ButtonPreset       uint8 = 0x02
	ButtonCancel       uint8 = 0x05
	ButtonPreview      uint8 = 0x0D
	ButtonNoteRepeat   uint8 = 0x15 // led toggles internally
	ButtonTapTempo     uint8 = 0x16
	ButtonTimeDivision uint8 = 0x17
)

var forwardedButtons = map[uint8]bool{
	ButtonFullLevel:    true,
	ButtonPreset:       true,
	ButtonCancel:       true,
	ButtonPreview:      true,
	ButtonNoteRepeat:   true,
	ButtonTapTempo:     true,
	ButtonTimeDivision: true,
}

const (
	channelMessageLength = 3
	buttonReportLength   = 10
	buttonIDOffset       = 7
	buttonValueOffset    = 8
)

// Decode turns a raw frame from the controller into a Signal.
// 3-byte frames are channel messages and pass through untouched. 10-byte
// frames are SysEx button reports; only forwarded buttons decode.
// Any other frame returns ok=false.
func Decode(frame []byte) (sig Signal, ok bool) {
	switch len(frame) {
	case channelMessageLength:
		return Signal{Type: frame[0], Control: frame[1], Value: frame[2]}, true
	case buttonReportLength:
		button := frame[buttonIDOffset]
		if !isForwardedButton(button) {
			return Signal{}, false
		}
		return Signal{Type: SysExButtonType, Control: button, Value: frame[buttonValueOffset]}, true
	}
	return Signal{}, false
}

// isForwardedButton reports whether a SysEx button id decodes to a Signal.
func isForwardedButton(button uint8) bool {
	return forwardedButtons[button]
}
