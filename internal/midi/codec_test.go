package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode_ChannelMessagePassesThrough(t *testing.T) {
	for _, frame := range [][]byte{
		{0x90, 0x24, 0x7F},
		{0x80, 0x24, 0x00},
		{0xB3, 0x0D, 0x40},
		{0x00, 0x00, 0x00},
		{0xFF, 0xFF, 0xFF},
	} {
		sig, ok := Decode(frame)
		assert.True(t, ok)
		assert.Equal(t, Signal{Type: frame[0], Control: frame[1], Value: frame[2]}, sig)
		assert.Equal(t, frame, sig.Bytes(), "encode(decode(x)) == x")
	}
}

func buttonReport(button, value uint8) []byte {
	return []byte{0xF0, 0x47, 0x00, 0x78, 0x40, 0x00, 0x02, button, value, 0xF7}
}

func TestDecode_ForwardedButtons(t *testing.T) {
	sig, ok := Decode(buttonReport(ButtonTapTempo, 0x01))
	assert.True(t, ok)
	assert.Equal(t, Signal{Type: 0x91, Control: 0x16, Value: 0x01}, sig)

	for _, b := range []uint8{0x00, 0x02, 0x05, 0x0D, 0x15, 0x16, 0x17} {
		sig, ok := Decode(buttonReport(b, 0x7F))
		assert.True(t, ok, "button %02X", b)
		assert.Equal(t, Signal{Type: SysExButtonType, Control: b, Value: 0x7F}, sig)
	}
}

func TestDecode_OtherButtonsIgnored(t *testing.T) {
	for b := 0; b < 256; b++ {
		_, ok := Decode(buttonReport(uint8(b), 1))
		assert.Equal(t, isForwardedButton(uint8(b)), ok, "button %02X", b)
	}
	_, ok := Decode(buttonReport(0x99, 1))
	assert.False(t, ok)
}

func TestDecode_OtherLengthsIgnored(t *testing.T) {
	for _, n := range []int{0, 1, 2, 4, 9, 11, 12} {
		_, ok := Decode(make([]byte, n))
		assert.False(t, ok, "length %d", n)
	}
	_, ok := Decode(SpecialMode)
	assert.False(t, ok)
}
