package serialio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feedString(a *Assembler, s string) []string {
	var frames []string
	a.FeedBytes([]byte(s), func(f string) { frames = append(frames, f) })
	return frames
}

func TestAssembler_SingleFrame(t *testing.T) {
	var a Assembler
	assert.Equal(t, []string{"1234567"}, feedString(&a, "1234567;"))
}

func TestAssembler_ShortFrameDropped(t *testing.T) {
	var a Assembler
	assert.Equal(t, []string{"4567890"}, feedString(&a, "123;4567890;"))
}

func TestAssembler_LongFrameDropped(t *testing.T) {
	var a Assembler
	assert.Empty(t, feedString(&a, "12345678;"))
	assert.Equal(t, []string{"7654321"}, feedString(&a, "7654321;"))
}

func TestAssembler_NoiseIgnored(t *testing.T) {
	var a Assembler
	assert.Equal(t, []string{"1234567"}, feedString(&a, "12\r\n34x56-7;"))
	assert.Empty(t, feedString(&a, ";;;"))
}

func TestAssembler_SplitAcrossWrites(t *testing.T) {
	var a Assembler
	assert.Empty(t, feedString(&a, "123"))
	assert.Empty(t, feedString(&a, "45"))
	assert.Equal(t, []string{"1234567", "1111111"}, feedString(&a, "67;1111111;22"))
}

func TestAssembler_Feed(t *testing.T) {
	var a Assembler
	for _, r := range "999999" {
		_, ok := a.Feed(r)
		assert.False(t, ok)
	}
	a.Feed('9')
	frame, ok := a.Feed(';')
	assert.True(t, ok)
	assert.Equal(t, "9999999", frame)

	a.Feed('1')
	a.Reset()
	_, ok = a.Feed(';')
	assert.False(t, ok)
}
