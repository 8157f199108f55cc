package midi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const banksOffset = headerLength + MappingNameLength + flagsLength

func TestGenerateMapping_Layout(t *testing.T) {
	img := GenerateMapping("Baustella")

	require.Len(t, img, MappingLength)
	assert.Equal(t, 609, MappingLength)
	assert.Equal(t, []byte{0xF0, 0x47, 0x00, 0x78, 0x10, 0x04, 0x59, 0x00}, img[:8])
	assert.Equal(t, []byte("Baustell"), img[8:16])
	assert.Equal(t, []byte{0x20, 0x78, 0x01, 0x07, 0x01, 0x32, 0x3A, 0x03}, img[16:24])
	assert.Equal(t, byte(0xF7), img[len(img)-1])
}

func TestGenerateMapping_PadBanks(t *testing.T) {
	img := GenerateMapping("Baustella")

	for bank := 0; bank < BankCount; bank++ {
		for pad := 0; pad < PadsPerBank; pad++ {
			off := banksOffset + (bank*PadsPerBank+pad)*padRecordLength
			want := []byte{0x03, 0x00, byte(0x24 + bank*16 + pad), 0x00, 0x01, 0x00, 0x00, 0x00}
			assert.Equal(t, want, img[off:off+padRecordLength], "bank %d pad %d", bank, pad)
		}
	}

	// pad 0 of bank B
	off := banksOffset + PadsPerBank*padRecordLength
	assert.Equal(t, byte(0x34), img[off+2])
}

func TestGenerateMapping_Trailer(t *testing.T) {
	img := GenerateMapping("Baustella")
	trailer := img[banksOffset+BankCount*PadsPerBank*padRecordLength:]

	want := []byte{
		0x00, 0x01, 0x0F, 0x00, 0x7F, 0x7F, 0x7F, 0x00,
		0x01, 0x10, 0x00, 0x7F, 0x7F, 0x7F, 0x00, 0x01,
		0x0D, 0x00, 0x7F, 0x7F, 0x7F, 0x00, 0x01, 0x0E,
		0x00, 0x7F, 0x7F, 0x7F, 0x00, 0x01, 0x0B, 0x00,
		0x7F, 0x7F, 0x7F, 0x00, 0x01, 0x0C, 0x00, 0x7F,
		0x7F, 0x7F, 0x00, 0x01, 0x01, 0x00, 0x7F, 0x00,
		0x01, 0x02, 0x00, 0x7F, 0x00, 0x01, 0x03, 0x00,
		0x7F, 0x00, 0x01, 0x04, 0x00, 0x7F, 0x00, 0x01,
		0x05, 0x00, 0x7F, 0x00, 0x01, 0x06, 0x00, 0x7F, 0xF7,
	}
	assert.Equal(t, want, trailer)
}

func TestGenerateMapping_NameOnlyChangesNameBytes(t *testing.T) {
	a := GenerateMapping("Baustella")
	b := GenerateMapping("Show")

	assert.Equal(t, []byte("Show    "), b[8:16])
	assert.True(t, bytes.Equal(a[:8], b[:8]))
	assert.True(t, bytes.Equal(a[16:], b[16:]))
	assert.True(t, bytes.Equal(GenerateMapping("Baustella"), a), "deterministic")
}

func TestGenerateMapping_ContractViolations(t *testing.T) {
	l := StylusLayout()
	l.Banks[1] = l.Banks[1][:15]
	assert.Panics(t, func() { l.Generate("x") })

	l = StylusLayout()
	l.Faders = l.Faders[:5]
	assert.Panics(t, func() { l.Generate("x") })

	l = StylusLayout()
	l.Potis = append(l.Potis, Poti{Value: 1})
	assert.Panics(t, func() { l.Generate("x") })

	assert.Panics(t, func() { GenerateMapping("Bühne") })
}

func TestValidateMappingName(t *testing.T) {
	assert.NoError(t, ValidateMappingName("Baustella"))
	assert.NoError(t, ValidateMappingName(""))
	assert.Error(t, ValidateMappingName("Bühne"))
}

func TestLayout_ChangedAssignment(t *testing.T) {
	l := StylusLayout()
	l.Banks[3][15] = Pad{Value: 0x10}
	img := l.Generate("Baustella")

	off := banksOffset + (3*PadsPerBank+15)*padRecordLength
	assert.Equal(t, byte(0x10), img[off+2])
}
