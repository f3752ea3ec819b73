package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixed24Parts(t *testing.T) {
	t.Parallel()

	f := NewFixed24(0x14AC, 0x41)
	assert.Equal(t, Fixed24(0x14AC41), f)
	assert.Equal(t, uint16(0x14AC), f.Pixel())
	assert.Equal(t, uint8(0x41), f.Sub())
	assert.Equal(t, "0x14ac41", f.String())
}

func TestFixed24Add(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Fixed24(0x14A641), Fixed24(0x14AC41).Add(-Speed))
	assert.Equal(t, Fixed24(0x14B241), Fixed24(0x14AC41).Add(Speed))
	assert.Equal(t, Fixed24(0xFFFFF0), Fixed24(0x000010).Add(-0x20), "wraps within 24 bits")
	assert.Equal(t, Fixed24(0x000010), Fixed24(0xFFFFF0).Add(0x20))
}

func TestFixed24WithPixel(t *testing.T) {
	t.Parallel()

	for sub := 0; sub < 256; sub++ {
		f := NewFixed24(0x1446, uint8(sub))
		got := f.WithPixel(0x144C80)
		assert.Equal(t, uint16(0x144C), got.Pixel())
		assert.Equal(t, uint8(sub), got.Sub())
	}
}
