package physics

import "fmt"

// Fixed24 is a 24-bit fixed-point coordinate: a 16-bit pixel part in bits
// 8-23 and an 8-bit sub-pixel part in bits 0-7.
type Fixed24 uint32

const (
	fixedMask = 0xFFFFFF
	subMask   = 0xFF
)

// NewFixed24 builds a coordinate from its pixel and sub-pixel parts.
func NewFixed24(pixel uint16, sub uint8) Fixed24 {
	return Fixed24(uint32(pixel)<<8 | uint32(sub))
}

// Pixel returns the integer part.
func (f Fixed24) Pixel() uint16 { return uint16(f >> 8) }

// Sub returns the sub-pixel part.
func (f Fixed24) Sub() uint8 { return uint8(f & subMask) }

// Add applies a signed velocity, wrapping within 24 bits.
func (f Fixed24) Add(v int32) Fixed24 {
	return Fixed24(uint32(int32(f)+v) & fixedMask)
}

// WithPixel rewrites the integer part from to, keeping f's sub-pixel bits.
func (f Fixed24) WithPixel(to Fixed24) Fixed24 {
	return to&^subMask | f&subMask
}

func (f Fixed24) String() string {
	return fmt.Sprintf("%#06x", uint32(f))
}
