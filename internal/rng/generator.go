// Package rng replays the game's 16-bit pseudo-random register.
//
// The register is a single uint16. Its "high" byte is always bits 8-15 and its
// "low" byte bits 0-7; byte order is fixed by these shifts and never depends on
// the host's memory layout.
package rng

// InitialSeed is the register value the search starts from.
const InitialSeed uint16 = 0x3959

// Generator holds the register state. The zero value is a register holding 0,
// which is a fixed point of the update rule.
type Generator struct {
	v uint16
}

// New creates a generator holding seed.
func New(seed uint16) *Generator {
	return &Generator{v: seed}
}

// Value returns the full register.
func (g *Generator) Value() uint16 { return g.v }

// Set overwrites the register.
func (g *Generator) Set(v uint16) { g.v = v }

// High returns bits 8-15 of the register.
func (g *Generator) High() uint8 { return uint8(g.v >> 8) }

// Low returns bits 0-7 of the register.
func (g *Generator) Low() uint8 { return uint8(g.v) }

// LowByte returns the byte sampled by the termination test.
func (g *Generator) LowByte() uint8 { return g.Low() }

// Step applies the update rule n times. n <= 0 leaves the register untouched.
func (g *Generator) Step(n int) {
	v := g.v
	for ; n > 0; n-- {
		v = Next(v)
	}
	g.v = v
}

// Next returns the register value that follows v.
//
// Both output bytes come from the same pre-update value. The low byte adds v to
// the shifted product before truncation; the formula is kept as the game
// computes it rather than folded into a single expression.
func Next(v uint16) uint16 {
	raw := uint32(v) * 3
	newHigh := uint8(raw >> 8)
	newLow := uint8(raw/256 + uint32(v))
	return uint16(newHigh)<<8 | uint16(newLow)
}
