package rng

import "sort"

// StateCount is the number of distinct register values.
const StateCount = 1 << 16

// Orbit returns the values visited by repeated Step(1) starting at seed, in
// visiting order, stopping before seed recurs. Next is a bijection, so seed
// always recurs.
func Orbit(seed uint16) []uint16 {
	orbit := []uint16{seed}
	for v := Next(seed); v != seed; v = Next(v) {
		orbit = append(orbit, v)
	}
	return orbit
}

// Cycle describes one cycle of the update rule.
type Cycle struct {
	Min    uint16 // smallest member
	Length int
}

// Cycles partitions all register values into the cycles of the update rule,
// sorted by descending length and then ascending Min.
func Cycles() []Cycle {
	var seen [StateCount]bool
	var cycles []Cycle
	for s := 0; s < StateCount; s++ {
		if seen[s] {
			continue
		}
		c := Cycle{Min: uint16(s)}
		for v := uint16(s); !seen[v]; v = Next(v) {
			seen[v] = true
			c.Length++
		}
		cycles = append(cycles, c)
	}
	sort.SliceStable(cycles, func(i, j int) bool {
		if cycles[i].Length != cycles[j].Length {
			return cycles[i].Length > cycles[j].Length
		}
		return cycles[i].Min < cycles[j].Min
	})
	return cycles
}
