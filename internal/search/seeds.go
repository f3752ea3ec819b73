package search

import "github.com/lox/bouncesearch/internal/rng"

// SeedOrder returns the canonical seed enumeration. It starts with the orbit
// of start under a single register step, which is every value the game can
// reach from start. Unless orbitOnly is set, it continues with each remaining
// cycle of the register in ascending order of its smallest member, so every
// register value appears exactly once.
func SeedOrder(start uint16, orbitOnly bool) []uint16 {
	order := rng.Orbit(start)
	if orbitOnly {
		return order
	}

	var seen [rng.StateCount]bool
	for _, v := range order {
		seen[v] = true
	}
	for s := 0; s < rng.StateCount; s++ {
		if seen[s] {
			continue
		}
		for _, v := range rng.Orbit(uint16(s)) {
			seen[v] = true
			order = append(order, v)
		}
	}
	return order
}
