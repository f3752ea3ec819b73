package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/bouncesearch/internal/config"
	"github.com/lox/bouncesearch/internal/rng"
)

// CyclesCmd prints how the register's update rule partitions the state space.
type CyclesCmd struct {
	Seed  string `default:"0x3959" help:"Seed whose orbit is described"`
	Limit int    `default:"10" help:"Number of longest cycles to list"`
}

func (c *CyclesCmd) Run() error {
	return c.run(os.Stdout)
}

func (c *CyclesCmd) run(w io.Writer) error {
	seed, err := config.ParseSeed(c.Seed)
	if err != nil {
		return err
	}

	cycles := rng.Cycles()
	fixed := 0
	for _, cy := range cycles {
		if cy.Length == 1 {
			fixed++
		}
	}

	orbit := rng.Orbit(seed)
	orbitMin := seed
	for _, v := range orbit {
		orbitMin = min(orbitMin, v)
	}

	fmt.Fprintf(w, "%d cycles over %d values (%d fixed points)\n", len(cycles), rng.StateCount, fixed)
	fmt.Fprintf(w, "seed 0x%04X lies on a cycle of length %d (min 0x%04X)\n\n", seed, len(orbit), orbitMin)

	fmt.Fprintf(w, "%8s  %6s\n", "length", "min")
	for i, cy := range cycles {
		if c.Limit > 0 && i >= c.Limit {
			break
		}
		fmt.Fprintf(w, "%8d  0x%04X\n", cy.Length, cy.Min)
	}
	return nil
}
