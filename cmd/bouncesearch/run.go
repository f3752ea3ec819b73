package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/bouncesearch/internal/config"
	"github.com/lox/bouncesearch/internal/physics"
	"github.com/lox/bouncesearch/internal/report"
	"github.com/lox/bouncesearch/internal/search"
)

// RunCmd replays one configuration.
type RunCmd struct {
	Seed      string `arg:"" help:"Register seed, e.g. 0x45EA"`
	X         string `arg:"" optional:"" default:"0" help:"Sub-pixel X offset (0-255)"`
	Y         string `arg:"" optional:"" default:"0" help:"Sub-pixel Y offset (0-255)"`
	MaxFrames int    `default:"${max_frames}" help:"Frame bound, 0 disables"`
	FrameRate int    `default:"60" help:"Frames per second used to convert frames to time"`
	Trace     bool   `help:"Print every frame"`
}

func (c *RunCmd) Run(logger *log.Logger) error {
	return c.run(os.Stdout, logger)
}

func (c *RunCmd) run(w io.Writer, logger *log.Logger) error {
	seed, err := config.ParseSeed(c.Seed)
	if err != nil {
		return err
	}
	x, err := config.ParseOffset(c.X)
	if err != nil {
		return err
	}
	y, err := config.ParseOffset(c.Y)
	if err != nil {
		return err
	}

	var observer physics.Observer
	if c.Trace {
		observer = func(e physics.FrameEvent) {
			fmt.Fprintln(w, formatEvent(e))
		}
	}

	logger.Debug("Replaying", "seed", c.Seed, "x", x, "y", y, "max_frames", c.MaxFrames)
	frames, err := search.Replay(seed, x, y, c.MaxFrames, observer)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "seed 0x%04X offsets (0x%02X, 0x%02X): %d frames (%.3fs @ %d fps)\n",
		seed, x, y, frames, report.Duration(frames, c.FrameRate).Seconds(), c.FrameRate)
	return nil
}

// formatEvent renders one traced frame.
func formatEvent(e physics.FrameEvent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "frame %5d  x=%s y=%s  rng=0x%04X", e.Frame, e.Actor.X, e.Actor.Y, e.Register)
	if e.Side != physics.CollisionNone {
		fmt.Fprintf(&sb, "  hit %s", e.Side)
		if e.Initial {
			sb.WriteString(" (initial)")
		}
	}
	if e.Sampled {
		fmt.Fprintf(&sb, "  sample=0x%02X", e.Sample)
	}
	if e.Terminated {
		sb.WriteString("  END")
	}
	return sb.String()
}
