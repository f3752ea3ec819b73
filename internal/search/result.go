package search

import (
	"fmt"

	"github.com/lox/bouncesearch/internal/physics"
)

// Result is the longest run found so far, plus run accounting.
//
// Index is the winning seed's position in the canonical enumeration. Together
// with StartX and StartY it orders equal frame counts: the earliest position
// wins, so merging partial results gives the same answer whatever the worker
// count or completion order.
type Result struct {
	Found  bool   `json:"found"`
	Seed   uint16 `json:"seed"`
	StartX uint8  `json:"start_x"`
	StartY uint8  `json:"start_y"`
	Frames int    `json:"frames"`
	Index  int    `json:"index"`

	Runs                uint64      `json:"runs"`
	NonTerminating      uint64      `json:"non_terminating"`
	FirstNonTerminating *Diagnostic `json:"first_non_terminating,omitempty"`
}

// Diagnostic records a configuration that reached the frame bound.
type Diagnostic struct {
	Index   int    `json:"index"`
	Seed    uint16 `json:"seed"`
	XOffset uint8  `json:"x_offset"`
	YOffset uint8  `json:"y_offset"`
	Frames  int    `json:"frames"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("seed 0x%04X offsets (0x%02X, 0x%02X) after %d frames", d.Seed, d.XOffset, d.YOffset, d.Frames)
}

// position packs the canonical ordering key of a run.
func position(index int, x, y uint8) int64 {
	return int64(index)<<16 | int64(x)<<8 | int64(y)
}

func (r *Result) position() int64 {
	return position(r.Index, r.StartX, r.StartY)
}

// record accounts for one completed run.
func (r *Result) record(index int, seed uint16, x, y uint8, frames int) {
	r.Runs++
	r.offer(index, seed, x, y, frames)
}

func (r *Result) offer(index int, seed uint16, x, y uint8, frames int) {
	if r.Found && (frames < r.Frames || frames == r.Frames && position(index, x, y) >= r.position()) {
		return
	}
	r.Found = true
	r.Seed = seed
	r.StartX = x
	r.StartY = y
	r.Frames = frames
	r.Index = index
}

// recordNonTerminating accounts for one run that reached the frame bound.
func (r *Result) recordNonTerminating(d Diagnostic) {
	r.Runs++
	r.NonTerminating++
	r.offerNonTerminating(d)
}

// recordNonTerminatingSeed accounts for every offset pair of a seed whose runs
// all reach the frame bound of maxFrames.
func (r *Result) recordNonTerminatingSeed(index int, seed uint16, maxFrames int) {
	const runs = OffsetCount * OffsetCount
	r.Runs += runs
	r.NonTerminating += runs
	r.offerNonTerminating(Diagnostic{Index: index, Seed: seed, Frames: maxFrames})
}

func (r *Result) offerNonTerminating(d Diagnostic) {
	first := r.FirstNonTerminating
	if first != nil && position(d.Index, d.XOffset, d.YOffset) >= position(first.Index, first.XOffset, first.YOffset) {
		return
	}
	r.FirstNonTerminating = &d
}

// Merge folds another partial result into r.
func (r *Result) Merge(o Result) {
	r.Runs += o.Runs
	r.NonTerminating += o.NonTerminating
	if o.FirstNonTerminating != nil {
		r.offerNonTerminating(*o.FirstNonTerminating)
	}
	if o.Found {
		r.offer(o.Index, o.Seed, o.StartX, o.StartY, o.Frames)
	}
}
