package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/bouncesearch/internal/search"
)

const spinnerInterval = 100 * time.Millisecond

// BatchProgressReporter prints one line per completed batch, with a spinner
// while a batch runs.
type BatchProgressReporter struct {
	mu      sync.Mutex
	w       io.Writer
	spinner *Spinner
}

// NewBatchProgressReporter creates a reporter writing to w.
func NewBatchProgressReporter(w io.Writer, clock quartz.Clock) *BatchProgressReporter {
	return &BatchProgressReporter{
		w:       w,
		spinner: NewSpinner(w, clock),
	}
}

// OnSearchStart is called once before the first batch
func (r *BatchProgressReporter) OnSearchStart(totalSeeds, resumedSeeds int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "Searching %d seeds × %d offsets\n", totalSeeds, search.OffsetCount*search.OffsetCount)
	if resumedSeeds > 0 {
		fmt.Fprintf(r.w, "Resuming from checkpoint at %d/%d seeds\n", resumedSeeds, totalSeeds)
	}
}

// OnBatchStart is called when a batch starts
func (r *BatchProgressReporter) OnBatchStart(batch, totalBatches, seeds int) {
	r.spinner.Stop()
	r.spinner.Start(fmt.Sprintf("Batch %d/%d (%d seeds)", batch, totalBatches, seeds))
}

// OnBatchComplete is called when a batch completes
func (r *BatchProgressReporter) OnBatchComplete(stats search.BatchStats) {
	r.spinner.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, " ✓ Batch %d/%d complete (%.1fs) %d/%d seeds (%.0f%%)",
		stats.Batch, stats.TotalBatches, stats.BatchElapsed.Seconds(),
		stats.SeedsDone, stats.TotalSeeds, stats.Percent())
	if stats.Best.Found {
		fmt.Fprintf(r.w, " best %d frames", stats.Best.Frames)
	}
	fmt.Fprintln(r.w)
}

// Finish shows the final summary
func (r *BatchProgressReporter) Finish(result search.Result) {
	r.spinner.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "\n✅ Completed %d runs", result.Runs)
	if result.NonTerminating > 0 {
		fmt.Fprintf(r.w, " (%d hit the frame bound)", result.NonTerminating)
	}
	fmt.Fprint(r.w, "\n\n")
}

// Spinner shows an animated spinner during batch execution
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	clock   quartz.Clock
	frames  []string
	message string
	cancel  context.CancelFunc
	waiter  quartz.Waiter
}

// NewSpinner creates a new spinner
func NewSpinner(w io.Writer, clock quartz.Clock) *Spinner {
	return &Spinner{
		w:      w,
		clock:  clock,
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins spinning with the given message
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.message = message

	frame := 0
	s.waiter = s.clock.TickerFunc(ctx, spinnerInterval, func() error {
		fmt.Fprintf(s.w, "\r%s %s", s.frames[frame], message)
		frame = (frame + 1) % len(s.frames)
		return nil
	}, "spinner")
}

// Stop stops the spinner and clears its line
func (s *Spinner) Stop() {
	s.mu.Lock()
	cancel, waiter, message := s.cancel, s.waiter, s.message
	s.cancel, s.waiter = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	_ = waiter.Wait()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(message)+4))
}

// Ensure interface compliance
var _ search.ProgressReporter = (*BatchProgressReporter)(nil)
