package search

import (
	"context"
	"time"

	"github.com/coder/quartz"
)

// ProgressReporter receives search progress. Calls arrive from the goroutine
// running Driver.Run, never from workers.
type ProgressReporter interface {
	OnSearchStart(totalSeeds, resumedSeeds int)
	OnBatchStart(batch, totalBatches, seeds int)
	OnBatchComplete(stats BatchStats)
	Finish(result Result)
}

// BatchStats summarises the search after a batch.
type BatchStats struct {
	Batch          int
	TotalBatches   int
	SeedsDone      int
	TotalSeeds     int
	BatchElapsed   time.Duration
	Elapsed        time.Duration
	SeedsPerSecond float64
	Best           Result
}

// Percent returns the share of seeds searched.
func (s BatchStats) Percent() float64 {
	if s.TotalSeeds == 0 {
		return 100
	}
	return float64(s.SeedsDone) * 100 / float64(s.TotalSeeds)
}

// Remaining estimates the time left at the current rate.
func (s BatchStats) Remaining() time.Duration {
	if s.SeedsPerSecond <= 0 {
		return 0
	}
	left := float64(s.TotalSeeds - s.SeedsDone)
	return time.Duration(left / s.SeedsPerSecond * float64(time.Second))
}

type nopProgress struct{}

func (nopProgress) OnSearchStart(int, int) {}

func (nopProgress) OnBatchStart(int, int, int) {}

func (nopProgress) OnBatchComplete(BatchStats) {}

func (nopProgress) Finish(Result) {}

// seedRate returns seeds per second, or zero when no time has passed.
func seedRate(seeds int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(seeds) / elapsed.Seconds()
}

// heartbeat calls fn every interval until ctx is done. A zero interval
// disables it.
func heartbeat(ctx context.Context, clock quartz.Clock, interval time.Duration, fn func()) quartz.Waiter {
	if interval <= 0 {
		return nil
	}
	return clock.TickerFunc(ctx, interval, func() error {
		fn()
		return nil
	}, "search", "heartbeat")
}
