// Package search enumerates every (register seed, sub-pixel offset) start and
// keeps the configuration with the longest bounce sequence.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/bouncesearch/internal/physics"
	"github.com/lox/bouncesearch/internal/rng"
)

// OffsetCount is the number of sub-pixel offsets per axis.
const OffsetCount = 256

// Config controls a search.
type Config struct {
	InitialSeed uint16
	OrbitOnly   bool // only seeds reachable from InitialSeed
	MaxSeeds    int  // 0 searches every seed in the enumeration
	Workers     int
	BatchSeeds  int
	MaxFrames   int // per-run bound, 0 disables

	CheckpointPath string
	HeartbeatEvery time.Duration

	Logger   *log.Logger
	Clock    quartz.Clock
	Progress ProgressReporter
}

// DefaultConfig returns the configuration of a full search.
func DefaultConfig() Config {
	return Config{
		InitialSeed:    rng.InitialSeed,
		Workers:        runtime.NumCPU(),
		BatchSeeds:     256,
		MaxFrames:      physics.DefaultMaxFrames,
		HeartbeatEvery: time.Minute,
	}
}

// Validate ensures the configuration can run.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if c.BatchSeeds <= 0 {
		return errors.New("batch seeds must be > 0")
	}
	if c.MaxSeeds < 0 {
		return errors.New("max seeds cannot be negative")
	}
	if c.MaxFrames < 0 {
		return errors.New("max frames cannot be negative")
	}
	if c.HeartbeatEvery < 0 {
		return errors.New("heartbeat interval cannot be negative")
	}
	return nil
}

// Driver runs one exhaustive search.
type Driver struct {
	cfg       Config
	seeds     []uint16
	seedsDone atomic.Int64
	logger    *log.Logger
	clock     quartz.Clock
	progress  ProgressReporter
}

// New creates a driver for cfg.
func New(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seeds := SeedOrder(cfg.InitialSeed, cfg.OrbitOnly)
	if cfg.MaxSeeds > 0 && cfg.MaxSeeds < len(seeds) {
		seeds = seeds[:cfg.MaxSeeds]
	}

	d := &Driver{
		cfg:      cfg,
		seeds:    seeds,
		logger:   cfg.Logger,
		clock:    cfg.Clock,
		progress: cfg.Progress,
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	if d.clock == nil {
		d.clock = quartz.NewReal()
	}
	if d.progress == nil {
		d.progress = nopProgress{}
	}
	return d, nil
}

// TotalSeeds returns the number of seeds the driver will search.
func (d *Driver) TotalSeeds() int { return len(d.seeds) }

// SeedsDone returns the number of seeds fully searched so far, including
// seeds restored from a checkpoint. Safe to call while Run is in progress.
// Once Run returns it matches the completed batches, so it never counts seeds
// from an abandoned batch.
func (d *Driver) SeedsDone() int { return int(d.seedsDone.Load()) }

// Run searches every seed and offset pair. If ctx is cancelled the running
// batch is abandoned and Run returns the result of the completed batches with
// ctx.Err(); the checkpoint, when configured, covers exactly those batches.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	var result Result
	start := 0
	total := len(d.seeds)

	if d.cfg.CheckpointPath != "" {
		snap, err := loadCheckpoint(d.cfg.CheckpointPath, d.cfg, total)
		if err != nil {
			return result, err
		}
		if snap != nil {
			start = snap.SeedsDone
			result = snap.Result
			d.logger.Info("resuming search", "checkpoint", d.cfg.CheckpointPath, "seeds_done", start, "best_frames", result.Frames)
		}
	}
	d.seedsDone.Store(int64(start))
	resumed := start

	batchSize := d.cfg.BatchSeeds
	totalBatches := (total + batchSize - 1) / batchSize
	firstBatch := start / batchSize

	d.logger.Info("search starting",
		"seeds", total,
		"initial_seed", fmt.Sprintf("%#04x", d.cfg.InitialSeed),
		"workers", d.cfg.Workers,
		"batch_seeds", batchSize,
		"max_frames", d.cfg.MaxFrames)
	d.progress.OnSearchStart(total, start)

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	began := d.clock.Now()
	heartbeat(hbCtx, d.clock, d.cfg.HeartbeatEvery, func() {
		done := d.SeedsDone()
		elapsed := d.clock.Since(began)
		d.logger.Info("search progress",
			"seeds_done", done,
			"seeds_total", total,
			"seeds_per_sec", fmt.Sprintf("%.1f", seedRate(done-resumed, elapsed)))
	})

	for batch := firstBatch; start < total; batch++ {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("search cancelled", "seeds_done", start, "seeds_total", total)
			return result, err
		}

		end := min(start+batchSize, total)
		d.progress.OnBatchStart(batch+1, totalBatches, end-start)
		batchBegan := d.clock.Now()

		partial, err := d.runBatch(ctx, start, d.seeds[start:end])
		if err != nil {
			d.seedsDone.Store(int64(start))
			if ctx.Err() != nil {
				d.logger.Warn("search cancelled mid-batch", "seeds_done", start, "seeds_total", total)
			}
			return result, err
		}
		result.Merge(partial)
		start = end

		if d.cfg.CheckpointPath != "" {
			if err := saveCheckpoint(d.cfg.CheckpointPath, newCheckpoint(d.cfg, total, start, result)); err != nil {
				return result, err
			}
		}

		elapsed := d.clock.Since(began)
		stats := BatchStats{
			Batch:          batch + 1,
			TotalBatches:   totalBatches,
			SeedsDone:      start,
			TotalSeeds:     total,
			BatchElapsed:   d.clock.Since(batchBegan),
			Elapsed:        elapsed,
			SeedsPerSecond: seedRate(start-resumed, elapsed),
			Best:           result,
		}
		d.logger.Debug("batch complete",
			"batch", stats.Batch,
			"seeds_done", start,
			"best_seed", fmt.Sprintf("%#04x", result.Seed),
			"best_frames", result.Frames)
		d.progress.OnBatchComplete(stats)
	}

	if result.NonTerminating > 0 {
		d.logger.Warn("non-terminating configurations excluded",
			"count", result.NonTerminating,
			"first", result.FirstNonTerminating.String())
	}
	d.logger.Info("search complete",
		"runs", result.Runs,
		"seed", fmt.Sprintf("%#04x", result.Seed),
		"start_x", fmt.Sprintf("%#02x", result.StartX),
		"start_y", fmt.Sprintf("%#02x", result.StartY),
		"frames", result.Frames)
	d.progress.Finish(result)
	return result, nil
}

// runBatch searches seeds, whose first element sits at position offset in the
// enumeration. Seeds are striped across workers; each worker owns its own
// generator and simulator.
func (d *Driver) runBatch(ctx context.Context, offset int, seeds []uint16) (Result, error) {
	workers := min(d.cfg.Workers, len(seeds))
	partials := make([]Result, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			gen := rng.New(0)
			sim := physics.NewSimulator(gen, physics.DefaultBounds(), physics.WithMaxFrames(d.cfg.MaxFrames))
			for i := w; i < len(seeds); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				searchSeed(gen, sim, offset+i, seeds[i], &partials[w])
				d.seedsDone.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var merged Result
	for _, p := range partials {
		merged.Merge(p)
	}
	return merged, nil
}

// searchSeed runs every offset pair for one seed. Seeds that can never end a
// run are recorded as non-terminating without simulating them.
func searchSeed(gen *rng.Generator, sim *physics.Simulator, index int, seed uint16, r *Result) {
	if physics.NeverTerminates(seed) {
		r.recordNonTerminatingSeed(index, seed, sim.MaxFrames())
		return
	}
	simulateSeed(gen, sim, index, seed, r)
}

// simulateSeed runs every offset pair for one seed. The generator is pinned to
// seed before each run and restored afterwards, so offsets never advance the
// enumeration.
func simulateSeed(gen *rng.Generator, sim *physics.Simulator, index int, seed uint16, r *Result) {
	for x := 0; x < OffsetCount; x++ {
		for y := 0; y < OffsetCount; y++ {
			gen.Set(seed)
			frames, err := sim.Run(uint8(x), uint8(y))
			gen.Set(seed)
			if err != nil {
				r.recordNonTerminating(Diagnostic{
					Index:   index,
					Seed:    seed,
					XOffset: uint8(x),
					YOffset: uint8(y),
					Frames:  frames,
				})
				continue
			}
			r.record(index, seed, uint8(x), uint8(y), frames)
		}
	}
}

// Replay runs a single configuration, reporting every frame to observer when
// it is non-nil.
func Replay(seed uint16, x, y uint8, maxFrames int, observer physics.Observer) (int, error) {
	opts := []physics.Option{physics.WithMaxFrames(maxFrames)}
	if observer != nil {
		opts = append(opts, physics.WithObserver(observer))
	}
	sim := physics.NewSimulator(rng.New(seed), physics.DefaultBounds(), opts...)
	return sim.Run(x, y)
}
