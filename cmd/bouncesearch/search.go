package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/bouncesearch/internal/config"
	"github.com/lox/bouncesearch/internal/fileutil"
	"github.com/lox/bouncesearch/internal/report"
	"github.com/lox/bouncesearch/internal/search"
	"github.com/lox/bouncesearch/internal/tui"
)

// SearchCmd runs the exhaustive search. Flags override the config file.
type SearchCmd struct {
	Config     string         `short:"c" default:"bouncesearch.hcl" help:"Path to HCL configuration file"`
	Seed       string         `help:"Initial register seed, e.g. 0x3959 (overrides config)"`
	Workers    int            `short:"w" help:"Parallel workers (overrides config)"`
	BatchSeeds int            `help:"Seeds per batch (overrides config)"`
	MaxSeeds   int            `help:"Stop after this many seeds, 0 searches all (overrides config)"`
	OrbitOnly  bool           `help:"Only search seeds reachable from the initial seed"`
	MaxFrames  *int           `help:"Per-run frame bound, 0 disables (overrides config)"`
	Checkpoint string         `help:"Checkpoint file used to resume an interrupted search (overrides config)"`
	Heartbeat  *time.Duration `help:"Interval between progress log lines, 0 disables (overrides config)"`
	Format     string         `short:"f" help:"Report format: summary or json (overrides config)"`
	Out        string         `short:"o" help:"Also write the report to this file (overrides config)"`
	FrameRate  int            `help:"Frames per second used to convert frames to time (overrides config)"`
	TUI        bool           `name:"tui" help:"Show a live progress view"`
	NoColor    bool           `help:"Disable coloured output"`
}

// apply copies every flag that was set onto cfg.
func (c *SearchCmd) apply(cfg *config.Config) {
	if c.Seed != "" {
		cfg.Search.InitialSeed = c.Seed
	}
	if c.Workers != 0 {
		cfg.Search.Workers = c.Workers
	}
	if c.BatchSeeds != 0 {
		cfg.Search.BatchSeeds = c.BatchSeeds
	}
	if c.MaxSeeds != 0 {
		cfg.Search.MaxSeeds = c.MaxSeeds
	}
	if c.OrbitOnly {
		cfg.Search.OrbitOnly = true
	}
	if c.MaxFrames != nil {
		n := *c.MaxFrames
		cfg.Search.MaxFrames = &n
	}
	if c.Checkpoint != "" {
		cfg.Search.Checkpoint = c.Checkpoint
	}
	if c.Heartbeat != nil {
		cfg.Search.Heartbeat = c.Heartbeat.String()
	}
	if c.Format != "" {
		cfg.Report.Format = c.Format
	}
	if c.Out != "" {
		cfg.Report.Out = c.Out
	}
	if c.FrameRate != 0 {
		cfg.Report.FrameRate = c.FrameRate
	}
}

func (c *SearchCmd) Run(logger *log.Logger) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.apply(cfg)

	searchCfg, err := cfg.SearchConfig(logger)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	clock := quartz.NewReal()
	searchCfg.Clock = clock

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	began := clock.Now()
	var (
		driver *search.Driver
		result search.Result
	)
	if c.TUI {
		driver, result, err = runWithTUI(ctx, cancel, searchCfg, logger)
	} else {
		searchCfg.Progress = NewBatchProgressReporter(os.Stderr, clock)
		driver, err = search.New(searchCfg)
		if err == nil {
			result, err = driver.Run(ctx)
		}
	}
	if err != nil {
		if driver != nil && errors.Is(err, context.Canceled) {
			logger.Warn("Search interrupted",
				"seeds_done", driver.SeedsDone(),
				"seeds_total", driver.TotalSeeds(),
				"best_frames", result.Frames,
				"checkpoint", searchCfg.CheckpointPath)
		}
		return err
	}

	rep := report.New(result, driver.TotalSeeds(), cfg.Report.FrameRate, clock.Since(began))
	return writeReport(os.Stdout, rep, cfg.Report, !c.NoColor)
}

// runWithTUI runs the search behind a Bubble Tea progress view. Logging is
// silenced while the view owns the terminal.
func runWithTUI(ctx context.Context, cancel context.CancelFunc, cfg search.Config, logger *log.Logger) (*search.Driver, search.Result, error) {
	model := tui.NewModel(logger, cancel)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))

	cfg.Progress = tui.NewReporter(program.Send)
	cfg.Logger = log.New(io.Discard)
	driver, err := search.New(cfg)
	if err != nil {
		return nil, search.Result{}, err
	}

	var (
		result search.Result
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = driver.Run(ctx)
		program.Send(tui.DoneMsg{Err: runErr})
	}()

	_, err = program.Run()
	// The view may be closed before the search finishes.
	cancel()
	<-done
	if err != nil {
		return driver, result, fmt.Errorf("progress view: %w", err)
	}
	return driver, result, runErr
}

// writeReport prints the report and, when settings.Out is set, writes an
// uncoloured copy to that file.
func writeReport(w io.Writer, rep *report.Report, settings *config.ReportSettings, color bool) error {
	if err := renderReport(w, rep, settings.Format, color); err != nil {
		return err
	}
	if settings.Out == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := renderReport(&buf, rep, settings.Format, false); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(settings.Out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func renderReport(w io.Writer, rep *report.Report, format string, color bool) error {
	if format == config.FormatJSON {
		return report.WriteJSON(w, rep)
	}
	return report.WriteSummary(w, rep, report.NewStyles(report.NewRenderer(w, color)))
}
