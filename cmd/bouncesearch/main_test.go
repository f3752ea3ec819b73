package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bouncesearch/internal/config"
	"github.com/lox/bouncesearch/internal/physics"
	"github.com/lox/bouncesearch/internal/report"
	"github.com/lox/bouncesearch/internal/search"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func parseCLI(t *testing.T, args ...string) *CLI {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, cliVars())
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli
}

func TestSearchFlagsOverrideConfig(t *testing.T) {
	cli := parseCLI(t, "search",
		"--config", filepath.Join(t.TempDir(), "missing.hcl"),
		"--seed", "0xD5C1",
		"--workers", "2",
		"--max-seeds", "4",
		"--orbit-only",
		"--max-frames", "0",
		"--heartbeat", "30s",
		"--format", "json",
		"--frame-rate", "50",
		"--tui")

	assert.Equal(t, "info", cli.LogLevel)
	assert.True(t, cli.Search.TUI)

	cfg, err := config.Load(cli.Search.Config)
	require.NoError(t, err)
	cli.Search.apply(cfg)

	searchCfg, err := cfg.SearchConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xD5C1), searchCfg.InitialSeed)
	assert.Equal(t, 2, searchCfg.Workers)
	assert.Equal(t, 4, searchCfg.MaxSeeds)
	assert.True(t, searchCfg.OrbitOnly)
	assert.Zero(t, searchCfg.MaxFrames)
	assert.Equal(t, 30*time.Second, searchCfg.HeartbeatEvery)
	assert.Equal(t, 256, searchCfg.BatchSeeds, "unset flags keep the config value")
	assert.Equal(t, config.FormatJSON, cfg.Report.Format)
	assert.Equal(t, 50, cfg.Report.FrameRate)
}

func TestSearchWithoutFlagsKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bouncesearch.hcl")
	require.NoError(t, os.WriteFile(path, []byte("search {\n  max_frames = 500\n  workers = 5\n}\n"), 0o644))

	cli := parseCLI(t, "search", "--config", path)
	cfg, err := config.Load(cli.Search.Config)
	require.NoError(t, err)
	cli.Search.apply(cfg)

	assert.Equal(t, 500, *cfg.Search.MaxFrames)
	assert.Equal(t, 5, cfg.Search.Workers)
	assert.False(t, cfg.Search.OrbitOnly)
}

func TestInvalidLogLevelRejected(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, cliVars())
	require.NoError(t, err)
	_, err = parser.Parse([]string{"--log-level", "loud", "cycles"})
	assert.Error(t, err)

	_, err = newLogger("debug")
	assert.NoError(t, err)
}

func TestRunCmd(t *testing.T) {
	t.Run("reports frames and duration", func(t *testing.T) {
		cli := parseCLI(t, "run", "0x45EA", "0x80", "0x80")

		var buf bytes.Buffer
		require.NoError(t, cli.Run.run(&buf, quietLogger()))
		assert.Equal(t, "seed 0x45EA offsets (0x80, 0x80): 299 frames (4.983s @ 60 fps)\n", buf.String())
	})

	t.Run("trace prints every frame", func(t *testing.T) {
		cli := parseCLI(t, "run", "0x3959", "--trace")

		var buf bytes.Buffer
		require.NoError(t, cli.Run.run(&buf, quietLogger()))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 17, "16 frames plus the summary")
		assert.True(t, strings.HasPrefix(lines[0], "frame     0"))
		assert.Contains(t, lines[15], "sample=0xB5")
		assert.Contains(t, lines[15], "END")
		assert.Contains(t, lines[16], "15 frames")
	})

	t.Run("non-terminating seed is an error", func(t *testing.T) {
		cli := parseCLI(t, "run", "0x0006", "--max-frames", "100")

		err := cli.Run.run(io.Discard, quietLogger())
		assert.ErrorIs(t, err, physics.ErrNonTerminating)
	})

	t.Run("frame bound defaults to the simulator bound", func(t *testing.T) {
		cli := parseCLI(t, "run", "0x3959")
		assert.Equal(t, physics.DefaultMaxFrames, cli.Run.MaxFrames)
	})

	t.Run("bad offset", func(t *testing.T) {
		cli := parseCLI(t, "run", "0x3959", "300")
		assert.ErrorContains(t, cli.Run.run(io.Discard, quietLogger()), "invalid offset")
	})
}

func TestCyclesCmd(t *testing.T) {
	cli := parseCLI(t, "cycles", "--limit", "3")

	var buf bytes.Buffer
	require.NoError(t, cli.Cycles.run(&buf))

	out := buf.String()
	assert.Contains(t, out, "115 cycles over 65536 values (86 fixed points)")
	assert.Contains(t, out, "seed 0x3959 lies on a cycle of length 43534 (min 0x0056)")
	assert.Contains(t, out, "   43534  0x0056\n")
	assert.Contains(t, out, "   11329  0x005A\n")
	assert.Contains(t, out, "    8501  0x005C\n")
	assert.NotContains(t, out, "0x4040")
}

func TestWriteReport(t *testing.T) {
	rep := report.New(search.Result{
		Found:  true,
		Seed:   0xD5C1,
		StartX: 0xC0,
		Frames: 392,
		Runs:   65536,
	}, 1, 60, time.Second)

	t.Run("json with file copy", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "answer.json")
		settings := &config.ReportSettings{Format: config.FormatJSON, FrameRate: 60, Out: out}

		var buf bytes.Buffer
		require.NoError(t, writeReport(&buf, rep, settings, true))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, buf.String(), string(data))

		var decoded report.Report
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "0xD5C1", decoded.Seed)
		assert.Equal(t, "0xC0", decoded.StartX)
		assert.Equal(t, "0x00", decoded.StartY)
		assert.Equal(t, 392, decoded.Frames)
	})

	t.Run("summary file is uncoloured", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "answer.txt")
		settings := &config.ReportSettings{Format: config.FormatSummary, FrameRate: 60, Out: out}

		require.NoError(t, writeReport(io.Discard, rep, settings, true))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "\x1b[")
		assert.Contains(t, string(data), "6.533s @ 60 fps")
	})
}
