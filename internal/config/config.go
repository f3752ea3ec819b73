// Package config loads the bouncesearch HCL configuration file.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/bouncesearch/internal/physics"
	"github.com/lox/bouncesearch/internal/rng"
	"github.com/lox/bouncesearch/internal/search"
)

// Report output formats.
const (
	FormatSummary = "summary"
	FormatJSON    = "json"
)

// DefaultFrameRate converts frame counts to seconds.
const DefaultFrameRate = 60

// Config is the complete configuration file. Both blocks are optional.
type Config struct {
	Search *SearchSettings `hcl:"search,block"`
	Report *ReportSettings `hcl:"report,block"`
}

// SearchSettings configures the exhaustive search.
type SearchSettings struct {
	InitialSeed string `hcl:"initial_seed,optional"`
	OrbitOnly   bool   `hcl:"orbit_only,optional"`
	MaxSeeds    int    `hcl:"max_seeds,optional"`
	Workers     int    `hcl:"workers,optional"`
	BatchSeeds  int    `hcl:"batch_seeds,optional"`
	MaxFrames   *int   `hcl:"max_frames,optional"`
	Checkpoint  string `hcl:"checkpoint,optional"`
	Heartbeat   string `hcl:"heartbeat,optional"`
}

// ReportSettings configures how the answer is printed.
type ReportSettings struct {
	FrameRate int    `hcl:"frame_rate,optional"`
	Format    string `hcl:"format,optional"`
	Out       string `hcl:"out,optional"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename. An empty name or a missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if filename == "" {
		return Default(), nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

// Parse decodes configuration source held in memory.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var config Config
	if diags := gohcl.DecodeBody(body, nil, &config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills every unset value.
func (c *Config) applyDefaults() {
	if c.Search == nil {
		c.Search = &SearchSettings{}
	}
	if c.Report == nil {
		c.Report = &ReportSettings{}
	}

	s := c.Search
	if s.InitialSeed == "" {
		s.InitialSeed = fmt.Sprintf("%#04x", rng.InitialSeed)
	}
	if s.Workers == 0 {
		s.Workers = runtime.NumCPU()
	}
	if s.BatchSeeds == 0 {
		s.BatchSeeds = 256
	}
	if s.MaxFrames == nil {
		n := physics.DefaultMaxFrames
		s.MaxFrames = &n
	}
	if s.Heartbeat == "" {
		s.Heartbeat = "1m"
	}

	r := c.Report
	if r.FrameRate == 0 {
		r.FrameRate = DefaultFrameRate
	}
	if r.Format == "" {
		r.Format = FormatSummary
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.Search.Seed(); err != nil {
		return err
	}
	if _, err := c.Search.HeartbeatInterval(); err != nil {
		return err
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("invalid workers: %d", c.Search.Workers)
	}
	if c.Search.BatchSeeds < 1 {
		return fmt.Errorf("invalid batch_seeds: %d", c.Search.BatchSeeds)
	}
	if c.Search.MaxSeeds < 0 {
		return fmt.Errorf("invalid max_seeds: %d", c.Search.MaxSeeds)
	}
	if *c.Search.MaxFrames < 0 {
		return fmt.Errorf("invalid max_frames: %d", *c.Search.MaxFrames)
	}
	if c.Report.FrameRate < 1 {
		return fmt.Errorf("invalid frame_rate: %d", c.Report.FrameRate)
	}
	switch c.Report.Format {
	case FormatSummary, FormatJSON:
	default:
		return fmt.Errorf("invalid format %q (want %q or %q)", c.Report.Format, FormatSummary, FormatJSON)
	}
	return nil
}

// Seed parses InitialSeed. Decimal, 0x hex, 0o octal and 0b binary are
// accepted.
func (s *SearchSettings) Seed() (uint16, error) {
	return ParseSeed(s.InitialSeed)
}

// HeartbeatInterval parses Heartbeat. "0" disables the heartbeat.
func (s *SearchSettings) HeartbeatInterval() (time.Duration, error) {
	d, err := time.ParseDuration(s.Heartbeat)
	if err != nil {
		return 0, fmt.Errorf("invalid heartbeat %q: %w", s.Heartbeat, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid heartbeat %q: negative", s.Heartbeat)
	}
	return d, nil
}

// ParseSeed parses a 16-bit register value.
func ParseSeed(v string) (uint16, error) {
	n, err := strconv.ParseUint(v, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q: %w", v, err)
	}
	return uint16(n), nil
}

// ParseOffset parses an 8-bit sub-pixel offset.
func ParseOffset(v string) (uint8, error) {
	n, err := strconv.ParseUint(v, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", v, err)
	}
	return uint8(n), nil
}

// SearchConfig converts the file settings into a driver configuration.
func (c *Config) SearchConfig(logger *log.Logger) (search.Config, error) {
	if err := c.Validate(); err != nil {
		return search.Config{}, err
	}
	seed, _ := c.Search.Seed()
	heartbeat, _ := c.Search.HeartbeatInterval()

	cfg := search.DefaultConfig()
	cfg.InitialSeed = seed
	cfg.OrbitOnly = c.Search.OrbitOnly
	cfg.MaxSeeds = c.Search.MaxSeeds
	cfg.Workers = c.Search.Workers
	cfg.BatchSeeds = c.Search.BatchSeeds
	cfg.MaxFrames = *c.Search.MaxFrames
	cfg.CheckpointPath = c.Search.Checkpoint
	cfg.HeartbeatEvery = heartbeat
	cfg.Logger = logger
	return cfg, nil
}
