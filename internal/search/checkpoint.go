package search

import (
	"errors"
	"fmt"
	"os"

	"github.com/lox/bouncesearch/internal/fileutil"
)

const checkpointFileVersion = 1

// ErrCheckpointMismatch is returned when a checkpoint was written by a search
// over a different seed space.
var ErrCheckpointMismatch = errors.New("checkpoint does not match search configuration")

type checkpointSnapshot struct {
	Version     int    `json:"version"`
	InitialSeed uint16 `json:"initial_seed"`
	OrbitOnly   bool   `json:"orbit_only"`
	TotalSeeds  int    `json:"total_seeds"`
	MaxFrames   int    `json:"max_frames"`
	SeedsDone   int    `json:"seeds_done"`
	Result      Result `json:"result"`
}

func newCheckpoint(cfg Config, totalSeeds, seedsDone int, result Result) *checkpointSnapshot {
	return &checkpointSnapshot{
		Version:     checkpointFileVersion,
		InitialSeed: cfg.InitialSeed,
		OrbitOnly:   cfg.OrbitOnly,
		TotalSeeds:  totalSeeds,
		MaxFrames:   cfg.MaxFrames,
		SeedsDone:   seedsDone,
		Result:      result,
	}
}

// saveCheckpoint persists search progress. Worker count and batch size are
// not recorded: they never change the result.
func saveCheckpoint(path string, snap *checkpointSnapshot) error {
	if err := fileutil.WriteJSONAtomic(path, snap); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// loadCheckpoint reads a checkpoint written for cfg. A missing file returns
// (nil, nil).
func loadCheckpoint(path string, cfg Config, totalSeeds int) (*checkpointSnapshot, error) {
	var snap checkpointSnapshot
	if err := fileutil.ReadJSON(path, &snap); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	if snap.Version != checkpointFileVersion {
		return nil, fmt.Errorf("unsupported checkpoint version %d", snap.Version)
	}
	if snap.InitialSeed != cfg.InitialSeed || snap.OrbitOnly != cfg.OrbitOnly ||
		snap.TotalSeeds != totalSeeds || snap.MaxFrames != cfg.MaxFrames {
		return nil, fmt.Errorf("%w: %s", ErrCheckpointMismatch, path)
	}
	if snap.SeedsDone < 0 || snap.SeedsDone > totalSeeds {
		return nil, fmt.Errorf("checkpoint seeds_done %d out of range", snap.SeedsDone)
	}
	return &snap, nil
}
