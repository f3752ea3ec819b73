package tui

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bouncesearch/internal/search"
)

func TestModel(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests

	best := search.Result{Found: true, Seed: 0x45EA, StartX: 0x80, StartY: 0x80, Frames: 299, Index: 6}

	// feed delivers everything a reporter sends straight to the model.
	feed := func(m *Model) *Reporter {
		return NewReporter(func(msg tea.Msg) { m.Update(msg) })
	}

	t.Run("renders batch progress", func(t *testing.T) {
		m := NewModel(logger, func() {})
		r := feed(m)

		r.OnSearchStart(8, 0)
		assert.Contains(t, m.View(), "0/8 seeds")
		assert.Contains(t, m.View(), "Starting")

		r.OnBatchStart(2, 3, 3)
		r.OnBatchComplete(search.BatchStats{
			Batch:          2,
			TotalBatches:   3,
			SeedsDone:      6,
			TotalSeeds:     8,
			SeedsPerSecond: 2,
			Best:           best,
		})

		view := m.View()
		assert.Contains(t, view, "Batch 2/3 (3 seeds)")
		assert.Contains(t, view, "6/8 seeds")
		assert.Contains(t, view, "2.0 seeds/s")
		assert.Contains(t, view, "1s left")
		assert.Contains(t, view, "Best: seed 0x45EA offsets (0x80, 0x80) 299 frames")
		assert.NotContains(t, view, "frame bound")
	})

	t.Run("shows resumed searches and completion", func(t *testing.T) {
		m := NewModel(logger, func() {})
		r := feed(m)

		r.OnSearchStart(8, 6)
		assert.Contains(t, m.View(), "6/8 seeds")
		assert.Contains(t, m.View(), "resumed at 6")

		result := best
		result.NonTerminating = 3
		r.Finish(result)
		view := m.View()
		assert.Contains(t, view, "Search complete")
		assert.Contains(t, view, "3 runs hit the frame bound")
	})

	t.Run("first quit cancels the search, second leaves", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		m := NewModel(logger, cancel)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		assert.Nil(t, cmd)
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
		assert.Contains(t, m.View(), "Cancelling")

		_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, m.View())
	})

	t.Run("done quits and renders the error", func(t *testing.T) {
		m := NewModel(logger, func() {})

		_, cmd := m.Update(DoneMsg{Err: errors.New("checkpoint does not match")})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.QuitMsg{}, cmd())

		view := m.View()
		assert.Contains(t, view, "Search failed: checkpoint does not match")
		assert.NotContains(t, view, "q / ctrl+c")
	})

	t.Run("done after cancel reports the cancellation", func(t *testing.T) {
		m := NewModel(logger, func() {})
		m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		m.Update(DoneMsg{Err: context.Canceled})
		view := m.View()
		assert.Contains(t, view, "Search cancelled")
		assert.NotContains(t, view, "Search failed")
		assert.NotContains(t, view, "press q again")
	})

	t.Run("done without error keeps the final view", func(t *testing.T) {
		m := NewModel(logger, func() {})
		r := feed(m)
		r.Finish(best)

		m.Update(DoneMsg{})
		assert.Contains(t, m.View(), "Search complete")
	})

	t.Run("window size bounds the bar", func(t *testing.T) {
		m := NewModel(logger, func() {})

		m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
		assert.Equal(t, 26, m.bar.Width)

		m.Update(tea.WindowSizeMsg{Width: 300, Height: 10})
		assert.Equal(t, maxBarWidth, m.bar.Width)
	})
}
