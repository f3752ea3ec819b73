// Package tui shows a live view of a running search.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/bouncesearch/internal/search"
)

const maxBarWidth = 60

// Model is the Bubble Tea model for the search progress view.
type Model struct {
	logger *log.Logger
	cancel context.CancelFunc

	// UI components
	bar     progress.Model
	spinner spinner.Model

	// Search state
	totalSeeds   int
	resumedSeeds int
	batch        int
	totalBatches int
	batchSeeds   int
	stats        search.BatchStats
	result       *search.Result
	err          error

	cancelling bool
	done       bool
	quitting   bool
}

// DoneMsg tells the model that Driver.Run has returned.
type DoneMsg struct {
	Err error
}

type searchStartMsg struct {
	totalSeeds   int
	resumedSeeds int
}

type batchStartMsg struct {
	batch, totalBatches, seeds int
}

type batchCompleteMsg struct {
	stats search.BatchStats
}

type finishMsg struct {
	result search.Result
}

// NewModel creates a progress view. cancel stops the search; it is called
// the first time the user asks to quit.
func NewModel(logger *log.Logger, cancel context.CancelFunc) *Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = BestStyle

	return &Model{
		logger:  logger.WithPrefix("tui"),
		cancel:  cancel,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		spinner: s,
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DoneMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if m.cancelling {
				m.quitting = true
				return m, tea.Quit
			}
			m.logger.Debug("cancelling search")
			m.cancelling = true
			m.cancel()
		}

	case searchStartMsg:
		m.totalSeeds = msg.totalSeeds
		m.resumedSeeds = msg.resumedSeeds
		m.stats.SeedsDone = msg.resumedSeeds
		m.stats.TotalSeeds = msg.totalSeeds

	case batchStartMsg:
		m.batch = msg.batch
		m.totalBatches = msg.totalBatches
		m.batchSeeds = msg.seeds

	case batchCompleteMsg:
		m.stats = msg.stats

	case finishMsg:
		m.result = &msg.result

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("bouncesearch"))
	sb.WriteString("\n\n")

	switch {
	case errors.Is(m.err, context.Canceled):
		sb.WriteString(WarningStyle.Render("Search cancelled"))
	case m.err != nil:
		sb.WriteString(ErrorStyle.Render("Search failed: " + m.err.Error()))
	case m.result != nil:
		sb.WriteString(SuccessStyle.Render("Search complete"))
	case m.batch > 0:
		sb.WriteString(m.spinner.View())
		sb.WriteString(BatchStyle.Render(fmt.Sprintf(" Batch %d/%d (%d seeds)", m.batch, m.totalBatches, m.batchSeeds)))
	default:
		sb.WriteString(m.spinner.View())
		sb.WriteString(BatchStyle.Render(" Starting"))
	}
	sb.WriteString("\n\n")

	sb.WriteString(m.bar.ViewAs(m.stats.Percent() / 100))
	sb.WriteString("\n")

	line := fmt.Sprintf("%d/%d seeds", m.stats.SeedsDone, m.stats.TotalSeeds)
	if m.stats.SeedsPerSecond > 0 {
		line += fmt.Sprintf(" · %.1f seeds/s · %s left", m.stats.SeedsPerSecond, m.stats.Remaining().Round(time.Second))
	}
	if m.resumedSeeds > 0 {
		line += fmt.Sprintf(" · resumed at %d", m.resumedSeeds)
	}
	sb.WriteString(InfoStyle.Render(line))
	sb.WriteString("\n\n")

	best := m.stats.Best
	if m.result != nil {
		best = *m.result
	}
	if best.Found {
		sb.WriteString(BestStyle.Render(fmt.Sprintf("Best: seed 0x%04X offsets (0x%02X, 0x%02X) %d frames",
			best.Seed, best.StartX, best.StartY, best.Frames)))
		sb.WriteString("\n")
	}
	if best.NonTerminating > 0 {
		sb.WriteString(WarningStyle.Render(fmt.Sprintf("%d runs hit the frame bound", best.NonTerminating)))
		sb.WriteString("\n")
	}

	if m.done {
		return sb.String()
	}
	sb.WriteString("\n")
	if m.cancelling {
		sb.WriteString(WarningStyle.Render("Cancelling, press q again to leave now"))
	} else {
		sb.WriteString(InfoStyle.Render("q / ctrl+c: cancel (progress is kept in the checkpoint)"))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Reporter forwards search progress to a running program.
type Reporter struct {
	send func(tea.Msg)
}

// NewReporter creates a reporter that delivers progress through send,
// usually (*tea.Program).Send.
func NewReporter(send func(tea.Msg)) *Reporter {
	return &Reporter{send: send}
}

func (r *Reporter) OnSearchStart(totalSeeds, resumedSeeds int) {
	r.send(searchStartMsg{totalSeeds: totalSeeds, resumedSeeds: resumedSeeds})
}

func (r *Reporter) OnBatchStart(batch, totalBatches, seeds int) {
	r.send(batchStartMsg{batch: batch, totalBatches: totalBatches, seeds: seeds})
}

func (r *Reporter) OnBatchComplete(stats search.BatchStats) {
	r.send(batchCompleteMsg{stats: stats})
}

func (r *Reporter) Finish(result search.Result) {
	r.send(finishMsg{result: result})
}

// Ensure interface compliance
var _ search.ProgressReporter = (*Reporter)(nil)
