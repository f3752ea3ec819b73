// Package report renders the answer of a search for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/bouncesearch/internal/search"
)

// Memory locations a replay tool pokes to reproduce the answer. They are the
// addresses of the random register and the actor's 24-bit positions.
const (
	RNGAddress    = 0xFFF636
	ActorXAddress = 0xFFB410
	ActorYAddress = 0xFFB414
)

// Report is the final answer of a search.
type Report struct {
	Found           bool    `json:"found"`
	Seed            string  `json:"seed"`
	StartX          string  `json:"start_x"`
	StartY          string  `json:"start_y"`
	Frames          int     `json:"frames"`
	DurationSeconds float64 `json:"duration_seconds"`
	FrameRate       int     `json:"frame_rate"`

	Addresses Addresses `json:"addresses"`

	SeedsSearched  int     `json:"seeds_searched"`
	Runs           uint64  `json:"runs"`
	NonTerminating uint64  `json:"non_terminating"`
	FirstNonTerm   string  `json:"first_non_terminating,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// Addresses lists where to write the winning configuration.
type Addresses struct {
	RNG    string `json:"rng"`
	ActorX string `json:"actor_x"`
	ActorY string `json:"actor_y"`
}

// New builds a report. frameRate converts frames to seconds.
func New(result search.Result, seedsSearched, frameRate int, elapsed time.Duration) *Report {
	r := &Report{
		Found:           result.Found,
		Seed:            fmt.Sprintf("0x%04X", result.Seed),
		StartX:          fmt.Sprintf("0x%02X", result.StartX),
		StartY:          fmt.Sprintf("0x%02X", result.StartY),
		Frames:          result.Frames,
		DurationSeconds: Duration(result.Frames, frameRate).Seconds(),
		FrameRate:       frameRate,
		Addresses: Addresses{
			RNG:    fmt.Sprintf("0x%06X", RNGAddress),
			ActorX: fmt.Sprintf("0x%06X", ActorXAddress),
			ActorY: fmt.Sprintf("0x%06X", ActorYAddress),
		},
		SeedsSearched:  seedsSearched,
		Runs:           result.Runs,
		NonTerminating: result.NonTerminating,
		ElapsedSeconds: elapsed.Seconds(),
	}
	if result.FirstNonTerminating != nil {
		r.FirstNonTerm = result.FirstNonTerminating.String()
	}
	return r
}

// Duration converts a frame count to wall time at frameRate frames per second.
func Duration(frames, frameRate int) time.Duration {
	if frameRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(frameRate)
}

// WriteJSON outputs the report as JSON.
func WriteJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// Styles used by the summary.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

// NewRenderer returns a renderer for w. Without colour every style renders
// as plain text.
func NewRenderer(w io.Writer, color bool) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(w)
	if !color {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return renderer
}

// NewStyles creates summary styles bound to renderer.
func NewStyles(renderer *lipgloss.Renderer) Styles {
	return Styles{
		Title: renderer.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),
		Label: renderer.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Width(14),
		Value: renderer.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true),
		Warning: renderer.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
		Muted: renderer.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}

// WriteSummary outputs a human-readable summary.
func WriteSummary(w io.Writer, r *Report, styles Styles) error {
	var sb strings.Builder
	row := func(label, value string) {
		sb.WriteString(styles.Label.Render(label))
		sb.WriteString(styles.Value.Render(value))
		sb.WriteString("\n")
	}

	sb.WriteString(styles.Title.Render("Longest bounce sequence"))
	sb.WriteString("\n\n")

	if !r.Found {
		sb.WriteString(styles.Warning.Render("No terminating configuration found"))
		sb.WriteString("\n")
	} else {
		row("Seed", r.Seed)
		row("Start X", r.StartX)
		row("Start Y", r.StartY)
		row("Frames", fmt.Sprintf("%d", r.Frames))
		row("Duration", fmt.Sprintf("%.3fs @ %d fps", r.DurationSeconds, r.FrameRate))
		sb.WriteString("\n")
		row("RNG", fmt.Sprintf("%s = %s", r.Addresses.RNG, r.Seed))
		row("Actor X", fmt.Sprintf("%s low byte = %s", r.Addresses.ActorX, r.StartX))
		row("Actor Y", fmt.Sprintf("%s low byte = %s", r.Addresses.ActorY, r.StartY))
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Muted.Render(fmt.Sprintf("%d seeds, %d runs in %.1fs", r.SeedsSearched, r.Runs, r.ElapsedSeconds)))
	sb.WriteString("\n")

	if r.NonTerminating > 0 {
		sb.WriteString(styles.Warning.Render(fmt.Sprintf("%d runs hit the frame bound, first: %s", r.NonTerminating, r.FirstNonTerm)))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
