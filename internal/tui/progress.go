// Package tui implements a small live progress view for a running
// integration: step count, acceptance rate, and a sparkline of the
// running mean reported in each Snapshot.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mcintegrate/internal/viz"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

// Snapshot is one progress update sent from the sampling loop to the TUI.
type Snapshot struct {
	Step           int
	NSteps         int
	AcceptanceRate float64
	RunningMean    float64
	Done           bool
}

// Feed is the channel a running integration pushes Snapshots into; the
// model reads from it on a tick and redraws.
type Feed chan Snapshot

type tickMsg time.Time

type model struct {
	feed    Feed
	last    Snapshot
	history []float64
	done    bool
}

// NewProgram builds a bubbletea program rendering live updates read from
// feed. The caller runs it with Run; the sampling loop (typically on
// another goroutine) should close feed once sampling finishes.
func NewProgram(feed Feed) *tea.Program {
	return tea.NewProgram(&model{feed: feed})
}

func (m *model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tickMsg:
	drain:
		for {
			select {
			case snap, ok := <-m.feed:
				if !ok {
					m.done = true
					break drain
				}
				m.last = snap
				m.history = append(m.history, snap.RunningMean)
				if len(m.history) > 200 {
					m.history = m.history[len(m.history)-200:]
				}
			default:
				break drain
			}
		}
		if m.done {
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m *model) View() string {
	pct := 0.0
	if m.last.NSteps > 0 {
		pct = float64(m.last.Step) / float64(m.last.NSteps)
	}

	header := cyan.Render("mci") + white.Render(" — sampling")
	progress := fmt.Sprintf("%s %d/%d", viz.ProgressBar(pct, 40), m.last.Step, m.last.NSteps)

	accColor := green
	if m.last.AcceptanceRate < 0.2 || m.last.AcceptanceRate > 0.8 {
		accColor = yellow
	}
	accLine := fmt.Sprintf("acceptance rate: %s", accColor.Render(fmt.Sprintf("%.3f", m.last.AcceptanceRate)))
	meanLine := fmt.Sprintf("running mean:    %.6g", m.last.RunningMean)
	spark := dim.Render(viz.SparklineChart(m.history, 40))

	return fmt.Sprintf("%s\n\n%s\n%s\n%s\n%s\n\n%s\n", header, progress, accLine, meanLine, spark, dim.Render("press q to quit"))
}
