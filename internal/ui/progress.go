// Package ui renders pipeline progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"jnigen/internal/buildpipeline"
)

// recentLimit bounds how many function rows are shown at once.
const recentLimit = 8

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	prog    progress.Model
	stages  []stageRow
	fns     map[string]buildpipeline.Status
	recent  []string
	failed  []string
	total   int
	width   int
	done    bool
}

type stageRow struct {
	stage  buildpipeline.Stage
	status buildpipeline.Status
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders pipeline progress
// read from events until the channel is closed.
func NewProgressModel(title string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	stages := buildpipeline.Stages()
	rows := make([]stageRow, len(stages))
	for i, st := range stages {
		rows[i] = stageRow{stage: st, status: buildpipeline.StatusQueued}
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		stages:  rows,
		fns:     make(map[string]buildpipeline.Status),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(buildpipeline.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	for _, row := range m.stages {
		label := string(row.status)
		fmt.Fprintf(&b, "  %s %s\n", styleStatus(row.status).Render(fmt.Sprintf("%9s", label)), row.stage)
	}

	if m.total > 0 {
		fmt.Fprintf(&b, "\n  functions %d/%d", m.finished(), m.total)
		if len(m.failed) > 0 {
			b.WriteString(styleStatus(buildpipeline.StatusError).Render(fmt.Sprintf("  %d failed", len(m.failed))))
		}
		b.WriteString("\n")
		nameWidth := m.width - 16
		if nameWidth < 20 {
			nameWidth = 20
		}
		for _, name := range m.visibleFunctions() {
			st := m.fns[name]
			fmt.Fprintf(&b, "    %s %s\n", styleStatus(st).Render(fmt.Sprintf("%9s", st)), truncate(name, nameWidth))
		}
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

// visibleFunctions lists failures first, then the most recent activity.
func (m *progressModel) visibleFunctions() []string {
	out := make([]string, 0, recentLimit)
	seen := make(map[string]bool)
	for _, name := range m.failed {
		if len(out) == recentLimit {
			return out
		}
		out = append(out, name)
		seen[name] = true
	}
	for i := len(m.recent) - 1; i >= 0 && len(out) < recentLimit; i-- {
		if name := m.recent[i]; !seen[name] {
			out = append(out, name)
			seen[name] = true
		}
	}
	return out
}

func (m *progressModel) finished() int {
	n := 0
	for _, st := range m.fns {
		if st == buildpipeline.StatusDone || st == buildpipeline.StatusError {
			n++
		}
	}
	return n
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.Function == "" {
		for i := range m.stages {
			if m.stages[i].stage == ev.Stage {
				m.stages[i].status = ev.Status
			}
		}
	} else {
		if _, ok := m.fns[ev.Function]; !ok {
			m.total++
		}
		m.fns[ev.Function] = ev.Status
		if ev.Status == buildpipeline.StatusError {
			m.failed = append(m.failed, ev.Function)
		}
		if ev.Status != buildpipeline.StatusQueued {
			m.recent = append(m.recent, ev.Function)
			if len(m.recent) > 4*recentLimit {
				m.recent = m.recent[len(m.recent)-recentLimit:]
			}
		}
	}
	return m.prog.SetPercent(m.percent())
}

// percent weighs every stage equally; the generate stage advances with
// the share of finished functions.
func (m *progressModel) percent() float64 {
	if len(m.stages) == 0 {
		return 0
	}
	total := 0.0
	for _, row := range m.stages {
		switch row.status {
		case buildpipeline.StatusDone, buildpipeline.StatusSkipped,
			buildpipeline.StatusWarning, buildpipeline.StatusError:
			total++
		case buildpipeline.StatusWorking:
			if row.stage == buildpipeline.StageGenerate && m.total > 0 {
				total += float64(m.finished()) / float64(m.total)
			}
		}
	}
	return total / float64(len(m.stages))
}

func styleStatus(status buildpipeline.Status) lipgloss.Style {
	switch status {
	case buildpipeline.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case buildpipeline.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case buildpipeline.StatusWarning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case buildpipeline.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
