package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/partsengine/pkg/pipeline"
)

// recentOutcomes is the number of finished items listed under the progress bar.
const recentOutcomes = 6

var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// outcomeMsg reports one finished batch item.
type outcomeMsg pipeline.Outcome

// batchDoneMsg reports the end of the run.
type batchDoneMsg struct {
	result *pipeline.Result
	err    error
}

// tickMsg advances the elapsed-time display.
type tickMsg time.Time

// =============================================================================
// BatchModel - Live progress of a batch run
// =============================================================================

// BatchModel is the bubbletea model showing batch progress.
type BatchModel struct {
	Total    int
	Done     int
	Stats    pipeline.Stats
	Recent   []pipeline.Outcome
	Result   *pipeline.Result
	Err      error
	Aborted  bool
	Width    int
	Started  time.Time
	Elapsed  time.Duration
	onCancel func()
}

// NewBatchModel creates a progress model for total items. onCancel is called
// when the user quits before the run finishes.
func NewBatchModel(total int, onCancel func()) BatchModel {
	return BatchModel{
		Total:    total,
		Width:    40,
		Started:  time.Now(),
		onCancel: onCancel,
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m BatchModel) Init() tea.Cmd {
	return tick()
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Aborted = true
			if m.onCancel != nil {
				m.onCancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width-30, 10)
	case tickMsg:
		m.Elapsed = time.Since(m.Started)
		return m, tick()
	case outcomeMsg:
		o := pipeline.Outcome(msg)
		m.Done++
		switch o.Status {
		case pipeline.StatusResolved:
			m.Stats.Resolved++
		case pipeline.StatusEmpty:
			m.Stats.Empty++
		case pipeline.StatusUnknown:
			m.Stats.Unknown++
		default:
			m.Stats.Failed++
		}
		m.Recent = append(m.Recent, o)
		if len(m.Recent) > recentOutcomes {
			m.Recent = m.Recent[len(m.Recent)-recentOutcomes:]
		}
	case batchDoneMsg:
		m.Result = msg.result
		m.Err = msg.err
		m.Elapsed = time.Since(m.Started)
		return m, tea.Quit
	}
	return m, nil
}

func (m BatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Resolving parts"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.Elapsed.Round(100 * time.Millisecond).String()))
	b.WriteString("\n\n")

	b.WriteString(m.bar())
	b.WriteString(fmt.Sprintf("  %d/%d\n", m.Done, m.Total))
	b.WriteString("  ")
	b.WriteString(StyleSuccess.Render(fmt.Sprintf("%d resolved", m.Stats.Resolved)))
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(StyleWarning.Render(fmt.Sprintf("%d empty", m.Stats.Empty+m.Stats.Unknown)))
	b.WriteString(StyleDim.Render(" · "))
	b.WriteString(StyleError.Render(fmt.Sprintf("%d failed", m.Stats.Failed)))
	b.WriteString("\n\n")

	for _, o := range m.Recent {
		icon := styleIconSuccess.Render(iconSuccess)
		detail := strings.Join(o.References(), " ")
		switch o.Status {
		case pipeline.StatusFailed:
			icon = styleIconError.Render(iconError)
			detail = string(o.Code)
		case pipeline.StatusEmpty, pipeline.StatusUnknown:
			icon = styleIconWarning.Render(iconWarning)
			detail = string(o.Status)
		}
		b.WriteString(fmt.Sprintf("%s %-12s %s\n", icon, o.ID, StyleDim.Render(detail)))
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	return b.String()
}

func (m BatchModel) bar() string {
	filled := 0
	if m.Total > 0 {
		filled = m.Width * m.Done / m.Total
	}
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", m.Width-filled))
}
