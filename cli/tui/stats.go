package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SHINOYP/KYC/history"
)

// StatsModel is a Bubble Tea model for the stats view.
type StatsModel struct {
	data     any
	width    int
	height   int
	quitting bool
}

// NewStatsModel creates a new stats model.
func NewStatsModel(data any) StatsModel {
	return StatsModel{data: data}
}

// Init implements tea.Model.
func (m StatsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m StatsModel) View() string {
	if m.quitting {
		return ""
	}

	content := m.renderStats()
	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m StatsModel) renderStats() string {
	data, ok := m.data.(*history.Stats)
	if !ok {
		return "Invalid data type for stats"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Verification Statistics"))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Total", fmt.Sprintf("%d", data.Total), highlightColor),
		m.renderStatBox("Completed", fmt.Sprintf("%d", data.Completed), successColor),
		m.renderStatBox("Failed", fmt.Sprintf("%d", data.Failed), errorColor),
		m.renderStatBox("Success Rate", fmt.Sprintf("%.0f%%", data.SuccessRate), warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))

	b.WriteString("\n\n")
	boxes = []string{
		m.renderStatBox("Avg Trust", fmt.Sprintf("%.0f", data.AvgTrustScore), highlightColor),
		m.renderStatBox("Avg Duration", fmt.Sprintf("%d ms", data.AvgDurationMs), highlightColor),
		m.renderStatBox("Fraud Flagged", fmt.Sprintf("%d", data.FraudFlagged), errorColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))

	if len(data.ByRiskLevel) > 0 {
		b.WriteString("\n\n")
		b.WriteString(TitleStyle.Render("By Risk Level"))
		b.WriteString("\n")
		for _, level := range sortedKeys(data.ByRiskLevel) {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render(level+":"),
				StateStyle(level).Render(fmt.Sprintf("%d", data.ByRiskLevel[level]))))
		}
	}

	if len(data.ByStatus) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("By Status"))
		b.WriteString("\n")
		for _, status := range sortedKeys(data.ByStatus) {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render(status+":"),
				StateStyle(status).Render(fmt.Sprintf("%d", data.ByStatus[status]))))
		}
	}

	return b.String()
}

func (m StatsModel) renderStatBox(label, value string, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(value)
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RunStatsTUI runs the stats TUI.
func RunStatsTUI(data any) error {
	model := NewStatsModel(data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderStatsStatic renders stats data without full TUI (for fallback).
func RenderStatsStatic(data any) string {
	model := NewStatsModel(data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
