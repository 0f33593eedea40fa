package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SHINOYP/KYC/types"
)

// ResultModel is a Bubble Tea model for result and health views.
type ResultModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewResultModel creates a new result model.
func NewResultModel(viewType string, data any) ResultModel {
	return ResultModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m ResultModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
func (m ResultModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case "result":
		content = m.renderResult()
	case "health":
		content = m.renderHealth()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m ResultModel) renderResult() string {
	data, ok := m.data.(*types.VerificationResult)
	if !ok {
		return "Invalid data type for result"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Verification Result"))
	b.WriteString("\n\n")

	rows := [][]string{
		{"Verification ID", data.VerificationID},
		{"Status", data.Status},
		{"Trust Score", fmt.Sprintf("%d / 100", data.TrustScore)},
		{"Face Confidence", fmt.Sprintf("%.1f%%", data.FaceConfidence)},
		{"Name", data.Extracted.Name},
		{"Date of Birth", data.Extracted.DOB},
		{"ID Number", data.Extracted.IDNumber},
		{"Document Type", data.Extracted.DocumentType},
	}
	if data.Timestamp != "" {
		rows = append(rows, []string{"Timestamp", data.Timestamp})
	}
	if data.ProcessingTime > 0 {
		rows = append(rows, []string{"Processing Time", fmt.Sprintf("%.0f ms", data.ProcessingTime)})
	}

	for _, row := range rows {
		label := LabelStyle.Render(row[0] + ":")
		value := row[1]
		if row[0] == "Status" {
			value = StateStyle(data.Status).Render(value)
		} else {
			value = ValueStyle.Render(value)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, value))
	}

	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("Fraud Assessment"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Risk Level:"),
		StateStyle(data.FraudFlags.RiskLevel).Render(data.FraudFlags.RiskLevel)))

	if len(data.FraudFlags.Flags) > 0 {
		b.WriteString(LabelStyle.Render("Flags:"))
		b.WriteString("\n")
		for _, flag := range data.FraudFlags.Flags {
			b.WriteString(fmt.Sprintf("  • %s\n", WarningStyle.Render(flag)))
		}
	}
	if data.FraudFlags.Summary != "" {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Assessment:"),
			ValueStyle.Render(data.FraudFlags.Summary)))
	}

	b.WriteString("\n")
	b.WriteString(ValueStyle.Render(data.Summary))

	return BoxStyle.Render(b.String())
}

func (m ResultModel) renderHealth() string {
	data, ok := m.data.(*types.Health)
	if !ok {
		return "Invalid data type for health"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("API Health"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Status:"),
		StateStyle(string(data.Status)).Render(string(data.Status))))
	b.WriteString(fmt.Sprintf("%s %s\n",
		LabelStyle.Render("Checked At:"),
		ValueStyle.Render(data.CheckedAt.Format("2006-01-02 15:04:05"))))

	if data.Error != "" {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Error:"),
			ErrorStyle.Render(data.Error)))
	}

	if len(data.Payload) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Reported Services"))
		b.WriteString("\n")
		for name, value := range data.Payload {
			b.WriteString(fmt.Sprintf("%s %s\n",
				LabelStyle.Render(name+":"),
				ValueStyle.Render(fmt.Sprintf("%v", value))))
		}
	}

	return BoxStyle.Render(b.String())
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunResultTUI runs the result/health TUI.
func RunResultTUI(viewType string, data any) error {
	model := NewResultModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderResultStatic renders result data without full TUI (for fallback).
func RenderResultStatic(viewType string, data any) string {
	model := NewResultModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
