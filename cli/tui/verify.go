package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/SHINOYP/KYC/types"
	"github.com/SHINOYP/KYC/workflow"
)

// verifyDoneMsg carries the attempt outcome back into the TUI loop.
type verifyDoneMsg struct {
	report *types.Report
	err    error
}

// VerifyModel is an interactive Bubble Tea model that drives one
// verification attempt and shows the four-step progress tracker.
type VerifyModel struct {
	ctx        context.Context
	controller *workflow.Controller
	spinner    spinner.Model

	report   *types.Report
	err      error
	done     bool
	quitting bool
}

// NewVerifyModel creates a verify model over a controller whose staging
// area is already populated.
func NewVerifyModel(ctx context.Context, controller *workflow.Controller) VerifyModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)
	return VerifyModel{
		ctx:        ctx,
		controller: controller,
		spinner:    s,
	}
}

// Init implements tea.Model.
func (m VerifyModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startVerification())
}

func (m VerifyModel) startVerification() tea.Cmd {
	return func() tea.Msg {
		report, err := m.controller.StartVerification(m.ctx)
		return verifyDoneMsg{report: report, err: err}
	}
}

// Update implements tea.Model.
func (m VerifyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case verifyDoneMsg:
		m.report = msg.report
		m.err = msg.err
		m.done = true
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) || (m.done && msg.String() == "enter") {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m VerifyModel) View() string {
	if m.quitting {
		return ""
	}

	state := m.controller.State()

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Identity Verification"))
	b.WriteString("\n\n")
	if state.Health.Status != types.HealthUnknown {
		b.WriteString(HelpStyle.Render("API: "))
		b.WriteString(StateStyle(string(state.Health.Status)).Render(string(state.Health.Status)))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderSteps(state))

	switch {
	case !m.done:
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Press q or Ctrl+C to abort"))
	case m.err != nil:
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("Verification failed: " + m.err.Error()))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Your files are kept for another attempt. Press q to quit"))
	default:
		b.WriteString("\n")
		b.WriteString(NewResultModel("result", state.Result).renderResult())
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Press q or Enter to quit"))
	}

	return b.String()
}

// renderSteps draws the four-step tracker: done steps get a check,
// the active step gets the spinner, upcoming steps stay muted.
func (m VerifyModel) renderSteps(state workflow.State) string {
	var b strings.Builder
	for step := workflow.StepUpload; step <= workflow.StepComplete; step++ {
		var marker, label string
		switch {
		case step < state.Step || state.Step == workflow.StepComplete:
			marker = SuccessStyle.Render("✓")
			label = ValueStyle.Render(step.String())
		case step == state.Step && state.Loading:
			marker = m.spinner.View()
			label = WarningStyle.Render(step.String())
		case step == state.Step:
			marker = ValueStyle.Render("›")
			label = ValueStyle.Render(step.String())
		default:
			marker = HelpStyle.Render("•")
			label = HelpStyle.Render(step.String())
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", marker, label))
	}
	return b.String()
}

// RunVerifyTUI drives one verification attempt interactively and
// returns the attempt report once the user leaves the view.
func RunVerifyTUI(ctx context.Context, controller *workflow.Controller) (*types.Report, error) {
	model := NewVerifyModel(ctx, controller)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(VerifyModel); ok {
		return m.report, m.err
	}
	return nil, nil
}
