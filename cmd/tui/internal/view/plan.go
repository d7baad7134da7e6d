package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/entitlement"
)

// PlanModel shows the user's plan and how many imports remain.
type PlanModel struct {
	CommonModel
	entitlementService *entitlement.Service
	userID             string

	status  entitlement.Status
	bar     progress.Model
	loading bool
	err     error
}

func NewPlanModel(svc *entitlement.Service, userID string) PlanModel {
	return PlanModel{
		entitlementService: svc,
		userID:             userID,
		bar:                progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		loading:            true,
	}
}

func (m PlanModel) Title() string     { return "Plan & Usage" }
func (m PlanModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m PlanModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}

	case planStatusMsg:
		m.loading = false
		m.status = msg.status
		m.err = msg.err
	}

	return m, nil
}

func (m PlanModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.loading {
		return style.Render("Loading plan...")
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(r to retry, Esc to go back)")
	}

	return style.Render(renderPlan(m.status, m.bar))
}

func renderPlan(st entitlement.Status, bar progress.Model) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan: %s\n\n", activeStyle(st.Plan.String()))

	if st.Plan.Subscribed() {
		ratio := 0.0
		if st.Limit > 0 {
			ratio = min(1, float64(st.Used)/float64(st.Limit))
		}

		fmt.Fprintf(&b, "Imports this period: %d / %d\n", st.Used, st.Limit)
		b.WriteString(bar.ViewAs(ratio) + "\n\n")

		if st.PeriodEnd != nil {
			fmt.Fprintf(&b, "Renews: %s\n", st.PeriodEnd.Format(time.DateOnly))
		}
	} else if st.CanImport {
		b.WriteString("Your free import is still available.\n")
	} else {
		b.WriteString("The free import has been used. Subscribe to import more statements.\n")
	}

	if st.CanImport {
		b.WriteString("\n" + successStyle.Render(fmt.Sprintf("%d import(s) remaining", st.Remaining)))
	} else {
		b.WriteString("\n" + errorStyle.Render("No imports remaining"))
	}

	return b.String()
}

type planStatusMsg struct {
	status entitlement.Status
	err    error
}

func (m PlanModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.entitlementService.CheckStatus(ctx, m.userID, time.Now())

		return planStatusMsg{status: st, err: err}
	}
}
