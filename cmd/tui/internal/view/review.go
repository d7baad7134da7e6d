package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

// ReviewModel walks through unconfirmed imported entries one at a time. Saving
// confirms the entry and teaches the matcher the chosen category.
type ReviewModel struct {
	CommonModel
	ledgerService   *ledger.Service
	matchingService *matching.Service
	userID          string

	queue   []*ledger.Entry
	current *ledger.Entry
	form    *huh.Form

	formCategory string
	formLearn    bool
	formPattern  string

	status     string
	loading    bool
	totalCount int
}

func NewReviewModel(svc *ledger.Service, matchSvc *matching.Service, userID string) ReviewModel {
	return ReviewModel{
		ledgerService:   svc,
		matchingService: matchSvc,
		userID:          userID,
		loading:         true,
	}
}

func (m ReviewModel) Title() string { return "Review Imports" }

func (m ReviewModel) ShortHelp() string {
	return "Esc: back | Enter: next field, save on last"
}

func (m ReviewModel) Init() tea.Cmd {
	return m.loadPendingCmd()
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}

		if msg.Type == tea.KeyEsc {
			return m, Back
		}

	case loadPendingMsg:
		m.loading = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Error loading entries: %v", msg.err)
			return m, nil
		}

		m.queue = msg.entries
		m.totalCount = len(m.queue)

		return m.next()

	case reviewSaveMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
			return m, nil
		}

		return m.next()
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.saveCmd()
	}

	return m, cmd
}

func (m ReviewModel) next() (tea.Model, tea.Cmd) {
	if len(m.queue) == 0 {
		m.current = nil
		m.form = nil
		m.status = "All done! Nothing left to review."

		return m, nil
	}

	m.current = m.queue[0]
	m.queue = m.queue[1:]
	m.status = fmt.Sprintf("Reviewing %d/%d", m.totalCount-len(m.queue), m.totalCount)

	m.formCategory = m.current.Category
	if m.formCategory == "" {
		m.formCategory = category.Other
	}

	m.formLearn = m.formCategory != category.Other
	m.formPattern = m.current.Description

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOptions()...).
				Value(&m.formCategory),
			huh.NewConfirm().
				Key("learn").
				Title("Remember for similar descriptions?").
				Value(&m.formLearn),
			huh.NewInput().
				Key("pattern").
				Title("Pattern").
				Description("Descriptions containing this text get the same category").
				Value(&m.formPattern),
		),
	).WithWidth(50).WithShowHelp(false)

	return m, m.form.Init()
}

func (m ReviewModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading unconfirmed entries...")
	}

	if m.current == nil {
		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to go back)")
	}

	info := fmt.Sprintf(
		"Date:        %s\nAmount:      %s\nDescription: %s\n",
		m.current.Date,
		FormatAmount(m.current.Amount),
		m.current.Description,
	)

	return lipgloss.NewStyle().Padding(2).Render(
		fmt.Sprintf("%s\n\n%s\n%s", activeStyle(m.status), info, m.form.View()),
	)
}

type loadPendingMsg struct {
	entries []*ledger.Entry
	err     error
}

func (m ReviewModel) loadPendingCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.ledgerService.List(ctx, m.userID, ledger.ListFilter{Confirmed: new(false)})

		return loadPendingMsg{entries: entries, err: err}
	}
}

type reviewSaveMsg struct {
	err error
}

func (m ReviewModel) saveCmd() tea.Cmd {
	e := *m.current
	cat := m.formCategory
	learn := m.formLearn
	pattern := strings.TrimSpace(m.formPattern)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if learn && pattern != "" {
			if _, err := m.matchingService.Learn(ctx, m.userID, pattern, cat); err != nil {
				return reviewSaveMsg{err: err}
			}
		}

		e.Category = cat
		e.Confirmed = true

		return reviewSaveMsg{err: m.ledgerService.Update(ctx, &e)}
	}
}
