package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/category"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/recurring"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateEdit
	listStateConfirmDelete
)

type ListModel struct {
	CommonModel
	ledgerService *ledger.Service
	projector     *recurring.Projector
	series        *recurring.Series
	userID        string

	state   listState
	table   table.Model
	entries []*ledger.Entry
	form    *huh.Form

	month   time.Time
	loading bool
	err     error
	status  string

	// Form bindings
	formDesc     string
	formCategory string
	deleteSeries bool
}

func NewListModel(svc *ledger.Service, projector *recurring.Projector, series *recurring.Series, userID string) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Amount", Width: 12},
		{Title: "Category", Width: 20},
		{Title: "Description", Width: 36},
		{Title: "Repeats", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	now := time.Now()

	return ListModel{
		ledgerService: svc,
		projector:     projector,
		series:        series,
		userID:        userID,
		table:         t,
		month:         time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		loading:       true,
	}
}

func (m ListModel) Title() string { return "Ledger" }
func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateEdit:
		return "Navigate form | Esc: cancel"
	case listStateConfirmDelete:
		return "y: confirm | n/Esc: cancel"
	}

	return "Esc: back | ←/→: month | e: edit | x: delete | X: delete series | r: refresh"
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.entries = msg.entries

		if msg.inserted > 0 {
			m.status = fmt.Sprintf("Added %d recurring entries.", msg.inserted)
		}

		m.refreshTable()

		return m, nil

	case listSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case listStateBrowse:
		return m.updateBrowse(msg)
	case listStateEdit:
		return m.updateEdit(msg)
	case listStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	return m, nil
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "left", "h":
			m.month = m.month.AddDate(0, -1, 0)
			m.loading = true

			return m, m.loadCmd()
		case "right", "l":
			m.month = m.month.AddDate(0, 1, 0)
			m.loading = true

			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "x", "X":
			if m.selected() == nil {
				return m, nil
			}

			m.deleteSeries = keyMsg.String() == "X"
			if m.deleteSeries && !m.selected().IsRecurring() {
				m.status = "Entry is not part of a recurring series."
				return m, nil
			}

			m.state = listStateConfirmDelete

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) selected() *ledger.Entry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return nil
	}

	return m.entries[idx]
}

func (m ListModel) enterEditMode() (tea.Model, tea.Cmd) {
	e := m.selected()
	if e == nil {
		return m, nil
	}

	m.formDesc = e.Description
	m.formCategory = e.Category

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.formDesc).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewSelect[string]().
				Key("category").
				Title("Category").
				Options(categoryOptions()...).
				Value(&m.formCategory),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = listStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m ListModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = listStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m ListModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "y":
		return m, m.deleteCmd()
	case "n", "esc":
		m.state = listStateBrowse
	}

	return m, nil
}

func (m ListModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading entries...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(r to retry, Esc to go back)", m.err))
	}

	header := fmt.Sprintf("Month: %s  (%d entries)", activeStyle(m.month.Format("January 2006")), len(m.entries))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	switch {
	case m.state == listStateEdit && m.form != nil:
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Edit Entry\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)

	case m.state == listStateConfirmDelete:
		what := "this entry"
		if m.deleteSeries {
			what = "every entry in this series"
		}

		content += "\n\n" + errorStyle.Render(fmt.Sprintf("Delete %s? (y/n)", what))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *ListModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		cat := e.Category
		if c, ok := category.Resolve(e.Category); ok {
			cat = c.Name
		}

		repeats := ""
		if e.IsRecurring() {
			repeats = string(e.Recurring.Frequency)
		}

		desc := e.Description
		if !e.Confirmed {
			desc = "* " + desc
		}

		rows = append(rows, table.Row{
			e.Date,
			FormatAmount(e.Amount),
			cat,
			desc,
			repeats,
		})
	}

	m.table.SetRows(rows)
}

func categoryOptions() []huh.Option[string] {
	defaults := category.Defaults()

	opts := make([]huh.Option[string], 0, len(defaults))
	for _, c := range defaults {
		opts = append(opts, huh.NewOption(c.Icon+" "+c.Name, c.ID))
	}

	return opts
}

// Messages

type loadListMsg struct {
	entries  []*ledger.Entry
	inserted int
	err      error
}

// loadCmd reconciles recurring series before listing the month so projected
// occurrences show up.
func (m ListModel) loadCmd() tea.Cmd {
	month := m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inserted, err := m.projector.Reconcile(ctx, m.userID, time.Now())
		if err != nil {
			return loadListMsg{err: err}
		}

		start, end, err := ledger.MonthRange(month.Format("2006-01"))
		if err != nil {
			return loadListMsg{err: err}
		}

		entries, err := m.ledgerService.List(ctx, m.userID, ledger.ListFilter{StartDate: start, EndDate: end})

		return loadListMsg{entries: entries, inserted: inserted, err: err}
	}
}

type listSaveMsg struct {
	status string
	err    error
}

func (m ListModel) saveCmd() tea.Cmd {
	e := m.selected()
	if e == nil {
		return nil
	}

	desc := m.formDesc
	cat := m.formCategory

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated := *e
		updated.Description = strings.TrimSpace(desc)
		updated.Category = cat

		if err := m.ledgerService.Update(ctx, &updated); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Saved."}
	}
}

func (m ListModel) deleteCmd() tea.Cmd {
	e := m.selected()
	if e == nil {
		return nil
	}

	wholeSeries := m.deleteSeries

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if wholeSeries {
			n, err := m.series.DeleteSeries(ctx, m.userID, e)
			if err != nil {
				return listSaveMsg{err: err}
			}

			return listSaveMsg{status: fmt.Sprintf("Deleted %d entries.", n)}
		}

		var err error
		if e.IsRecurring() {
			err = m.series.DeleteOccurrence(ctx, m.userID, e)
		} else {
			err = m.ledgerService.Delete(ctx, m.userID, e.ID)
		}

		if err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{status: "Deleted."}
	}
}
