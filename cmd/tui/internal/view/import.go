package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/entitlement"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
)

const importTimeout = 2 * time.Minute

const autoProfile = "auto-detect"

type importState int

const (
	importStateProfileSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	ledgerService      *ledger.Service
	importService      *importer.Service
	matchingService    *matching.Service
	entitlementService *entitlement.Service
	userID             string

	state           importState
	filePicker      filepicker.Model
	selectedProfile string
	profileOptions  []string
	profileCursor   int

	newParams    []ledger.CreateParams
	conflicts    []ledger.Conflict
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(
	svc *ledger.Service,
	impSvc *importer.Service,
	matchSvc *matching.Service,
	entSvc *entitlement.Service,
	userID string,
) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		ledgerService:      svc,
		importService:      impSvc,
		matchingService:    matchSvc,
		entitlementService: entSvc,
		userID:             userID,
		filePicker:         fp,
		profileOptions:     append([]string{autoProfile}, importer.ProfileNames()...),
		selected:           make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	switch m.state {
	case importStateConflicts:
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateProfileSelect {
			return m.updateProfileSelect(msg)
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case gateMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if !msg.status.CanImport {
			m.state = importStateResult
			m.err = errImportLimit
			m.status = fmt.Sprintf("Import limit reached for plan %q (%d/%d used).",
				msg.status.Plan, msg.status.Used, msg.status.Limit)

			return m, nil
		}

		m.state = importStateFilePick

		return m, m.filePicker.Init()

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.result.Conflicts) == 0 {
			m.state = importStateResult
			m.status = importedStatus(len(msg.result.Imported), msg.usage)

			return m, nil
		}

		m.newParams = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c, index: i}
		}

		delegate := conflictDelegate{selected: &m.selected}
		m.conflictList = list.New(items, delegate, 80, 20)
		m.conflictList.Title = "Possible Duplicates"
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = importedStatus(msg.count, msg.usage)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

var errImportLimit = errors.New("import limit reached")

func importedStatus(n int, usage *entitlement.Usage) string {
	s := fmt.Sprintf("Imported %d entries.", n)
	if usage != nil {
		s += fmt.Sprintf(" %d import(s) left this period.", usage.Remaining)
	}

	return s + " Review them from the menu."
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateProfileSelect
		return m, nil
	case importStateResult:
		m.state = importStateProfileSelect
		m.err = nil
		m.status = ""

		return m, nil
	case importStateConflicts:
		m.state = importStateProfileSelect
		m.conflicts = nil
		m.newParams = nil
		m.selected = make(map[int]bool)

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateProfileSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.profileCursor > 0 {
			m.profileCursor--
		}
	case tea.KeyDown:
		if m.profileCursor < len(m.profileOptions)-1 {
			m.profileCursor++
		}
	case tea.KeyEnter:
		m.selectedProfile = m.profileOptions[m.profileCursor]
		if m.selectedProfile == autoProfile {
			m.selectedProfile = ""
		}

		return m, m.gateCmd()
	}

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateProfileSelect:
		return m.viewProfileSelect()
	case importStateFilePick:
		return m.viewFilePick()
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewProfileSelect() string {
	s := "Statement format:\n\n"

	for i, p := range m.profileOptions {
		cursor := " "
		if i == m.profileCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, p)
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewFilePick() string {
	profile := m.selectedProfile
	if profile == "" {
		profile = autoProfile
	}

	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select statement to import (%s):\n\n%s", profile, m.filePicker.View()),
	)
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(errorStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return style.Render(successStyle.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type gateMsg struct {
	status entitlement.Status
	err    error
}

type importResultMsg struct {
	result *ledger.ImportResult
	usage  *entitlement.Usage
	err    error
}

type confirmResultMsg struct {
	count int
	usage *entitlement.Usage
	err   error
}

func (m ImportModel) gateCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := m.entitlementService.CheckStatus(ctx, m.userID, time.Now())

		return gateMsg{status: st, err: err}
	}
}

// recordUsage counts a completed import. A failure here does not undo the
// import, so it is only reported through the missing usage.
func (m ImportModel) recordUsage(ctx context.Context) *entitlement.Usage {
	usage, err := m.entitlementService.RecordImport(ctx, m.userID, time.Now())
	if err != nil {
		return nil
	}

	return &usage
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	profile := m.selectedProfile

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		params, err := m.importService.Import(f, importer.Options{Profile: profile})
		if err != nil {
			return importResultMsg{err: err}
		}

		if len(params) == 0 {
			return importResultMsg{err: fmt.Errorf("no entries found in %s", path)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		if err := m.matchingService.Categorize(ctx, m.userID, params); err != nil {
			return importResultMsg{err: err}
		}

		result, err := m.ledgerService.ImportBatch(ctx, m.userID, params)
		if err != nil {
			return importResultMsg{err: err}
		}

		if len(result.Conflicts) > 0 {
			return importResultMsg{result: result}
		}

		return importResultMsg{result: result, usage: m.recordUsage(ctx)}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	newParams := m.newParams
	conflicts := m.conflicts
	selected := m.selected

	return func() tea.Msg {
		var allParams []ledger.CreateParams
		allParams = append(allParams, newParams...)

		for i, c := range conflicts {
			if !selected[i] {
				continue
			}

			allParams = append(allParams, c.Incoming)
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		entries, err := m.ledgerService.CreateBatch(ctx, m.userID, allParams)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		if len(entries) == 0 {
			return confirmResultMsg{}
		}

		return confirmResultMsg{count: len(entries), usage: m.recordUsage(ctx)}
	}
}

// Conflict list item

type conflictItem struct {
	conflict ledger.Conflict
	index    int
}

func (i conflictItem) Title() string       { return "" }
func (i conflictItem) Description() string { return "" }
func (i conflictItem) FilterValue() string { return "" }

// Conflict list delegate

type conflictDelegate struct {
	selected *map[int]bool
}

func (d conflictDelegate) Height() int                             { return 3 }
func (d conflictDelegate) Spacing() int                            { return 0 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if (*d.selected)[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	line1 := fmt.Sprintf("%s%s %s  %s  %s",
		cursor, checkbox,
		incoming.Date,
		FormatAmount(incoming.Amount),
		incoming.Description,
	)

	line2 := fmt.Sprintf("      Existing: %s  %s  %s [%s]",
		existing.Date,
		FormatAmount(existing.Amount),
		existing.Description,
		existing.Category,
	)

	fmt.Fprintf(w, "%s\n%s\n", line1, line2)
}
