package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/entitlement"
	entitlementStore "github.com/MrJamesThe3rd/tally/internal/entitlement/store"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tally/internal/ledger/store"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/tally/internal/matching/store"
	"github.com/MrJamesThe3rd/tally/internal/recurring"
	recurringStore "github.com/MrJamesThe3rd/tally/internal/recurring/store"
)

type model struct {
	appName string
	userID  string

	ledgerService      *ledger.Service
	projector          *recurring.Projector
	series             *recurring.Series
	matchingService    *matching.Service
	importService      *importer.Service
	entitlementService *entitlement.Service

	currentView View

	importView view.ImportModel
	reviewView view.ReviewModel
	listView   view.ListModel
	planView   view.PlanModel
}

type View int

const (
	ViewMenu   View = 0
	ViewImport View = 1
	ViewReview View = 2
	ViewList   View = 3
	ViewPlan   View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	entries := ledgerStore.New(db)
	tombstones := recurringStore.NewPostgres(db)

	ledgerSvc := ledger.NewService(entries)
	matchSvc := matching.NewService(matchingStore.New(db))
	impSvc := importer.NewService()
	entSvc := entitlement.NewService(entitlementStore.New(db), nil)
	userID := cfg.TUI.UserID

	return model{
		appName:            cfg.App.Name,
		userID:             userID,
		ledgerService:      ledgerSvc,
		projector:          recurring.NewProjector(entries, tombstones, nil),
		series:             recurring.NewSeries(entries, tombstones),
		matchingService:    matchSvc,
		importService:      impSvc,
		entitlementService: entSvc,
		currentView:        ViewMenu,
		importView:         view.NewImportModel(ledgerSvc, impSvc, matchSvc, entSvc, userID),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				return m, m.importView.Init()
			case "2":
				m.currentView = ViewReview
				m.reviewView = view.NewReviewModel(m.ledgerService, m.matchingService, m.userID)

				return m, m.reviewView.Init()
			case "3":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.ledgerService, m.projector, m.series, m.userID)

				return m, m.listView.Init()
			case "4":
				m.currentView = ViewPlan
				m.planView = view.NewPlanModel(m.entitlementService, m.userID)

				return m, m.planView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewPlan:
		var newModel tea.Model
		newModel, cmd = m.planView.Update(msg)
		m.planView = newModel.(view.PlanModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.appName + "\n\n" +
				"1. Import Statement\n" +
				"2. Review Imported Entries\n" +
				"3. Ledger\n" +
				"4. Plan & Usage\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewReview:
		return m.reviewView.View()
	case ViewList:
		return m.listView.View()
	case ViewPlan:
		return m.planView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
