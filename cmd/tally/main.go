package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/entitlement"
	entitlementStore "github.com/MrJamesThe3rd/tally/internal/entitlement/store"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tally/internal/ledger/store"
	"github.com/MrJamesThe3rd/tally/internal/recurring"
	recurringStore "github.com/MrJamesThe3rd/tally/internal/recurring/store"
)

// app holds the services shared by every command. It is built lazily so
// commands like token run without a database.
type app struct {
	cfg *config.Config
	db  *sql.DB

	ledger      *ledger.Service
	projector   *recurring.Projector
	entitlement *entitlement.Service
}

var (
	cli    = &app{}
	userID string
)

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Administer Tally ledgers and entitlements",
	Long: `Operational commands for the Tally API: run recurring reconciliation,
inspect or change a user's plan, and mint API tokens.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		cli.cfg = cfg

		if userID == "" {
			userID = cfg.TUI.UserID
		}

		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if cli.db != nil {
			_ = cli.db.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User id (default: TALLY_USER_ID)")
}

// connect opens the database and builds the services on first use.
func (a *app) connect() error {
	if a.db != nil {
		return nil
	}

	db, err := database.New(a.cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	entries := ledgerStore.New(db)

	a.db = db
	a.ledger = ledger.NewService(entries)
	a.projector = recurring.NewProjector(entries, recurringStore.NewPostgres(db), nil)
	a.entitlement = entitlement.NewService(entitlementStore.New(db), nil)

	return nil
}

// parseAsOf reads an optional YYYY-MM-DD flag, defaulting to now.
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}

	return ledger.ParseDate(s)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
