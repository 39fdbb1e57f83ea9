package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/miyuchina/catalog/catalog"
	"github.com/miyuchina/catalog/config"
	"github.com/miyuchina/catalog/db"
	"github.com/miyuchina/catalog/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var store *string
var sqlitePath *string
var migrate *bool

func init() {
	store = rootCmd.Flags().String("store", "", "Destination store, postgres or sqlite (default $CATALOG_STORE).")
	sqlitePath = rootCmd.Flags().String("sqlite", "", "SQLite database file (default $CATALOG_SQLITE_PATH).")
	migrate = rootCmd.Flags().Bool("migrate", true, "Apply pending Postgres migrations before loading.")
}

// counter is implemented by both stores.
type counter interface {
	CountByTerm(ctx context.Context) ([]db.TermCount, error)
}

var rootCmd = &cobra.Command{
	Use:   "load [checkpoint]",
	Short: "Loads a course checkpoint into the database.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.New(cfg.LogLevel, cfg.LogPretty)
		if *store != "" {
			cfg.Store = *store
		}
		if *sqlitePath != "" {
			cfg.SQLitePath = *sqlitePath
		}
		checkpoint := cfg.Checkpoint
		if len(args) == 1 {
			checkpoint = args[0]
		}

		courses, err := catalog.ReadCheckpoint(checkpoint)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var destination db.Store
		var counts counter
		switch cfg.Store {
		case "sqlite":
			sqlite, err := db.OpenSQLite(ctx, cfg.SQLitePath)
			if err != nil {
				return err
			}
			defer sqlite.Close()
			destination, counts = sqlite, sqlite
		case "postgres":
			if cfg.DatabaseConnectionString == "" {
				return errors.New("DATABASE_CONNECTION_STRING is not set")
			}
			database, err := db.Connect(ctx, cfg.DatabaseConnectionString)
			if err != nil {
				return err
			}
			defer database.Close()
			if *migrate {
				if err := database.Migrate(); err != nil {
					return err
				}
			}
			destination, counts = database, database
		default:
			return errors.New("unknown store " + cfg.Store)
		}

		result, err := db.NewLoader(&log.Logger).Load(ctx, destination, courses)
		if err != nil {
			return err
		}

		termCounts, err := counts.CountByTerm(ctx)
		if err != nil {
			return err
		}
		printSummary(result, termCounts)
		return nil
	},
}

func printSummary(result db.LoadResult, counts []db.TermCount) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Term", "Courses", "Sections"})
	for _, count := range counts {
		t.AppendRow(table.Row{count.Term, count.Courses, count.Sections})
	}
	t.AppendFooter(table.Row{"Loaded", result.Courses, result.Sections})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SilenceUsage = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Unable to load courses")
		stop()
		os.Exit(1)
	}
}
