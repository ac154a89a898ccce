package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"facescanner/internal/config"
	"facescanner/internal/logger"
	"facescanner/internal/repository/sqlite"
	"facescanner/internal/service/journal"
)

var (
	// Journal is opened before every subcommand and closed afterwards.
	Journal *journal.Service

	dbPath string
	out    io.Writer = os.Stdout

	db *sqlite.DB
	lg *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sessions",
	Short:         "Inspect the Face Scanner session journal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if dbPath == "" {
			dbPath = cfg.SessionDB
		}
		if dbPath == "" {
			return errors.New("no session database: set SESSION_DB or pass --db")
		}
		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("session database %s: %w", dbPath, err)
		}

		var err error
		db, err = sqlite.New(dbPath)
		if err != nil {
			return err
		}

		lg = logger.NewLogger(cfg)
		Journal = journal.NewService(sqlite.NewSessionRepository(db), sqlite.NewClassifierStatusRepository(db), lg)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeJournal()
	},
}

func closeJournal() {
	if db != nil {
		db.Close()
		db = nil
	}
	if lg != nil {
		lg.Close()
		lg = nil
	}
	Journal = nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRun is skipped when a command fails.
	closeJournal()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "session database path (default: $SESSION_DB)")
}
