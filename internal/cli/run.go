package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizdesk/internal/app"
	"quizdesk/internal/config"
	"quizdesk/internal/infra/memory"
	"quizdesk/internal/infra/sqlite"
	"quizdesk/internal/logging"
	"quizdesk/internal/transport/term"
)

// NewRunCmd builds the subcommand that starts the interactive app.
func NewRunCmd(configPath, dataDSN *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive quiz desk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd.Context(), *configPath, *dataDSN)
		},
	}
}

func runApp(ctx context.Context, configPath, dsnFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		// A missing config file is fine; everything has a default.
		cfg = config.Default()
	}
	logger := logging.New(cfg.Log.File, cfg.Log.Level)
	defer logger.Sync()

	dsn := dsnFlag
	if dsn == "" {
		dsn = cfg.Storage.DSN
	}
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := sqlite.Migrate(ctx, db); err != nil {
		return err
	}

	store := memory.NewStore(sqlite.NewPersister(db), logger.Named("store"))
	ui := term.New(os.Stdin, os.Stdout, logger.Named("ui"))
	router := app.NewRouter(store, store, ui, logger.Named("router"),
		app.WithDefaultTimePerQuestion(config.SecondsOrDefault(cfg.Quiz.DefaultTimePerQuestion, 30)))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("quizdesk started", zap.String("config", configPath))
	err = ui.Run(ctx, router, cfg.Player.Name)
	if engine := router.Engine(); engine != nil {
		// A session abandoned by shutdown is discarded, never scored.
		engine.Cancel()
	}
	logger.Info("quizdesk stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
