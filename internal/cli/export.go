package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizdesk/internal/config"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
	"quizdesk/internal/infra/sqlite"
)

// collectionExport is the top-level JSON structure written by the export
// subcommand.
type collectionExport struct {
	ExportedAt time.Time     `json:"exportedAt"`
	Quizzes    []domain.Quiz `json:"quizzes"`
}

// NewExportCmd writes the quiz collection, or one quiz, as JSON.
func NewExportCmd(configPath, dataDSN *string) *cobra.Command {
	var (
		outPath string
		quizID  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export quizzes as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := *dataDSN
			if dsn == "" {
				if cfg, err := config.Load(*configPath); err == nil {
					dsn = cfg.Storage.DSN
				}
			}
			return runExport(cmd.Context(), dsn, outPath, quizID)
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "quizdesk-export.json", "output file path")
	cmd.Flags().StringVar(&quizID, "quiz", "", "export only this quiz ID")
	return cmd
}

func runExport(ctx context.Context, dsn, outPath, quizID string) error {
	db, err := sqlite.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := sqlite.Migrate(ctx, db); err != nil {
		return err
	}

	store := memory.NewStore(sqlite.NewPersister(db), zap.NewNop())
	quizzes, err := store.List(ctx)
	if err != nil {
		return err
	}
	if quizID != "" {
		quiz, err := store.Get(ctx, quizID)
		if err != nil {
			return err
		}
		quizzes = []domain.Quiz{quiz}
	}

	data, err := json.MarshalIndent(collectionExport{
		ExportedAt: time.Now().UTC(),
		Quizzes:    quizzes,
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %d quiz(es) to %s\n", len(quizzes), outPath)
	return nil
}
