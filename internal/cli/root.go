package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dataDSN    string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("QUIZDESK_CONFIG")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envData := os.Getenv("QUIZDESK_DATA")

	cmd := &cobra.Command{
		Use:   "quizdesk",
		Short: "Single-user quiz authoring and playback in the terminal",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&dataDSN, "data", envData, "SQLite DSN for local storage")
	cmd.AddCommand(NewRunCmd(&configPath, &dataDSN))
	cmd.AddCommand(NewMigrateCmd(&configPath, &dataDSN))
	cmd.AddCommand(NewExportCmd(&configPath, &dataDSN))
	return cmd
}
