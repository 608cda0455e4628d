package cli

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"portfolio-chat/internal/config"
	"portfolio-chat/internal/db"
	"portfolio-chat/internal/logging"
)

var configPath string

// Execute builds the command tree and runs it.
func Execute(version, commit, date string) error {
	return newRootCmd(version, commit, date).Execute()
}

func newRootCmd(version, commit, date string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "portfolio-chat",
		Short:         "Room chat and admin API for the portfolio site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "directory holding config.yaml (default . and ./config)")

	cmd.AddCommand(newServeCmd(version))
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newSetupAdminCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd(version, commit, date))

	return cmd
}

// loadConfig reads the configuration and initialises the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Init(logging.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	return cfg, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	return db.Connect(ctx, cfg.Database)
}
