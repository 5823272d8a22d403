package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alem-hub/studyhub/config"
	"github.com/alem-hub/studyhub/internal/infrastructure/persistence/postgres"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Manage the PostgreSQL schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Backend != config.BackendPostgres {
		return fmt.Errorf("migrate requires STORE_BACKEND=%s, got %s", config.BackendPostgres, cfg.Store.Backend)
	}
	log := newLogger(cfg)
	ctx := cmd.Context()

	conn, err := postgres.NewConnection(ctx, postgresConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	m := postgres.NewMigrator(conn)
	action := "up"
	if len(args) == 1 {
		action = args[0]
	}

	switch action {
	case "down":
		if err := m.Rollback(ctx); err != nil {
			return err
		}
		log.Info("rolled back last migration")
	case "status":
		applied, err := m.Status(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, mig := range applied {
			state := "pending"
			if mig.IsApplied {
				state = "applied " + mig.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%03d %-24s %s\n", mig.Version, mig.Name, state)
		}
	default:
		if err := m.Migrate(ctx); err != nil {
			return err
		}
		log.Info("migrations applied")
	}
	return nil
}
