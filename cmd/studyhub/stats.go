package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/alem-hub/studyhub/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print platform totals from the configured store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Read directly from the store, never from a shared cache.
		cfg.Redis.Enabled = false
		cfg.Lock.Backend = config.LockLocal
		cfg.Observability.LogLevel = "warn"

		comps, err := build(cmd.Context(), cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer func() { _ = comps.Close() }()

		st, err := comps.app.PlatformStats.Handle(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	},
}
