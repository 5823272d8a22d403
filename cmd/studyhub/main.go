// Command studyhub runs the Study Hub API and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alem-hub/studyhub/config"
	"github.com/alem-hub/studyhub/pkg/logger"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:           "studyhub",
		Short:         "Study group matching and study-token ledger service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"YAML config file (overrides $"+config.FileEnvVar+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level override: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, migrateCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig applies the persistent flags and loads configuration.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		if err := os.Setenv(config.FileEnvVar, configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Observability.LogLevel = logLevel
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		Format:    cfg.Observability.LogFormat,
		AddCaller: !cfg.IsProduction(),
	}).With(
		logger.String("service", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)
}
