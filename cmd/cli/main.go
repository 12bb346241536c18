package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/staff-cover/cmd/cli/commands"
	"github.com/jakechorley/staff-cover/internal/config"
	"github.com/jakechorley/staff-cover/pkg/core/services"
	"github.com/jakechorley/staff-cover/pkg/filestore"
	"github.com/jakechorley/staff-cover/pkg/metrics"
	"github.com/jakechorley/staff-cover/pkg/postgres"
	"github.com/jakechorley/staff-cover/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Staff Cover CLI - Assign cover for absent staff",
		Long:  `A CLI tool for assigning substitutes, paraprofessionals and teachers to cover the periods of absent staff.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		SilenceUsage: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")

	// Add all commands
	rootCmd.AddCommand(commands.AssignCoverCmd(app))
	rootCmd.AddCommand(commands.CheckLoadCmd(app))
	rootCmd.AddCommand(commands.ListRulesCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))

	err := execute(rootCmd)
	if app.Logger != nil {
		if err != nil {
			app.Logger.Error("Command failed", zap.Error(err))
		}
		app.Logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

// execute runs the command and then shuts down, also when the command failed
func execute(rootCmd *cobra.Command) error {
	err := rootCmd.Execute()
	if shutdownErr := shutdown(); shutdownErr != nil {
		err = errors.Join(err, shutdownErr)
	}
	return err
}

// initApp sets up logger, config, database, and the coverage service
func initApp() error {
	var err error
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Debug("Starting application", zap.String("environment", env))

	// Load configuration
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("school_id", app.Cfg.SchoolID))

	// Connect to the database, or load the data file
	if app.Cfg.DatabaseURL != "" {
		app.Logger.Debug("Connecting to database")
		app.Postgres, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.Database = app.Postgres
	} else {
		app.Logger.Debug("Loading data file", zap.String("path", app.Cfg.DataFile))
		app.Files, err = filestore.Open(app.Cfg.DataFile, app.Logger)
		if err != nil {
			return fmt.Errorf("failed to load data file: %w", err)
		}
		app.Database = app.Files
	}

	app.Metrics = metrics.NewCollector()

	app.Service, err = services.NewCoverageService(
		app.Database,
		app.Cfg,
		app.Logger,
		commands.NewLogNotifier(app.Logger),
		app.Metrics,
	)
	if err != nil {
		return fmt.Errorf("failed to create coverage service: %w", err)
	}

	return nil
}

// shutdown writes metrics and releases the database. initApp may have stopped part way.
func shutdown() error {
	if app.Postgres != nil {
		app.Postgres.Close()
	}

	if app.Cfg == nil || app.Metrics == nil || app.Cfg.MetricsFile == "" {
		return nil
	}
	if err := app.Metrics.WriteTextfile(app.Cfg.MetricsFile); err != nil {
		return err
	}
	if app.Logger != nil {
		app.Logger.Debug("Wrote metrics", zap.String("path", app.Cfg.MetricsFile))
	}
	return nil
}
