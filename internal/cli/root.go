package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/config"
	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/logger"
)

var (
	logLevel   string
	logFile    string
	logConsole bool

	dbDriver string
	dbPath   string
	dbURL    string

	jsonOutput bool

	// cfg is the effective configuration, loaded before every command
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ideabox",
	Short: "ideabox - capture and organize ideas",
	Long: `ideabox keeps a personal collection of ideas with categories,
priorities, tags and a lifecycle status.

Use the subcommands to manage ideas from the terminal, or 'ideabox serve'
to run the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config from file (or defaults if not exists)
		loaded, err := config.Load()
		if err != nil {
			cmd.PrintErrf("Warning: %v, using defaults\n", err)
			loaded = config.DefaultConfig()
		}
		cfg = loaded

		// Override with CLI flags if provided
		configChanged := false
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
			configChanged = true
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
			configChanged = true
		}
		if cmd.Flags().Changed("db-driver") {
			cfg.Database.Driver = dbDriver
		}
		if cmd.Flags().Changed("db-path") {
			cfg.Database.Path = dbPath
		}
		if cmd.Flags().Changed("db-url") {
			cfg.Database.URL = dbURL
			if !cmd.Flags().Changed("db-driver") {
				cfg.Database.Driver = db.DriverPostgres
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// Save config if changed via CLI flags
		if configChanged {
			if err := cfg.Save(config.Path()); err != nil {
				cmd.PrintErrf("Warning: failed to save config: %v\n", err)
			}
		}

		// Console logs would mix with command output; only serve keeps them
		// unless asked for explicitly
		console := cfg.LogConsole && cmd.Name() == "serve"
		if cmd.Flags().Changed("log-console") {
			console = logConsole
		}

		logConfig := logger.Config{
			Level:      logger.ParseLevel(cfg.LogLevel),
			FilePath:   cfg.LogFile,
			MaxSize:    10 * 1024 * 1024, // 10MB
			MaxAge:     7,
			MaxBackups: 5,
			Console:    console,
		}

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("ideabox started", logger.F("command", cmd.Name()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("ideabox exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// openStore opens the configured store. Callers close it.
func openStore(ctx context.Context) (*db.DB, error) {
	store, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		logger.Error("Failed to open database", logger.F("driver", cfg.Database.Driver), logger.F("error", err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

func init() {
	// Add logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	// Storage flags, not persisted
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver (sqlite, postgres)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL connection URL")

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of a table")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(duplicateCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(bulkStatusCmd)
	rootCmd.AddCommand(categoryCmd)
}
