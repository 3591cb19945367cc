package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the ideas API until interrupted.

Examples:
  ideabox serve
  ideabox serve --port 8080
  ideabox serve --db-url postgres://localhost:5432/ideabox?sslmode=disable`,
	RunE: runServe,
}

var servePort string

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}

	srv := server.New(cfg, store)
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error closing server", logger.F("error", err))
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "ideabox API listening on :%s (%s)\n", cfg.Port, cfg.Environment)
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
