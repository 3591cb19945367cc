package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/repository"
	"github.com/existflow/ideabox/internal/service"
)

var bulkStatusCmd = &cobra.Command{
	Use:   "bulk-status [status] [idea-id...]",
	Short: "Change the status of several ideas",
	Long: `Move several ideas to the same status. Each idea is updated on its
own; ideas that cannot be updated are reported and the rest still change.

Examples:
  ideabox bulk-status archived 3f2a9c1b 77d0e4aa`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBulkStatus,
}

func runBulkStatus(cmd *cobra.Command, args []string) error {
	if _, err := model.ParseStatus(args[0]); err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := repository.NewIdeaRepository(store)

	// Expand short ids; unresolvable ones are passed through and reported
	ids := make([]string, 0, len(args)-1)
	for _, arg := range args[1:] {
		id, err := repo.ResolveID(ctx, arg)
		if err != nil {
			logger.Debug("Could not resolve id", logger.F("id", arg), logger.F("error", err))
			id = arg
		}
		ids = append(ids, id)
	}

	result, err := service.NewIdeaService(repo).BulkStatusUpdate(ctx, ids, args[0])
	if err != nil {
		return fmt.Errorf("bulk update failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if wantJSON(w) {
		return printJSON(w, result)
	}

	for _, idea := range result.Updated {
		fmt.Fprintf(w, "✓ %s: %q\n", idea.Status, idea.Title)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "✗ %s: %s\n", e.IdeaID, e.Error)
	}
	fmt.Fprintf(w, "%d updated, %d failed\n", result.UpdatedCount, result.ErrorCount)
	return nil
}
