package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/repository"
	"github.com/existflow/ideabox/internal/service"
)

var duplicateCmd = &cobra.Command{
	Use:     "duplicate [idea-id]",
	Aliases: []string{"dup"},
	Short:   "Copy an idea",
	Long: `Create an active copy of an idea with " (Copy)" appended to its title.

Examples:
  ideabox duplicate 3f2a9c1b`,
	Args: cobra.ExactArgs(1),
	RunE: runDuplicate,
}

func runDuplicate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	repo := repository.NewIdeaRepository(store)
	id, err := repo.ResolveID(ctx, args[0])
	if err != nil {
		return err
	}

	idea, err := service.NewIdeaService(repo).Duplicate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to duplicate idea: %w", err)
	}

	return printResult(cmd.OutOrStdout(), idea, "✓ Duplicated: %q %s", idea.Title, shortID(idea.ID))
}
