package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/repository"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [idea-id]",
	Aliases: []string{"rm"},
	Short:   "Delete an idea",
	Long: `Delete an idea permanently. Archive it instead to keep it around.

Examples:
  ideabox delete 3f2a9c1b
  ideabox rm 3f2a9c1b --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteYes bool

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
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
	idea, err := repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get idea: %w", err)
	}
	if idea == nil {
		return model.NewNotFoundError(id)
	}

	// Only prompt when someone can answer
	if !deleteYes && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(cmd.OutOrStdout(), "About to delete: %q (ID: %s)\n", idea.Title, idea.ID)
		fmt.Fprint(cmd.OutOrStdout(), "Are you sure? [y/N]: ")
		var confirm string
		fmt.Fscanln(cmd.InOrStdin(), &confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	result, err := repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete idea: %w", err)
	}

	return printResult(cmd.OutOrStdout(), result, "🗑️  Deleted: %q", idea.Title)
}
