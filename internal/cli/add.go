package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/repository"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new idea",
	Long: `Add a new idea. Category and priority are required.

Examples:
  ideabox add "Recipe sharing app" -c technology -p high
  ideabox add "Weekend pottery class" -c creative -p low -t "hobby, clay"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addCategory    string
	addPriority    string
	addDescription string
	addTags        string
)

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "Category (e.g. technology, business)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "medium", "Priority (high, medium, low)")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Longer description")
	addCmd.Flags().StringVarP(&addTags, "tags", "t", "", "Comma separated tags")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	in := model.IdeaInput{
		Title:       strings.Join(args, " "),
		Description: addDescription,
		Category:    addCategory,
		Priority:    addPriority,
		Tags:        addTags,
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}

	idea, err := repository.NewIdeaRepository(store).Create(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to create idea: %w", err)
	}

	return printResult(cmd.OutOrStdout(), idea, "✓ Added to [%s]: %q (%s) %s",
		idea.Category, idea.Title, idea.Priority, shortID(idea.ID))
}
