package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/repository"
)

var editCmd = &cobra.Command{
	Use:   "edit [idea-id]",
	Short: "Edit an idea",
	Long: `Change fields of an idea. Fields without a flag keep their value.

Examples:
  ideabox edit 3f2a9c1b --title "Recipe sharing platform"
  ideabox edit 3f2a9c1b -p high -t "food, social"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var statusCmd = &cobra.Command{
	Use:   "status [idea-id] [status]",
	Short: "Change the status of an idea",
	Long: `Move an idea to active, archived or completed.

Examples:
  ideabox status 3f2a9c1b completed
  ideabox status 3f2a9c1b active`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

var (
	editTitle       string
	editCategory    string
	editPriority    string
	editDescription string
	editTags        string
	editStatus      string
)

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	editCmd.Flags().StringVarP(&editTags, "tags", "t", "", "New comma separated tags")
	editCmd.Flags().StringVarP(&editStatus, "status", "s", "", "New status")
}

func runEdit(cmd *cobra.Command, args []string) error {
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
	current, err := repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get idea: %w", err)
	}
	if current == nil {
		return model.NewNotFoundError(id)
	}

	in := current.Input()
	flags := cmd.Flags()
	if flags.Changed("title") {
		in.Title = editTitle
	}
	if flags.Changed("category") {
		in.Category = editCategory
	}
	if flags.Changed("priority") {
		in.Priority = editPriority
	}
	if flags.Changed("description") {
		in.Description = editDescription
	}
	if flags.Changed("tags") {
		in.Tags = editTags
	}
	if flags.Changed("status") {
		in.Status = model.Status(editStatus)
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}

	idea, err := repo.Update(ctx, id, in)
	if err != nil {
		return fmt.Errorf("failed to update idea: %w", err)
	}

	return printResult(cmd.OutOrStdout(), idea, "✓ Updated: %q", idea.Title)
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := model.ParseStatus(args[1])
	if err != nil {
		return err
	}

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

	idea, err := repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	icon := "○"
	switch idea.Status {
	case model.StatusCompleted:
		icon = "✓"
	case model.StatusArchived:
		icon = "📦"
	}
	return printResult(cmd.OutOrStdout(), idea, "%s %s: %q", icon, idea.Status, idea.Title)
}
