package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/db"
	"github.com/existflow/ideabox/internal/logger"
	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/repository"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List ideas",
	Long: `List ideas, most recently updated first. Only active ideas are shown
unless --status is given; --status all shows every idea.

Examples:
  ideabox list
  ideabox list -c technology -p high
  ideabox list --status archived
  ideabox list -k recipe --json`,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show [idea-id]",
	Short: "Show one idea",
	Long: `Show every field of an idea. A unique id prefix is enough.

Examples:
  ideabox show 3f2a9c1b`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var (
	listCategory string
	listPriority string
	listStatus   string
	listKeyword  string
)

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Filter by category (all for every category)")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Filter by priority")
	listCmd.Flags().StringVarP(&listStatus, "status", "s", string(model.StatusActive), "Filter by status (active, archived, completed, all)")
	listCmd.Flags().StringVarP(&listKeyword, "keyword", "k", "", "Match title, description or tags")
}

// parseStatusFilter accepts a status or "all", which disables the filter
func parseStatusFilter(s string) (model.Status, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	return model.ParseStatus(s)
}

// categoryColors loads display colors; a failure only loses the colors
func categoryColors(ctx context.Context, store *db.DB) map[string]string {
	colors, err := repository.NewCategoryRepository(store).Colors(ctx)
	if err != nil {
		logger.Warn("Failed to load category colors", logger.F("error", err))
		return map[string]string{}
	}
	return colors
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	status, err := parseStatusFilter(listStatus)
	if err != nil {
		return err
	}

	ideas, err := repository.NewIdeaRepository(store).FindAll(ctx, model.Filters{
		Category: listCategory,
		Priority: listPriority,
		Status:   status,
		Keyword:  listKeyword,
	})
	if err != nil {
		return fmt.Errorf("failed to list ideas: %w", err)
	}

	w := cmd.OutOrStdout()
	if wantJSON(w) {
		return printJSON(w, ideas)
	}

	if len(ideas) == 0 {
		fmt.Fprintln(w, "No ideas found. Add one with: ideabox add \"Your idea\" -c personal")
		return nil
	}

	title := "Ideas"
	if status != "" {
		title = strings.ToUpper(string(status[:1])) + string(status[1:]) + " ideas"
	}
	printIdeas(w, title, ideas, categoryColors(ctx, store))
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
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

	w := cmd.OutOrStdout()
	if wantJSON(w) {
		return printJSON(w, idea)
	}
	printIdea(w, idea, categoryColors(ctx, store))
	return nil
}
