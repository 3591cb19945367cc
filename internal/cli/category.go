package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/repository"
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"categories"},
	Short:   "Manage categories",
	Long: `List, create and remove the categories used to group and color ideas.
Ideas keep their category text even when the category is removed.`,
}

var categoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all categories",
	RunE:    runCategoryList,
}

var categoryNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new category",
	Long: `Create a new category.

Examples:
  ideabox category new "Side Projects"
  ideabox category new Music --color "#FF6B6B"`,
	Args: cobra.ExactArgs(1),
	RunE: runCategoryNew,
}

var categoryDeleteCmd = &cobra.Command{
	Use:     "delete [category-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a category",
	Args:    cobra.ExactArgs(1),
	RunE:    runCategoryDelete,
}

var categoryColor string

func init() {
	categoryNewCmd.Flags().StringVar(&categoryColor, "color", model.DefaultCategoryColor, "Category color (hex)")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryNewCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	categories, err := repository.NewCategoryRepository(store).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	w := cmd.OutOrStdout()
	if wantJSON(w) {
		return printJSON(w, categories)
	}
	if len(categories) == 0 {
		fmt.Fprintln(w, "No categories found.")
		return nil
	}

	stats, err := repository.NewIdeaRepository(store).GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to count ideas: %w", err)
	}
	active := make(map[string]int, len(stats.ByCategory))
	for _, c := range stats.ByCategory {
		active[strings.ToLower(c.Category)] += c.Count
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-15s  %-20s  %s\n", "ID", "Name", "Active")
	fmt.Fprintln(w, RuleStyle.Render(strings.Repeat("─", 50)))

	for _, c := range categories {
		style := CategoryStyle(map[string]string{c.ID: c.Color}, c.ID)
		count := active[c.ID]
		if name := strings.ToLower(c.Name); name != c.ID {
			count += active[name]
		}
		fmt.Fprintf(w, "  %-15s  %s  %d\n", c.ID, style.Render(fmt.Sprintf("%-20s", c.Name)), count)
	}

	fmt.Fprintln(w, RuleStyle.Render(strings.Repeat("─", 50)))
	fmt.Fprintf(w, "  %d categories, %d active ideas\n\n", len(categories), stats.Total)
	return nil
}

func runCategoryNew(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	category, err := repository.NewCategoryRepository(store).Create(ctx, model.Category{
		Name:  args[0],
		Color: categoryColor,
	})
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return printResult(cmd.OutOrStdout(), category, "✓ Created category: %s (id: %s)", category.Name, category.ID)
}

func runCategoryDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := repository.NewCategoryRepository(store).Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return printResult(cmd.OutOrStdout(), map[string]interface{}{"deleted": true, "id": args[0]},
		"🗑️  Deleted category: %s", args[0])
}
