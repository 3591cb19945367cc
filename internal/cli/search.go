package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/repository"
	"github.com/existflow/ideabox/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search ideas with several criteria",
	Long: `Search ideas by keyword, categories, priorities, tags and creation date.
Repeated flags match any of the given values; different flags must all match.

Examples:
  ideabox search recipe
  ideabox search -c technology -c business -p high
  ideabox search --tag mobile --from 2026-01-01 --to 2026-01-31`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

var (
	searchCategories []string
	searchPriorities []string
	searchTags       []string
	searchFrom       string
	searchTo         string
	searchStatus     string
)

func init() {
	searchCmd.Flags().StringSliceVarP(&searchCategories, "category", "c", nil, "Match any of these categories")
	searchCmd.Flags().StringSliceVarP(&searchPriorities, "priority", "p", nil, "Match any of these priorities")
	searchCmd.Flags().StringSliceVarP(&searchTags, "tag", "t", nil, "Match ideas carrying any of these tags")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "Created on or after (YYYY-MM-DD or RFC 3339)")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "Created on or before (YYYY-MM-DD or RFC 3339)")
	searchCmd.Flags().StringVarP(&searchStatus, "status", "s", string(model.StatusActive), "Status to search in")
}

func runSearch(cmd *cobra.Command, args []string) error {
	dateRange, err := service.ParseDateRange(searchFrom, searchTo)
	if err != nil {
		return err
	}

	params := service.SearchParams{
		Categories: searchCategories,
		Priorities: searchPriorities,
		Tags:       searchTags,
		DateRange:  dateRange,
		Status:     model.Status(searchStatus),
	}
	if len(args) == 1 {
		params.Keyword = args[0]
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := service.NewIdeaService(repository.NewIdeaRepository(store)).AdvancedSearch(ctx, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if wantJSON(w) {
		return printJSON(w, result)
	}
	if result.Count == 0 {
		fmt.Fprintln(w, "No matching ideas.")
		return nil
	}
	printIdeas(w, "Matches", result.Matches, categoryColors(ctx, store))
	return nil
}
