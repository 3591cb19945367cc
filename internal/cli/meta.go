package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/repository"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List every tag in use",
	RunE:  runTags,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about active ideas",
	Long: `Show how many active ideas there are per category and priority, and
how many were created in the last 7 days.`,
	RunE: runStats,
}

func runTags(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	tags, err := repository.NewIdeaRepository(store).GetAllTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}

	w := cmd.OutOrStdout()
	if wantJSON(w) {
		return printJSON(w, tags)
	}
	if len(tags) == 0 {
		fmt.Fprintln(w, "No tags yet.")
		return nil
	}
	for _, tag := range tags {
		fmt.Fprintf(w, "  #%s\n", tag)
	}
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := repository.NewIdeaRepository(store).GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	w := cmd.OutOrStdout()
	if wantJSON(w) {
		return printJSON(w, stats)
	}

	colors := categoryColors(ctx, store)
	fmt.Fprintf(w, "\n%s\n", HeaderStyle.Render("📊 Active ideas"))
	fmt.Fprintln(w, RuleStyle.Render(strings.Repeat("─", 40)))
	fmt.Fprintf(w, "%s %d\n", LabelStyle.Render("Total"), stats.Total)
	fmt.Fprintf(w, "%s %d\n", LabelStyle.Render("Last 7 days"), stats.RecentCount)

	if len(stats.ByCategory) > 0 {
		fmt.Fprintf(w, "\n%s\n", HeaderStyle.Render("By category"))
		for _, c := range stats.ByCategory {
			fmt.Fprintf(w, "  %s %d\n", CategoryStyle(colors, c.Category).Render(fmt.Sprintf("%-14s", c.Category)), c.Count)
		}
	}
	if len(stats.ByPriority) > 0 {
		fmt.Fprintf(w, "\n%s\n", HeaderStyle.Render("By priority"))
		for _, p := range stats.ByPriority {
			fmt.Fprintf(w, "  %s %d\n", GetPriorityStyle(p.Priority).Render(fmt.Sprintf("%-14s", p.Priority)), p.Count)
		}
	}
	fmt.Fprintln(w)
	return nil
}
