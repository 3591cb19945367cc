package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/existflow/ideabox/internal/model"
)

// wantJSON reports whether output should be JSON: when asked for, or when
// stdout is not a terminal
func wantJSON(w io.Writer) bool {
	if jsonOutput {
		return true
	}
	f, ok := w.(*os.File)
	return !ok || !term.IsTerminal(int(f.Fd()))
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printIdeas(w io.Writer, title string, ideas []model.Idea, colors map[string]string) {
	fmt.Fprintf(w, "\n%s\n", HeaderStyle.Render(fmt.Sprintf("💡 %s (%d)", title, len(ideas))))
	fmt.Fprintln(w, RuleStyle.Render(strings.Repeat("─", 80)))

	for _, idea := range ideas {
		printIdeaRow(w, idea, colors)
	}
	fmt.Fprintln(w)
}

func printIdeaRow(w io.Writer, idea model.Idea, colors map[string]string) {
	fmt.Fprintf(w, "  %s  %s  %s  %s  %s\n",
		MutedStyle.Render(fmt.Sprintf("%-8s", shortID(idea.ID))),
		GetStatusStyle(idea.Status).Render(fmt.Sprintf("%-40s", truncate(idea.Title, 40))),
		CategoryStyle(colors, idea.Category).Render(fmt.Sprintf("%-12s", truncate(idea.Category, 12))),
		GetPriorityStyle(idea.Priority).Render(fmt.Sprintf("%-8s", truncate(idea.Priority, 8))),
		MutedStyle.Render(idea.UpdatedAt.Local().Format("Jan 2")))
}

func printIdea(w io.Writer, idea *model.Idea, colors map[string]string) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", LabelStyle.Render(label), value)
	}

	fmt.Fprintf(w, "\n%s\n", HeaderStyle.Render(idea.Title))
	fmt.Fprintln(w, RuleStyle.Render(strings.Repeat("─", 60)))
	row("ID", idea.ID)
	row("Category", CategoryStyle(colors, idea.Category).Render(idea.Category))
	row("Priority", GetPriorityStyle(idea.Priority).Render(idea.Priority))
	row("Status", GetStatusStyle(idea.Status).Render(string(idea.Status)))
	if tags := idea.TagList(); len(tags) > 0 {
		row("Tags", strings.Join(tags, ", "))
	}
	row("Created", idea.CreatedAt.Local().Format("2006-01-02 15:04"))
	row("Updated", idea.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if idea.Description != "" {
		fmt.Fprintf(w, "\n%s\n", idea.Description)
	}
	fmt.Fprintln(w)
}

// printResult prints v as JSON or, on a terminal, the human message
func printResult(w io.Writer, v interface{}, format string, args ...interface{}) error {
	if wantJSON(w) {
		return printJSON(w, v)
	}
	_, err := fmt.Fprintf(w, format+"\n", args...)
	return err
}
