package service

import (
	"strings"
	"time"

	"github.com/existflow/ideabox/internal/model"
)

var csvHeader = []string{
	"Id", "Title", "Description", "Category", "Priority", "Tags", "Status", "CreatedAt", "UpdatedAt",
}

// renderCSV writes one header line and one line per idea. Every field is
// quoted and embedded quotes are doubled.
func renderCSV(ideas []model.Idea) string {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))

	for _, idea := range ideas {
		b.WriteByte('\n')
		writeCSVRow(&b, []string{
			idea.ID,
			idea.Title,
			idea.Description,
			idea.Category,
			idea.Priority,
			idea.Tags,
			string(idea.Status),
			formatTime(idea.CreatedAt),
			formatTime(idea.UpdatedAt),
		})
	}

	b.WriteByte('\n')
	return b.String()
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
