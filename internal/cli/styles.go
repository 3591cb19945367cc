package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/ideabox/internal/model"
)

// Color palette
var (
	// Priority colors
	PriorityHigh   = lipgloss.Color("#FF6B6B") // Red
	PriorityMedium = lipgloss.Color("#FFE66D") // Yellow
	PriorityLow    = lipgloss.Color("#4ECDC4") // Blue

	// Status colors
	Active    = lipgloss.Color("#FFFFFF")
	Completed = lipgloss.Color("#95E1A3") // Green
	Archived  = lipgloss.Color("#6C757D") // Gray

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	RuleStyle = lipgloss.NewStyle().
			Foreground(Border)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(13)

	ArchivedStyle = lipgloss.NewStyle().
			Foreground(Archived).
			Strikethrough(true)

	CompletedStyle = lipgloss.NewStyle().
			Foreground(Completed)

	PriorityHighStyle   = lipgloss.NewStyle().Foreground(PriorityHigh).Bold(true)
	PriorityMediumStyle = lipgloss.NewStyle().Foreground(PriorityMedium)
	PriorityLowStyle    = lipgloss.NewStyle().Foreground(PriorityLow)
)

// GetPriorityStyle returns the style for a priority value. Unknown
// priorities render unstyled.
func GetPriorityStyle(priority string) lipgloss.Style {
	switch strings.ToLower(priority) {
	case "high":
		return PriorityHighStyle
	case "medium":
		return PriorityMediumStyle
	case "low":
		return PriorityLowStyle
	default:
		return lipgloss.NewStyle()
	}
}

// GetStatusStyle returns the style for a status
func GetStatusStyle(status model.Status) lipgloss.Style {
	switch status {
	case model.StatusCompleted:
		return CompletedStyle
	case model.StatusArchived:
		return ArchivedStyle
	default:
		return lipgloss.NewStyle().Foreground(Active)
	}
}

// CategoryStyle colors a category with its configured color
func CategoryStyle(colors map[string]string, category string) lipgloss.Style {
	if color, ok := colors[strings.ToLower(category)]; ok {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return MutedStyle
}
