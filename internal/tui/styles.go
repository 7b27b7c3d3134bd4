package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles of the filter view
type Styles struct {
	SearchActive   lipgloss.Style
	SearchInactive lipgloss.Style
	SectionTitle   lipgloss.Style
	Item           lipgloss.Style
	Empty          lipgloss.Style
	Count          lipgloss.Style
	Help           lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		SearchActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1),
		SearchInactive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1),
		SectionTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginTop(1),
		Item: lipgloss.NewStyle().
			PaddingLeft(2),
		Empty: lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("203")).
			PaddingLeft(2),
		Count: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
	}
}
