package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/averlow/healthdash/internal/ui/styles"
)

// StatCard is one titled value on the dashboard grid.
type StatCard struct {
	Title string
	Value string
	Hint  string
	Style lipgloss.Style
}

// Render draws the card at the given inner width.
func (c StatCard) Render(width int) string {
	if width < 10 {
		width = 10
	}

	valueStyle := c.Style

	var b strings.Builder
	b.WriteString(styles.CardTitleStyle.Render(c.Title))
	b.WriteString("\n")
	b.WriteString(valueStyle.Bold(true).Render(c.Value))
	if c.Hint != "" {
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render(c.Hint))
	}

	return styles.CardStyle.Width(width).Render(b.String())
}

// RenderStatRow lays cards out horizontally, splitting the available width
// evenly.
func RenderStatRow(cards []StatCard, totalWidth int) string {
	if len(cards) == 0 {
		return ""
	}

	cardWidth := totalWidth/len(cards) - 6
	if cardWidth < 14 {
		cardWidth = 14
	}

	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = c.Render(cardWidth)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
