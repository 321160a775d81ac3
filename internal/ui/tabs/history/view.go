package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/averlow/healthdash/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())

	switch {
	case m.errorMsg != "":
		sections = append(sections, styles.ErrorTextStyle.Render("  "+m.errorMsg))
	case m.loading && len(m.rows) == 0:
		sections = append(sections, styles.HelpStyle.Render("  Loading history..."))
	case len(m.rows) == 0:
		sections = append(sections, styles.HelpStyle.Render("  No records yet. Press s to sync."))
	default:
		sections = append(sections, m.renderTable())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the history title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("History")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("Last %d days, newest first", len(m.rows)))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

const rowFormat = "%-12s %9s %8s %9s %7s %9s %7s"

// renderTable renders the merged daily record table.
func (m *Model) renderTable() string {
	var lines []string

	header := fmt.Sprintf(rowFormat, "Date", "Weight", "Steps", "Energy", "Sleep", "Spend", "Orders")
	lines = append(lines, styles.TableHeaderStyle.Render(header))

	for _, row := range m.rows {
		lines = append(lines, styles.TableCellStyle.Render(m.renderRow(row)))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(row dayRow) string {
	weight, steps, energy, sleep := "-", "-", "-", "-"
	spend, orders := "-", "-"

	if mt := row.metric; mt != nil {
		if mt.Weight != nil {
			weight = fmt.Sprintf("%.1f lbs", *mt.Weight)
		}
		if mt.Steps != nil {
			steps = fmt.Sprintf("%d", *mt.Steps)
		}
		if mt.ActiveEnergy != nil {
			energy = fmt.Sprintf("%.0f kc", *mt.ActiveEnergy)
		}
		if mt.SleepMinutes != nil {
			sleep = fmt.Sprintf("%.1fh", *mt.SleepMinutes/60)
		}
	}

	if sp := row.spend; sp != nil {
		spend = fmt.Sprintf("$%.2f", sp.TotalAmount)
		orders = fmt.Sprintf("%d", sp.OrderCount)
	}

	return fmt.Sprintf(rowFormat,
		row.day.Format("2006-01-02"), weight, steps, energy, sleep, spend, orders)
}
