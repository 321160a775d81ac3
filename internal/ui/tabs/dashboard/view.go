package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/averlow/healthdash/internal/ui/components"
	"github.com/averlow/healthdash/internal/ui/styles"
)

// View renders the dashboard component.
func (m *Model) View() string {
	set := m.state.GetIndicators()
	if set == nil {
		return m.renderLoading()
	}

	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderIndicatorCards())
	sections = append(sections, m.renderChart())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Health Dashboard")

	subtitle := "Daily health and food spend overview"
	if last := m.state.GetLastSynced(); !last.IsZero() {
		subtitle = fmt.Sprintf("Last synced %s", last.Format("15:04:05"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

// renderIndicatorCards renders the indicator grid, three cards per row.
func (m *Model) renderIndicatorCards() string {
	set := m.state.GetIndicators()

	sleepValue := fmt.Sprintf("±%.0f min", set.SleepStdDevMin)
	wakeValue := fmt.Sprintf("±%.0f min", set.WakeStdDevMin)

	topRow := []components.StatCard{
		{Title: "Active Days", Value: set.ActiveDays, Hint: "steps over threshold", Style: styles.SuccessTextStyle},
		{Title: "Energy Trend", Value: set.EnergyTrend, Hint: "7d vs prior 7d", Style: styles.GetTrendStyle(set.EnergyTrend)},
		{Title: "Spend Trend", Value: set.SpendTrend, Hint: "30d • 365d", Style: styles.GetTrendStyle(set.SpendTrend)},
	}

	bottomRow := []components.StatCard{
		{Title: "Clean Streak", Value: set.CleanStreak, Hint: "days without orders", Style: styles.StreakStyle},
		{Title: "Weight Trend", Value: set.WeightTrend, Hint: "45 day change", Style: styles.GetTrendStyle(set.WeightTrend)},
		{Title: "Goal Gap", Value: set.GoalGap, Hint: "to goal weight", Style: styles.GetGoalStyle(set.GoalGap)},
	}

	consistencyRow := []components.StatCard{
		{Title: "Sleep Consistency", Value: sleepValue, Hint: "bedtime stddev, 14d", Style: styles.InfoTextStyle},
		{Title: "Wake Consistency", Value: wakeValue, Hint: "wake stddev, 14d", Style: styles.InfoTextStyle},
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		components.RenderStatRow(topRow, m.width),
		components.RenderStatRow(bottomRow, m.width),
		components.RenderStatRow(consistencyRow, m.width*2/3),
	)
}

// renderChart renders the trailing two week chart with its legend.
func (m *Model) renderChart() string {
	set := m.state.GetIndicators()

	chartWidth := max(m.width-12, 40)
	chart := components.RenderDailyChart(set.Chart, chartWidth, 8)

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Last 14 Days"))
	rows = append(rows, chart)
	rows = append(rows, "")
	rows = append(rows, components.DailyChartLegend())

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
