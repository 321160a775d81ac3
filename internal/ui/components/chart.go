// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/averlow/healthdash/internal/models"
	"github.com/averlow/healthdash/internal/ui/styles"
)

// ChartColors defines colors for chart series.
var (
	ChartEnergyColor = lipgloss.Color("#FF8C00")
	ChartSleepColor  = lipgloss.Color("#5FAFFF")
	ChartSpendColor  = lipgloss.Color("#04B575")
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)

	return graph
}

// RenderDailyChart plots active energy, sleep hours and spend over the given
// chart points as three series. Each series is normalized to percent of its
// own max so wildly different units share one y axis; missing values plot as
// zero.
func RenderDailyChart(points []models.ChartPoint, width, height int) string {
	if len(points) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	energy := make([]float64, len(points))
	sleep := make([]float64, len(points))
	spend := make([]float64, len(points))
	for i, p := range points {
		energy[i] = p.Energy
		sleep[i] = p.SleepHours
		if p.Spend != nil {
			spend[i] = *p.Spend
		}
	}

	graph := asciigraph.PlotMany(
		[][]float64{normalizePercent(energy), normalizePercent(sleep), normalizePercent(spend)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(
			asciigraph.Goldenrod,
			asciigraph.SkyBlue,
			asciigraph.SpringGreen,
		),
	)

	return graph
}

// normalizePercent rescales values to [0, 100] of the series max.
func normalizePercent(values []float64) []float64 {
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v / maxVal) * 100
	}
	return out
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	// Find max value
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		idx := int(float64(i) * step)
		val := values[idx]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		if normalized >= len(sparkChars) {
			normalized = len(sparkChars) - 1
		}
		if normalized < 0 {
			normalized = 0
		}
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// DailyChartLegend is the legend matching RenderDailyChart's series order.
func DailyChartLegend() string {
	return RenderLegend([]LegendItem{
		{Label: "Energy", Color: ChartEnergyColor},
		{Label: "Sleep", Color: ChartSleepColor},
		{Label: "Spend", Color: ChartSpendColor},
	})
}
