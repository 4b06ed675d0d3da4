package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jinbangyi/apikey-usage-inspector/internal/provider"
)

func PrintJSON(data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data to JSON: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

func PrintTable(batch *provider.RunBatch) {
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.ASCIIBorder()).
		BorderRow(true).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		}).
		Headers("PROVIDER", "STATUS", "USAGE", "DETAIL")

	for _, r := range batch.Results {
		t.Row(
			r.Provider,
			string(r.Status),
			formatUsage(r.Metrics),
			truncate(r.ErrorDetail, 60),
		)
	}

	fmt.Printf("API Key Usage (run %s)\n", batch.RunID)
	fmt.Println(t)
	fmt.Printf("Started: %s\n", batch.StartedAt.Format(time.RFC1123))
}

func formatUsage(metrics []provider.UsageMetric) string {
	if len(metrics) == 0 {
		return "N/A"
	}

	used, limit := pick(metrics, provider.MetricUsed), pick(metrics, provider.MetricLimit)
	if used == nil && limit == nil {
		return fmt.Sprintf("%d metric(s)", len(metrics))
	}

	var parts []string
	switch {
	case used != nil && limit != nil && *limit > 0:
		percent := (*used / *limit) * 100
		parts = append(parts, fmt.Sprintf("%s/%s %s %.0f%%",
			formatNumber(*used), formatNumber(*limit), progressBar(percent), percent))
	case used != nil:
		parts = append(parts, fmt.Sprintf("used %s", formatNumber(*used)))
	default:
		parts = append(parts, fmt.Sprintf("limit %s", formatNumber(*limit)))
	}
	return strings.Join(parts, "\n")
}

// pick returns the first value for the named metric, or nil.
func pick(metrics []provider.UsageMetric, name string) *float64 {
	for _, m := range metrics {
		if m.Name == name {
			v := m.Value
			return &v
		}
	}
	return nil
}

func progressBar(percent float64) string {
	width := 10

	if percent < 0 || percent != percent {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int((percent / 100) * float64(width))
	empty := width - filled

	return fmt.Sprintf("[%s%s]",
		strings.Repeat("#", filled),
		strings.Repeat("-", empty),
	)
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", n/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return strconv.FormatFloat(n, 'f', 0, 64)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
