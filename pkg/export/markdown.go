package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vanderheijden86/keymatrix/pkg/analysis"
	"github.com/vanderheijden86/keymatrix/pkg/model"
	"github.com/vanderheijden86/keymatrix/pkg/palette"
)

// GenerateReport renders a Markdown overview of a keyword matrix: headline
// numbers, the subcategory breakdown and the most central keywords.
func GenerateReport(m model.Matrix, stats analysis.GraphStats, title string) string {
	var sb strings.Builder

	if title == "" {
		title = "Keyword Matrix"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "*Source: %s · updated %s*\n\n", m.Source, m.LastUpdated.Format(time.RFC3339))

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Keywords | %d |\n", m.TotalKeywords)
	fmt.Fprintf(&sb, "| Active | %d |\n", m.ActiveKeywords)
	fmt.Fprintf(&sb, "| Connections | %d |\n", m.TotalConnections)
	fmt.Fprintf(&sb, "| Network density | %.1f%% |\n", m.NetworkDensity)
	fmt.Fprintf(&sb, "| Dependency edges | %d |\n", stats.EdgeCount)
	fmt.Fprintf(&sb, "| Components | %d |\n\n", len(stats.Components))

	counts := make(map[string]int)
	for _, k := range m.Keywords {
		counts[k.Subcategory]++
	}
	codes := make([]string, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	sb.WriteString("## Subcategories\n\n")
	sb.WriteString("| Code | Name | Keywords | Share |\n|---|---|---|---|\n")
	for _, code := range codes {
		info := palette.Info(code)
		name := info.Name
		if name == "" {
			name = "-"
		}
		share := float64(counts[code]) / float64(max(len(m.Keywords), 1))
		fmt.Fprintf(&sb, "| %s | %s | %d | %s |\n", displayCode(code), name, counts[code], barChart(share))
	}
	sb.WriteString("\n")

	if len(stats.Hubs) > 0 {
		sb.WriteString("## Central keywords\n\n")
		for i, h := range stats.Hubs {
			fmt.Fprintf(&sb, "%d. **%s** (degree %d, betweenness %.2f)\n", i+1, h.Name, h.Degree, h.Betweenness)
		}
		sb.WriteString("\n")
	}

	if len(stats.ArticulationPoints) > 0 {
		byID := model.IndexByID(m.Keywords)
		names := make([]string, 0, len(stats.ArticulationPoints))
		for _, id := range stats.ArticulationPoints {
			if k, ok := byID[id]; ok {
				names = append(names, k.Name)
			}
		}
		sb.WriteString("## Bridge keywords\n\n")
		sb.WriteString("Removing any of these splits the dependency network: ")
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString("\n\n")
	}

	if dups := analysis.DetectDuplicates(m.Keywords, analysis.DefaultDuplicateConfig()); len(dups) > 0 {
		sb.WriteString("## Possible duplicates\n\n| Keyword | Keyword | Similarity |\n|---|---|---|\n")
		for _, d := range dups {
			fmt.Fprintf(&sb, "| %s | %s | %.0f%% |\n", d.NameA, d.NameB, d.Similarity*100)
		}
	}

	return sb.String()
}

// KeywordMarkdown describes one keyword for the detail pane. deps may be nil
// when no dependency report is available.
func KeywordMarkdown(k model.Keyword, related []*model.Keyword, deps *model.DependencyReport) string {
	var sb strings.Builder
	info := palette.Info(k.Subcategory)

	fmt.Fprintf(&sb, "# %s\n\n", k.Name)
	if info.Name != "" {
		fmt.Fprintf(&sb, "**%s** · %s\n\n", displayCode(k.Subcategory), info.Name)
		if info.Description != "" {
			fmt.Fprintf(&sb, "> %s\n\n", info.Description)
		}
	}
	status := "active"
	if !k.IsActive() {
		status = "inactive"
	}
	fmt.Fprintf(&sb, "- Weight: %.2f\n- Connections: %d\n- Status: %s\n\n", k.Weight, k.Connections, status)

	if len(related) > 0 {
		sb.WriteString("## Related\n\n")
		for _, r := range related {
			fmt.Fprintf(&sb, "- %s (%s)\n", r.Name, displayCode(r.Subcategory))
		}
		sb.WriteString("\n")
	}

	if deps != nil && len(deps.Dependencies) > 0 {
		sb.WriteString("## Dependencies\n\n| Keyword | Type | Strength |\n|---|---|---|\n")
		for _, d := range deps.Dependencies {
			fmt.Fprintf(&sb, "| %s | %s | %.2f |\n", d.Name, d.Type, d.Strength)
		}
	}
	return sb.String()
}

// SaveReport writes GenerateReport output to path.
func SaveReport(path string, m model.Matrix, stats analysis.GraphStats, title string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	return os.WriteFile(path, []byte(GenerateReport(m, stats, title)), 0o644)
}

func displayCode(code string) string {
	if code == "" {
		return "-"
	}
	return code
}

// barChart renders a ten-cell bar for a share in [0, 1].
func barChart(share float64) string {
	filled := int(share*10 + 0.5)
	filled = min(max(filled, 0), 10)
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %.0f%%", share*100)
}
