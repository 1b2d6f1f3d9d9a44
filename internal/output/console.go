package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/merge-champ/merge-champ/internal/domain"
)

const (
	columnWidth    = 39
	combinedWidth  = columnWidth*2 + 1
	monthOnlyWidth = 79
)

// ConsoleStrategy renders the summary as a fixed-width text block and
// writes it to a writer, stdout by default.
type ConsoleStrategy struct {
	writer io.Writer
	logger *zap.Logger
}

// NewConsoleStrategy creates a console strategy. A nil writer means
// os.Stdout.
func NewConsoleStrategy(writer io.Writer, logger *zap.Logger) *ConsoleStrategy {
	if writer == nil {
		writer = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleStrategy{writer: writer, logger: logger}
}

// Render produces the text block for the context: a single-column
// layout for month-only views, two columns for combined week+month.
func (s *ConsoleStrategy) Render(rc ReportContext) string {
	var lines []string
	if rc.MonthOnly {
		lines = s.formatMonthOnly(rc)
	} else {
		lines = s.formatColumns(rc)
	}
	lines = append(lines, "\n💬 "+rc.Message)
	lines = append(lines,
		"\n* These numbers make no judgement on quality. The goal is to",
		"  encourage working in small batches and frequent contributions.",
		"  Only MRs from gitlab.com are included and are counted on create.",
	)
	return strings.Join(lines, "\n")
}

// Deliver writes the rendered block line by line.
func (s *ConsoleStrategy) Deliver(payload string) bool {
	for _, line := range strings.Split(payload, "\n") {
		fmt.Fprintln(s.writer, line)
	}
	return true
}

func (s *ConsoleStrategy) formatMonthOnly(rc ReportContext) []string {
	divider := strings.Repeat("─", monthOnlyWidth)
	entries := BuildRankedEntries(rc.MonthlyBreakdown)

	lines := []string{
		"\n" + strings.Repeat("=", monthOnlyWidth),
		center("🎉 MERGE CHAMP RESULTS 🎉", monthOnlyWidth),
		strings.Repeat("=", monthOnlyWidth),
	}
	if rc.SampleMode {
		lines = append(lines, center("📊 Using sample data for demonstration...", monthOnlyWidth))
	}
	lines = append(lines,
		center(rc.MonthHeader, monthOnlyWidth),
		divider,
		center("📊 Total MRs: "+FormatCount(rc.MonthlyStats.TotalMRs), monthOnlyWidth),
		center(fmt.Sprintf("👥 Participation: %v%%", rc.MonthlyStats.ParticipationRate), monthOnlyWidth),
	)
	if rc.MonthlyStats.TopContributor != domain.NoData {
		top := FriendlyUsername(rc.MonthlyStats.TopContributor)
		lines = append(lines, center("🏆 "+truncate(top, 45), monthOnlyWidth))
	}
	lines = append(lines, divider, center("👥 TEAM BREAKDOWN", monthOnlyWidth), divider)
	if len(entries) > 0 {
		for _, entry := range entries {
			lines = append(lines, center(fmt.Sprintf("%s %s: %s", entry.Emoji, entry.FriendlyName(), FormatCount(entry.Count)), monthOnlyWidth))
		}
	} else {
		lines = append(lines, center("No merge requests recorded.", monthOnlyWidth))
	}
	lines = append(lines, divider)
	return lines
}

func (s *ConsoleStrategy) formatColumns(rc ReportContext) []string {
	weeklyEntries := BuildRankedEntries(rc.WeeklyBreakdown)
	monthlyEntries := BuildRankedEntries(rc.MonthlyBreakdown)

	lines := []string{
		"\n" + strings.Repeat("=", combinedWidth),
		center("🎉 MERGE CHAMP RESULTS 🎉", combinedWidth),
		strings.Repeat("=", combinedWidth),
	}
	if rc.SampleMode {
		lines = append(lines, "📊 Using sample data for demonstration...")
	}
	lines = append(lines,
		centeredColumns(rc.WeekHeader, rc.MonthHeader),
		columnDivider("┼"),
		centeredColumns(
			"📊 Total MRs: "+FormatCount(rc.WeeklyStats.TotalMRs),
			"📊 Total MRs: "+FormatCount(rc.MonthlyStats.TotalMRs),
		),
		centeredColumns(
			fmt.Sprintf("👥 Participation: %v%%", rc.WeeklyStats.ParticipationRate),
			fmt.Sprintf("👥 Participation: %v%%", rc.MonthlyStats.ParticipationRate),
		),
		centeredColumns(
			"🏆 "+truncate(friendlyOrNoData(rc.WeeklyStats.TopContributor), 30),
			"🏆 "+truncate(friendlyOrNoData(rc.MonthlyStats.TopContributor), 30),
		),
		columnDivider("┼"),
		centeredColumns("👥 TEAM BREAKDOWN", "👥 TEAM BREAKDOWN"),
		columnDivider("┼"),
	)

	maxLines := len(weeklyEntries)
	if len(monthlyEntries) > maxLines {
		maxLines = len(monthlyEntries)
	}
	for i := 0; i < maxLines; i++ {
		var weekly, monthly string
		if i < len(weeklyEntries) {
			weekly = breakdownLine(weeklyEntries[i])
		}
		if i < len(monthlyEntries) {
			monthly = breakdownLine(monthlyEntries[i])
		}
		lines = append(lines, paddedColumns(weekly, monthly))
	}
	lines = append(lines, columnDivider("┴"))
	return lines
}

func breakdownLine(entry RankedEntry) string {
	return fmt.Sprintf("%s %s: %s", entry.Emoji, truncate(entry.FriendlyName(), 28), FormatCount(entry.Count))
}

func friendlyOrNoData(username string) string {
	if username == domain.NoData {
		return domain.NoData
	}
	return FriendlyUsername(username)
}

func paddedColumns(left, right string) string {
	leftPadded := pad(truncate(left, columnWidth), columnWidth)
	rightPadded := pad(truncate(" "+right, columnWidth), columnWidth)
	return leftPadded + "│" + rightPadded
}

func centeredColumns(left, right string) string {
	return center(truncate(left, columnWidth), columnWidth) + "│" + center(truncate(right, columnWidth), columnWidth)
}

func columnDivider(middle string) string {
	return strings.Repeat("─", columnWidth+1) + middle + strings.Repeat("─", columnWidth)
}

func center(s string, width int) string {
	length := len([]rune(s))
	if length >= width {
		return s
	}
	left := (width - length) / 2
	right := width - length - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func pad(s string, width int) string {
	length := len([]rune(s))
	if length >= width {
		return s
	}
	return s + strings.Repeat(" ", width-length)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
