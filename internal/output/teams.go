package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/merge-champ/merge-champ/internal/domain"
)

// TeamsStrategy posts celebratory summaries to a Microsoft Teams
// incoming webhook as message text plus an adaptive card attachment.
type TeamsStrategy struct {
	webhookURL string
	httpClient *http.Client
	debugMode  bool
	logger     *zap.Logger

	lastCardAttachment map[string]any
	lastRequestBody    map[string]any
}

// NewTeamsStrategy creates a Teams strategy. In debug mode Deliver
// prints the outbound request body instead of posting it and always
// reports success.
func NewTeamsStrategy(webhookURL string, debugMode bool, logger *zap.Logger) *TeamsStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamsStrategy{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		debugMode:  debugMode,
		logger:     logger,
	}
}

// LastRequestBody exposes the most recently built webhook body.
func (s *TeamsStrategy) LastRequestBody() map[string]any {
	return s.lastRequestBody
}

// Render produces the markdown summary text and, as a side product,
// the adaptive card attachment used by Deliver.
func (s *TeamsStrategy) Render(rc ReportContext) string {
	var weeklyEntries []RankedEntry
	if !rc.MonthOnly {
		weeklyEntries = BuildRankedEntries(rc.WeeklyBreakdown)
	}
	monthlyEntries := BuildRankedEntries(rc.MonthlyBreakdown)

	lines := []string{"🎉 **Merge Champ Results** 🎉", ""}
	cardBody := []map[string]any{
		{
			"type":   "TextBlock",
			"text":   "🎉 Merge Champ Results 🎉",
			"weight": "Bolder",
			"size":   "Large",
			"wrap":   true,
		},
	}

	if rc.SampleMode {
		lines = append(lines, "_Sample data mode_", "")
		cardBody = append(cardBody, map[string]any{
			"type":     "TextBlock",
			"text":     "📊 Using sample data for demonstration",
			"wrap":     true,
			"isSubtle": true,
		})
	}

	if !rc.MonthOnly {
		lines = append(lines, periodLines(rc.WeekHeader, rc.WeeklyStats, weeklyEntries)...)
		lines = append(lines, "")
		cardBody = append(cardBody, periodContainer(rc.WeekHeader, rc.WeeklyStats, weeklyEntries))
	}

	lines = append(lines, periodLines(rc.MonthHeader, rc.MonthlyStats, monthlyEntries)...)
	lines = append(lines, "", "💬 "+rc.Message)
	cardBody = append(cardBody, periodContainer(rc.MonthHeader, rc.MonthlyStats, monthlyEntries))
	cardBody = append(cardBody, map[string]any{
		"type":      "TextBlock",
		"text":      "💬 " + rc.Message,
		"wrap":      true,
		"separator": true,
	})

	s.lastCardAttachment = map[string]any{
		"contentType": "application/vnd.microsoft.card.adaptive",
		"content": map[string]any{
			"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
			"type":    "AdaptiveCard",
			"version": "1.4",
			"body":    cardBody,
			"msteams": map[string]any{"width": "Full"},
		},
	}

	var buf bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	return buf.String()
}

// Deliver posts the webhook body, or prints it in debug mode.
func (s *TeamsStrategy) Deliver(payload string) bool {
	body := map[string]any{"text": payload, "type": "message"}
	if s.lastCardAttachment != nil {
		body["attachments"] = []any{s.lastCardAttachment}
	}
	s.lastRequestBody = body

	if s.debugMode {
		pretty, err := json.MarshalIndent(body, "", "  ")
		if err == nil {
			fmt.Println("\n🔍 Teams publish debug mode: request body")
			fmt.Println(string(pretty))
		}
		s.logger.Info("teams publish debug mode active; skipping HTTP POST")
		return true
	}

	if s.webhookURL == "" {
		s.logger.Debug("skipping teams delivery because no webhook URL is configured")
		return false
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("failed to encode teams webhook body", zap.Error(err))
		return false
	}
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(encoded))
	if err != nil {
		s.logger.Error("failed to post summary to teams", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("teams webhook rejected the summary", zap.Int("status", resp.StatusCode))
		return false
	}
	s.logger.Info("delivered merge summary to microsoft teams")
	return true
}

// periodLines renders the markdown bullet section for one period.
func periodLines(header string, periodStats domain.TeamStats, entries []RankedEntry) []string {
	lines := []string{
		"**" + header + "**",
		"- Total MRs: " + FormatCount(periodStats.TotalMRs),
		fmt.Sprintf("- Participation: %v%%", periodStats.ParticipationRate),
	}
	if periodStats.TopContributor != domain.NoData {
		lines = append(lines, fmt.Sprintf("- Top Contributor: %s (%s MRs)",
			FriendlyUsername(periodStats.TopContributor),
			FormatCount(periodStats.TopContributorCount),
		))
	}
	lines = append(lines, "- Team breakdown:")
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("  %s %s: %s", entry.Emoji, entry.FriendlyName(), FormatCount(entry.Count)))
	}
	if len(entries) == 0 {
		lines = append(lines, "  - No merge requests recorded.")
	}
	return lines
}

// periodContainer builds the adaptive card container for one period.
func periodContainer(header string, periodStats domain.TeamStats, entries []RankedEntry) map[string]any {
	items := []map[string]any{
		{
			"type":   "TextBlock",
			"text":   header,
			"weight": "Bolder",
			"wrap":   true,
		},
		{
			"type": "ColumnSet",
			"columns": []map[string]any{
				{
					"type":  "Column",
					"width": "stretch",
					"items": []map[string]any{{
						"type":     "TextBlock",
						"text":     "📊 Total MRs: " + FormatCount(periodStats.TotalMRs),
						"wrap":     true,
						"maxLines": 1,
					}},
				},
				{
					"type":  "Column",
					"width": "auto",
					"items": []map[string]any{{
						"type":                "TextBlock",
						"text":                fmt.Sprintf("👥 Participation: %v%%", periodStats.ParticipationRate),
						"wrap":                false,
						"horizontalAlignment": "Right",
						"maxLines":            1,
					}},
				},
			},
		},
	}
	if periodStats.TopContributor != domain.NoData {
		items = append(items, map[string]any{
			"type": "TextBlock",
			"text": fmt.Sprintf("🏆 Top Contributor: %s (%s MRs)",
				FriendlyUsername(periodStats.TopContributor),
				FormatCount(periodStats.TopContributorCount),
			),
			"wrap": true,
		})
	}
	if len(entries) > 0 {
		for _, entry := range entries {
			items = append(items, map[string]any{
				"type":    "ColumnSet",
				"spacing": "Small",
				"columns": []map[string]any{
					{
						"type":  "Column",
						"width": "stretch",
						"items": []map[string]any{{
							"type":     "TextBlock",
							"text":     entry.Emoji + " " + entry.FriendlyName(),
							"wrap":     true,
							"maxLines": 1,
						}},
					},
					{
						"type":  "Column",
						"width": "auto",
						"items": []map[string]any{{
							"type":                "TextBlock",
							"text":                FormatCount(entry.Count),
							"wrap":                false,
							"horizontalAlignment": "Right",
						}},
					},
				},
			})
		}
	} else {
		items = append(items, map[string]any{
			"type":     "TextBlock",
			"text":     "No merge requests recorded.",
			"wrap":     true,
			"isSubtle": true,
		})
	}
	return map[string]any{
		"type":    "Container",
		"items":   items,
		"spacing": "Medium",
		"style":   "emphasis",
	}
}
