// Package output renders aggregated merge request results and
// delivers them to their destination channels.
package output

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/merge-champ/merge-champ/internal/domain"
)

// ReportContext carries everything a strategy needs to render one
// report. Construction is pure; strategies must not mutate it.
type ReportContext struct {
	WeekHeader       string
	MonthHeader      string
	WeeklyStats      domain.TeamStats
	MonthlyStats     domain.TeamStats
	WeeklyBreakdown  []BreakdownEntry
	MonthlyBreakdown []BreakdownEntry
	Message          string
	MonthOnly        bool
	SampleMode       bool
}

// BreakdownEntry is one member of a breakdown sorted descending by count.
type BreakdownEntry struct {
	Username string
	Count    float64
}

// RankedEntry is the display-only projection of a breakdown position.
type RankedEntry struct {
	Username string
	Count    float64
	Emoji    string
}

// FriendlyName returns the display form of the entry's username.
func (e RankedEntry) FriendlyName() string {
	return FriendlyUsername(e.Username)
}

// Strategy is the render/deliver contract shared by all output
// channels. Render is side-effect free; Deliver performs the channel's
// side effect and reports whether it succeeded.
type Strategy interface {
	Render(rc ReportContext) string
	Deliver(payload string) bool
}

// Send renders the context with the strategy and delivers the result.
func Send(s Strategy, rc ReportContext) bool {
	return s.Deliver(s.Render(rc))
}

// SortedBreakdown orders counts descending, breaking ties by username
// so output is stable across runs.
func SortedBreakdown(counts map[string]float64) []BreakdownEntry {
	entries := make([]BreakdownEntry, 0, len(counts))
	for username, count := range counts {
		entries = append(entries, BreakdownEntry{Username: username, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Username < entries[j].Username
	})
	return entries
}

// BuildRankedEntries attaches rank emoji to a sorted breakdown. The
// first twelve ranks get distinct markers, everything after reuses the
// default.
func BuildRankedEntries(breakdown []BreakdownEntry) []RankedEntry {
	entries := make([]RankedEntry, 0, len(breakdown))
	for idx, item := range breakdown {
		emoji := defaultEmoji
		if idx < len(rankingEmojis) {
			emoji = rankingEmojis[idx]
		}
		entries = append(entries, RankedEntry{Username: item.Username, Count: item.Count, Emoji: emoji})
	}
	return entries
}

var titleCaser = cases.Title(language.English)

// FriendlyUsername converts an account name like "jane.smith" to a
// display form like "Jane Smith".
func FriendlyUsername(username string) string {
	replaced := strings.NewReplacer(".", " ", "_", " ").Replace(username)
	return titleCaser.String(replaced)
}

// FormatCount renders a count without trailing noise: integral values
// print as integers, weighted values keep their decimals.
func FormatCount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
