// Package domain contains the core data structures and domain logic for the application.
package domain

import "math"

// MergeRecord is a normalized merged merge request as returned by the
// source API. It is created by the gateway and consumed by the
// collector; it is never persisted.
type MergeRecord struct {
	Author       string `json:"author"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	MergedAt     string `json:"merged_at"`
	WebURL       string `json:"web_url"`
	ProjectID    string `json:"project_id"`
	IID          int    `json:"iid"`
	// LinesChanged is set when the source already knows the diff size.
	// Most list endpoints omit it; the resolver chain fills the gap.
	LinesChanged *int   `json:"lines_changed,omitempty"`
	ChangesCount string `json:"changes_count"`
	// Statistics carries an embedded statistics/diff_stats block when
	// the list endpoint provides one. Keys vary between deployments.
	Statistics map[string]any `json:"statistics,omitempty"`
}

// Link returns a human-facing reference to the merge request.
func (r MergeRecord) Link() string {
	if r.WebURL != "" {
		return r.WebURL
	}
	return "N/A"
}

// MergeCountAggregate holds per-member merge request counts for one
// time window: Raw is incremented by 1 per qualifying record, Weighted
// by the applicable weight rule. Both maps contain exactly the
// configured team members once EnsureMembers has run.
type MergeCountAggregate struct {
	Raw      map[string]int     `json:"raw"`
	Weighted map[string]float64 `json:"weighted"`
}

// NewMergeCountAggregate returns an aggregate zero-filled for members.
func NewMergeCountAggregate(members []string) MergeCountAggregate {
	agg := MergeCountAggregate{
		Raw:      make(map[string]int, len(members)),
		Weighted: make(map[string]float64, len(members)),
	}
	agg.EnsureMembers(members)
	return agg
}

// EnsureMembers zero-fills any member missing from either mapping.
func (a MergeCountAggregate) EnsureMembers(members []string) {
	for _, m := range members {
		if _, ok := a.Raw[m]; !ok {
			a.Raw[m] = 0
		}
		if _, ok := a.Weighted[m]; !ok {
			a.Weighted[m] = 0
		}
	}
}

// RoundWeighted rounds every weighted count to 2 decimal places.
func (a MergeCountAggregate) RoundWeighted() {
	for member, count := range a.Weighted {
		a.Weighted[member] = math.Round(count*100) / 100
	}
}

// Counts returns the mapping for the requested counting mode as
// float64 values, ready for stats derivation and rendering.
func (a MergeCountAggregate) Counts(weighted bool) map[string]float64 {
	if weighted {
		counts := make(map[string]float64, len(a.Weighted))
		for member, count := range a.Weighted {
			counts[member] = count
		}
		return counts
	}
	counts := make(map[string]float64, len(a.Raw))
	for member, count := range a.Raw {
		counts[member] = float64(count)
	}
	return counts
}

// NoData is the top contributor sentinel for an empty aggregate.
const NoData = "No data"

// TeamStats is a read-only summary of one counting mode of an
// aggregate. Computed fresh for each render, never cached.
type TeamStats struct {
	TotalMRs            float64 `json:"total_mrs"`
	TopContributor      string  `json:"top_contributor"`
	TopContributorCount float64 `json:"top_contributor_count"`
	AveragePerMember    float64 `json:"average_per_member"`
	ParticipationRate   float64 `json:"participation_rate"`
	ActiveMembers       int     `json:"active_members"`
}
