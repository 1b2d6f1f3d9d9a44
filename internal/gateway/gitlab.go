// Package gateway provides access to the GitLab REST API, abstracting
// away the HTTP client and response normalization.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/merge-champ/merge-champ/internal/domain"
)

const perPage = 100

// Fetcher defines the behavior of a gateway for fetching merge request
// data from the source system.
type Fetcher interface {
	FetchProjectMergeRequests(ctx context.Context, projectID string, start, end time.Time) ([]domain.MergeRecord, error)
	FetchGroupMergeRequests(ctx context.Context, groupID string, start, end time.Time) ([]domain.MergeRecord, error)
	// FetchMergeRequestLineCount resolves the changed-line count of a
	// single merge request, trying the detail endpoint and then diff
	// parsing. It returns nil when no path yields a value.
	FetchMergeRequestLineCount(ctx context.Context, projectID string, iid int) *int
}

// GitLabGateway is the concrete implementation of the Fetcher interface.
type GitLabGateway struct {
	baseURL    string
	httpClient *http.Client
	team       map[string]struct{}
	logger     *zap.Logger
}

// NewGitLabGateway creates a gateway authenticating with a bearer
// token. Records from authors outside team are discarded during
// normalization.
func NewGitLabGateway(baseURL, token string, team []string, logger *zap.Logger) *GitLabGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: ts},
		Timeout:   30 * time.Second,
	}
	members := make(map[string]struct{}, len(team))
	for _, m := range team {
		members[m] = struct{}{}
	}
	return &GitLabGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		team:       members,
		logger:     logger,
	}
}

// mergeRequestItem mirrors the fields of a merge request list or
// detail response that the application cares about. Numeric fields use
// loose types because deployments disagree on their wire shapes
// (changes_count in particular arrives as "1000+" on large MRs).
type mergeRequestItem struct {
	IID       int    `json:"iid"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
	MergedAt  string `json:"merged_at"`
	WebURL    string `json:"web_url"`
	Author    struct {
		Username string `json:"username"`
	} `json:"author"`
	Project         map[string]any `json:"project"`
	ProjectID       any            `json:"project_id"`
	TargetProjectID any            `json:"target_project_id"`
	SourceProjectID any            `json:"source_project_id"`
	ChangesCount    any            `json:"changes_count"`
	Statistics      map[string]any `json:"statistics"`
	DiffStats       map[string]any `json:"diff_stats"`
}

// FetchProjectMergeRequests lists merged merge requests for a single
// project created within [start, end) and filters them to team members.
func (g *GitLabGateway) FetchProjectMergeRequests(ctx context.Context, projectID string, start, end time.Time) ([]domain.MergeRecord, error) {
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/merge_requests", g.baseURL, url.PathEscape(projectID))
	params := listParams(start, end)

	var items []mergeRequestItem
	if err := g.getJSON(ctx, endpoint, params, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch project merge requests: %w", err)
	}

	records := g.normalize(items, projectID)
	g.logger.Info("fetched merge requests from project",
		zap.String("project_id", projectID),
		zap.Int("count", len(records)),
	)
	return records, nil
}

// FetchGroupMergeRequests lists merged merge requests across a group
// and its subgroups, paging until a short or empty page. There is no
// hard page cap; the loop is bounded only by the upstream shrinking
// its pages.
func (g *GitLabGateway) FetchGroupMergeRequests(ctx context.Context, groupID string, start, end time.Time) ([]domain.MergeRecord, error) {
	endpoint := fmt.Sprintf("%s/api/v4/groups/%s/merge_requests", g.baseURL, url.PathEscape(groupID))
	params := listParams(start, end)
	params.Set("include_subgroups", "true")

	var all []domain.MergeRecord
	for page := 1; ; page++ {
		params.Set("page", strconv.Itoa(page))

		var items []mergeRequestItem
		if err := g.getJSON(ctx, endpoint, params, &items); err != nil {
			return nil, fmt.Errorf("failed to fetch group merge requests page %d: %w", page, err)
		}
		if len(items) == 0 {
			break
		}
		all = append(all, g.normalize(items, "")...)
		if len(items) < perPage {
			break
		}
		g.logger.Debug("fetching next page of group merge requests", zap.Int("next_page", page+1))
	}

	g.logger.Info("fetched merge requests from group",
		zap.String("group_id", groupID),
		zap.Int("count", len(all)),
	)
	return all, nil
}

// normalize converts raw list items into MergeRecords, dropping
// records from authors outside the configured team. fallbackProjectID
// is used when the item itself carries no project identifier.
func (g *GitLabGateway) normalize(items []mergeRequestItem, fallbackProjectID string) []domain.MergeRecord {
	var records []domain.MergeRecord
	for _, item := range items {
		if _, ok := g.team[item.Author.Username]; !ok {
			continue
		}
		statistics := item.Statistics
		if statistics == nil {
			statistics = item.DiffStats
		}
		records = append(records, domain.MergeRecord{
			Author:       item.Author.Username,
			Title:        item.Title,
			CreatedAt:    item.CreatedAt,
			MergedAt:     item.MergedAt,
			WebURL:       item.WebURL,
			ProjectID:    item.projectID(fallbackProjectID),
			IID:          item.IID,
			ChangesCount: coerceString(item.ChangesCount),
			Statistics:   statistics,
		})
	}
	return records
}

func (item mergeRequestItem) projectID(fallback string) string {
	if item.Project != nil {
		if id := coerceString(item.Project["id"]); id != "" {
			return id
		}
	}
	for _, candidate := range []any{item.ProjectID, item.TargetProjectID, item.SourceProjectID} {
		if id := coerceString(candidate); id != "" {
			return id
		}
	}
	return fallback
}

// FetchMergeRequestLineCount inspects the merge request detail
// endpoint for a usable changed-line figure, falling back to parsing
// the literal diffs from the changes endpoint when the detail response
// carries no statistics at all. Every failure degrades to nil.
func (g *GitLabGateway) FetchMergeRequestLineCount(ctx context.Context, projectID string, iid int) *int {
	if projectID == "" || iid == 0 {
		return nil
	}
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d", g.baseURL, url.PathEscape(projectID), iid)
	params := url.Values{}
	params.Set("include_diverged_commits_count", "false")
	params.Set("include_rebase_in_progress", "false")
	params.Set("include_stats", "true")

	var details map[string]any
	if err := g.getJSON(ctx, endpoint, params, &details); err != nil {
		g.logger.Debug("unable to retrieve merge request detail",
			zap.String("project_id", projectID),
			zap.Int("iid", iid),
			zap.Error(err),
		)
		return nil
	}

	candidates := []any{details["changes_count"], details["total_changes"], details["changes"]}
	statsProvided := false

	statistics := firstMap(details, "statistics", "stats", "diff_stats")
	if statistics != nil {
		for _, key := range []string{"total", "total_changes", "changes"} {
			candidates = append(candidates, statistics[key])
		}
		additions := tryParseInt(statistics["additions"])
		deletions := tryParseInt(statistics["deletions"])
		if additions != nil || deletions != nil {
			statsProvided = true
			if total := intOrZero(additions) + intOrZero(deletions); total > 0 {
				return &total
			}
		}
		if !statsProvided {
			for _, key := range []string{"total", "total_changes", "changes"} {
				if v := tryParseInt(statistics[key]); v != nil && *v != 0 {
					statsProvided = true
					break
				}
			}
		}
	}

	additions := tryParseInt(details["additions"])
	deletions := tryParseInt(details["deletions"])
	if additions != nil || deletions != nil {
		statsProvided = true
		if total := intOrZero(additions) + intOrZero(deletions); total > 0 {
			return &total
		}
	}

	var parsed []int
	for _, candidate := range candidates {
		if v := tryParseInt(candidate); v != nil {
			parsed = append(parsed, *v)
		}
	}

	var fromDiff *int
	if !statsProvided {
		fromDiff = g.fetchLinesFromChanges(ctx, projectID, iid)
		if fromDiff != nil {
			return fromDiff
		}
	}

	if len(parsed) > 0 {
		best := parsed[0]
		for _, v := range parsed[1:] {
			if v > best {
				best = v
			}
		}
		if fromDiff != nil && *fromDiff > best {
			return fromDiff
		}
		return &best
	}
	return fromDiff
}

// fetchLinesFromChanges derives a line count by counting added and
// removed lines across the per-file diffs of the changes endpoint.
func (g *GitLabGateway) fetchLinesFromChanges(ctx context.Context, projectID string, iid int) *int {
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/merge_requests/%d/changes", g.baseURL, url.PathEscape(projectID), iid)

	var payload any
	if err := g.getJSON(ctx, endpoint, nil, &payload); err != nil {
		g.logger.Debug("unable to retrieve merge request diffs",
			zap.String("project_id", projectID),
			zap.Int("iid", iid),
			zap.Error(err),
		)
		return nil
	}

	var changes []any
	switch v := payload.(type) {
	case map[string]any:
		changes, _ = v["changes"].([]any)
	case []any:
		changes = v
	}

	additions, deletions := 0, 0
	for _, raw := range changes {
		change, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		diff, _ := change["diff"].(string)
		add, del := parseDiff(diff)
		additions += add
		deletions += del
	}

	if total := additions + deletions; total > 0 {
		g.logger.Debug("parsed line counts from diffs",
			zap.String("project_id", projectID),
			zap.Int("iid", iid),
			zap.Int("additions", additions),
			zap.Int("deletions", deletions),
		)
		return &total
	}
	return nil
}

// parseDiff counts added and removed lines in a unified diff,
// excluding file headers and hunk markers.
func parseDiff(diff string) (additions, deletions int) {
	for _, line := range strings.Split(diff, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") || strings.HasPrefix(line, "@@") {
			continue
		}
		if strings.HasPrefix(line, "+") {
			additions++
		} else if strings.HasPrefix(line, "-") {
			deletions++
		}
	}
	return additions, deletions
}

func (g *GitLabGateway) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	target := endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func listParams(start, end time.Time) url.Values {
	params := url.Values{}
	params.Set("state", "merged")
	params.Set("created_after", start.Format(time.RFC3339))
	params.Set("created_before", end.Format(time.RFC3339))
	params.Set("per_page", strconv.Itoa(perPage))
	return params
}

// tryParseInt coerces the loose numeric shapes seen on the wire
// (float64 from JSON numbers, "123" and "1000+" strings) to an int.
func tryParseInt(v any) *int {
	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		n := int(value)
		return &n
	case int:
		n := value
		return &n
	case json.Number:
		if n, err := strconv.Atoi(value.String()); err == nil {
			return &n
		}
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(value), "+")
		if n, err := strconv.Atoi(trimmed); err == nil {
			return &n
		}
	}
	return nil
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func coerceString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatInt(int64(value), 10)
	case json.Number:
		return value.String()
	}
	return ""
}

func firstMap(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if sub, ok := m[key].(map[string]any); ok {
			return sub
		}
	}
	return nil
}
