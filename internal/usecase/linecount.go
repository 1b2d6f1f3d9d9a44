package usecase

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/merge-champ/merge-champ/internal/domain"
	"github.com/merge-champ/merge-champ/internal/gateway"
)

// lineCountStage attempts one way of determining how many lines a
// merge request changed, returning nil when it cannot tell.
type lineCountStage func(ctx context.Context, record domain.MergeRecord) *int

// lineCountResolver runs an ordered list of stages, cheapest first,
// short-circuiting on the first stage that yields a value. Stage order:
// fields already on the summary record, then the detail fetch (which
// itself falls back to diff parsing when the detail response carries
// no statistics).
type lineCountResolver struct {
	stages []lineCountStage
	logger *zap.Logger
}

func newLineCountResolver(fallbackProjectID string, fetcher gateway.Fetcher, logger *zap.Logger) *lineCountResolver {
	r := &lineCountResolver{logger: logger}
	r.stages = []lineCountStage{
		r.fromSummary,
		r.detailStage(fallbackProjectID, fetcher),
	}
	return r
}

// Resolve returns the changed-line count for a record, or nil when
// every stage comes up empty (the record is then counted unweighted).
func (r *lineCountResolver) Resolve(ctx context.Context, record domain.MergeRecord) *int {
	for _, stage := range r.stages {
		if lines := stage(ctx, record); lines != nil {
			return lines
		}
	}
	return nil
}

// fromSummary inspects fields the list endpoint already delivered: an
// explicit lines-changed figure, the changes counter, or totals from
// an embedded statistics block.
func (r *lineCountResolver) fromSummary(_ context.Context, record domain.MergeRecord) *int {
	if record.LinesChanged != nil {
		return record.LinesChanged
	}
	if lines := parseCount(record.ChangesCount); lines != nil {
		r.logger.Debug("line estimate from summary changes count",
			zap.Int("iid", record.IID),
			zap.String("author", record.Author),
			zap.Int("lines", *lines),
		)
		return lines
	}
	if record.Statistics == nil {
		return nil
	}
	for _, key := range []string{"total_changes", "total", "changes"} {
		if lines := parseAny(record.Statistics[key]); lines != nil {
			return lines
		}
	}
	additions := parseAny(record.Statistics["additions"])
	deletions := parseAny(record.Statistics["deletions"])
	if additions != nil || deletions != nil {
		total := 0
		if additions != nil {
			total += *additions
		}
		if deletions != nil {
			total += *deletions
		}
		if total > 0 {
			return &total
		}
	}
	return nil
}

// detailStage builds the stage that asks the gateway for the detail
// endpoint (and, transitively, the diff-parsing fallback). The
// configured project is used when the record carries no project of its
// own, as happens for single-project list responses.
func (r *lineCountResolver) detailStage(fallbackProjectID string, fetcher gateway.Fetcher) lineCountStage {
	return func(ctx context.Context, record domain.MergeRecord) *int {
		projectID := record.ProjectID
		if projectID == "" {
			projectID = fallbackProjectID
		}
		if projectID == "" || record.IID == 0 {
			r.logger.Info("no project identifier or IID for detail lookup; skipping line count fetch",
				zap.Int("iid", record.IID),
				zap.String("author", record.Author),
				zap.String("link", record.Link()),
			)
			return nil
		}
		lines := fetcher.FetchMergeRequestLineCount(ctx, projectID, record.IID)
		r.logger.Info("fetched detail line count",
			zap.Int("iid", record.IID),
			zap.String("author", record.Author),
			zap.Any("lines_changed", lines),
			zap.String("link", record.Link()),
		)
		return lines
	}
}

func parseCount(raw string) *int {
	return parseAny(raw)
}

func parseAny(v any) *int {
	switch value := v.(type) {
	case nil:
		return nil
	case int:
		n := value
		return &n
	case float64:
		n := int(value)
		return &n
	case string:
		// changes_count arrives as "12", or "1000+" on capped diffs.
		trimmed := strings.TrimSuffix(strings.TrimSpace(value), "+")
		if n, err := strconv.Atoi(trimmed); err == nil {
			return &n
		}
	}
	return nil
}
