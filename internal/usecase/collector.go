// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/merge-champ/merge-champ/internal/config"
	"github.com/merge-champ/merge-champ/internal/domain"
	"github.com/merge-champ/merge-champ/internal/gateway"
	"github.com/merge-champ/merge-champ/internal/timewindow"
	"github.com/merge-champ/merge-champ/internal/weight"
)

// Collector is the use case for collecting and aggregating merge
// request activity. It orchestrates window resolution, fetching and
// the per-member counting pass.
type Collector struct {
	cfg      *config.Config
	fetcher  gateway.Fetcher
	rules    weight.Rules
	resolver *lineCountResolver
	logger   *zap.Logger
}

// NewCollector creates a new Collector instance.
func NewCollector(cfg *config.Config, fetcher gateway.Fetcher, rules weight.Rules, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		cfg:      cfg,
		fetcher:  fetcher,
		rules:    rules,
		resolver: newLineCountResolver(cfg.ProjectID, fetcher, logger),
		logger:   logger,
	}
}

// WeeklyData collects merge request data for the requested week window.
func (c *Collector) WeeklyData(ctx context.Context, offsetWeeks int, reference time.Time, enableWeighting bool) domain.MergeCountAggregate {
	start, end := timewindow.WeekWindow(offsetWeeks, reference)
	return c.collect(ctx, start, end, enableWeighting)
}

// MonthlyData collects merge request data for the requested month window.
func (c *Collector) MonthlyData(ctx context.Context, offsetMonths int, reference time.Time, enableWeighting bool) domain.MergeCountAggregate {
	start, end := timewindow.MonthWindow(offsetMonths, reference)
	return c.collect(ctx, start, end, enableWeighting)
}

// collect fetches one window of records and aggregates them. A group
// source takes priority over a single project when both are set. Fetch
// failures are logged and degrade to an empty window; callers cannot
// distinguish "no data" from "collection failed" here.
func (c *Collector) collect(ctx context.Context, start, end time.Time, enableWeighting bool) domain.MergeCountAggregate {
	var (
		records []domain.MergeRecord
		err     error
	)
	switch {
	case c.cfg.GroupID != "":
		records, err = c.fetcher.FetchGroupMergeRequests(ctx, c.cfg.GroupID, start, end)
		if err != nil {
			c.logger.Error("group fetch failed; treating window as empty",
				zap.String("group_id", c.cfg.GroupID),
				zap.Error(err),
			)
			records = nil
		}
	case c.cfg.ProjectID != "":
		records, err = c.fetcher.FetchProjectMergeRequests(ctx, c.cfg.ProjectID, start, end)
		if err != nil {
			c.logger.Error("project fetch failed; treating window as empty",
				zap.String("project_id", c.cfg.ProjectID),
				zap.Error(err),
			)
			records = nil
		}
	}
	return c.Aggregate(ctx, records, enableWeighting)
}

// Aggregate folds records into per-member raw and weighted totals.
// Records from authors outside the configured team are ignored
// entirely. The pass is deterministic for identical inputs; weighting
// is a pure sum, independent of encounter order.
func (c *Collector) Aggregate(ctx context.Context, records []domain.MergeRecord, enableWeighting bool) domain.MergeCountAggregate {
	agg := domain.NewMergeCountAggregate(c.cfg.TeamMembers)
	applyWeighting := enableWeighting && len(c.rules) > 0

	for _, record := range records {
		if _, ok := agg.Raw[record.Author]; !ok {
			continue
		}
		agg.Raw[record.Author]++

		var lines *int
		if applyWeighting {
			lines = c.resolver.Resolve(ctx, record)
		}
		w := c.rules.WeightFor(lines)
		agg.Weighted[record.Author] += w

		if applyWeighting {
			c.logger.Info("merge request counted",
				zap.Int("iid", record.IID),
				zap.String("author", record.Author),
				zap.Int("raw_total", agg.Raw[record.Author]),
				zap.Any("lines_changed", lines),
				zap.Float64("weight", w),
				zap.Float64("weighted_total", agg.Weighted[record.Author]),
				zap.String("link", record.Link()),
			)
		} else {
			c.logger.Info("merge request counted (weighting disabled)",
				zap.Int("iid", record.IID),
				zap.String("author", record.Author),
				zap.Int("raw_total", agg.Raw[record.Author]),
				zap.String("link", record.Link()),
			)
		}
	}

	agg.EnsureMembers(c.cfg.TeamMembers)
	agg.RoundWeighted()

	c.logger.Info("final merge request counts",
		zap.Any("raw", agg.Raw),
		zap.Any("weighted", agg.Weighted),
	)
	return agg
}
