// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/merge-champ/merge-champ/internal/config"
	"github.com/merge-champ/merge-champ/internal/domain"
	"github.com/merge-champ/merge-champ/internal/gateway"
	"github.com/merge-champ/merge-champ/internal/output"
	"github.com/merge-champ/merge-champ/internal/timewindow"
	"github.com/merge-champ/merge-champ/internal/usecase"
	"github.com/merge-champ/merge-champ/internal/weight"
)

var reportCmd = &cobra.Command{
	Use:          "report",
	Short:        "Aggregates team merge request activity and renders a summary",
	Long:         `Collects merged merge requests for the configured team over the selected week and month windows, counts them raw or size-weighted, and prints a leaderboard. Optionally publishes the summary to a Microsoft Teams webhook.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := newLogger(verbose)
		defer func() { _ = logger.Sync() }()

		sample, _ := cmd.Flags().GetBool("sample")
		mode, _ := cmd.Flags().GetString("mode")
		dateStr, _ := cmd.Flags().GetString("date")
		monthStr, _ := cmd.Flags().GetString("month")
		weekOffset, _ := cmd.Flags().GetInt("week-offset")
		monthOffset, _ := cmd.Flags().GetInt("month-offset")
		publish, _ := cmd.Flags().GetBool("publish")
		debugWebhook, _ := cmd.Flags().GetBool("debug-webhook")

		var weighted bool
		switch mode {
		case "raw":
		case "weighted":
			weighted = true
		default:
			return fmt.Errorf("invalid --mode %q: must be \"raw\" or \"weighted\"", mode)
		}

		// Negative offsets are a caller mistake, not a fatal one.
		if weekOffset < 0 {
			logger.Warn("negative --week-offset clamped to 0", zap.Int("given", weekOffset))
			weekOffset = 0
		}
		if monthOffset < 0 {
			logger.Warn("negative --month-offset clamped to 0", zap.Int("given", monthOffset))
			monthOffset = 0
		}

		var reference time.Time
		if dateStr != "" {
			parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date %q: use YYYY-MM-DD", dateStr)
			}
			reference = parsed
		}

		monthReference := reference
		monthOnly := false
		if monthStr != "" {
			parsed, err := time.ParseInLocation("2006-01", monthStr, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --month %q: use YYYY-MM", monthStr)
			}
			monthReference = parsed
			monthOnly = true
		}

		fmt.Println("🏆 Welcome to Merge Champ! 🏆")
		fmt.Println("Generating team merge request statistics...")

		cfg := config.Load(logger)

		var weeklyAgg, monthlyAgg domain.MergeCountAggregate
		if sample {
			weeklyAgg, monthlyAgg = output.GenerateSampleData(cfg.TeamMembers, logger)
		} else {
			if !cfg.HasValidSource() {
				return errors.New("no valid API configuration found: set GITLAB_TOKEN and PROJECT_ID or GROUP_ID in the environment (or .env), or run with --sample for demo data")
			}
			gw := gateway.NewGitLabGateway(cfg.GitLabURL, cfg.GitLabToken, cfg.TeamMembers, logger)
			rules := weight.ParseRules(cfg.WeightRulesRaw, logger)
			collector := usecase.NewCollector(cfg, gw, rules, logger)

			if !monthOnly {
				weeklyAgg = collector.WeeklyData(ctx, weekOffset, reference, weighted)
			}
			monthlyAgg = collector.MonthlyData(ctx, monthOffset, monthReference, weighted)
		}

		weekStart, weekEnd := timewindow.WeekWindow(weekOffset, reference)
		monthStart, _ := timewindow.MonthWindow(monthOffset, monthReference)

		weeklyCounts := weeklyAgg.Counts(weighted)
		monthlyCounts := monthlyAgg.Counts(weighted)
		monthlyStats := usecase.CalculateTeamStats(monthlyCounts)

		rc := output.ReportContext{
			WeekHeader:       timewindow.WeekLabel(weekStart, weekEnd),
			MonthHeader:      timewindow.MonthLabel(monthStart),
			WeeklyStats:      usecase.CalculateTeamStats(weeklyCounts),
			MonthlyStats:     monthlyStats,
			WeeklyBreakdown:  output.SortedBreakdown(weeklyCounts),
			MonthlyBreakdown: output.SortedBreakdown(monthlyCounts),
			Message:          output.MotivationalMessage(monthlyStats.TotalMRs),
			MonthOnly:        monthOnly,
			SampleMode:       sample,
		}

		console := output.NewConsoleStrategy(nil, logger)
		output.Send(console, rc)

		switch {
		case publish || debugWebhook:
			teams := output.NewTeamsStrategy(cfg.TeamsWebhookURL, debugWebhook, logger)
			if !output.Send(teams, rc) {
				return errors.New("failed to deliver the summary to the Teams webhook")
			}
		case cfg.NotificationsEnabled && cfg.TeamsWebhookURL != "":
			teams := output.NewTeamsStrategy(cfg.TeamsWebhookURL, false, logger)
			if !output.Send(teams, rc) {
				logger.Warn("optional teams notification failed; continuing")
			}
		}

		return nil
	},
}

// newLogger builds the CLI logger: quiet by default so the report
// stays readable, debug level under --verbose.
func newLogger(verbose bool) *zap.Logger {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.OutputPaths = []string{"stderr"}
	if verbose {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := loggerConfig.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Bool("sample", false, "Use generated sample data instead of the live API")
	reportCmd.Flags().String("date", "", "Reference date for the week window (YYYY-MM-DD, default today)")
	reportCmd.Flags().String("month", "", "Explicit month to report on (YYYY-MM); renders a month-only view")
	reportCmd.Flags().Int("week-offset", 0, "How many whole weeks to look back")
	reportCmd.Flags().Int("month-offset", 0, "How many whole months to look back")
	reportCmd.Flags().String("mode", "weighted", "Counting mode: raw or weighted")
	reportCmd.Flags().Bool("publish", false, "Publish the summary to the configured Teams webhook (fails the run on delivery errors)")
	reportCmd.Flags().Bool("debug-webhook", false, "Print the Teams request body instead of posting it")
}
