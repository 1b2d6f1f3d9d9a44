package output

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/merge-champ/merge-champ/internal/domain"
)

// GenerateSampleData fabricates a plausible week and month of activity
// for demonstration runs: up to 8 merge requests per member per week,
// with monthly totals at three to five times the weekly figure.
func GenerateSampleData(members []string, logger *zap.Logger) (weekly, monthly domain.MergeCountAggregate) {
	if logger == nil {
		logger = zap.NewNop()
	}
	weekly = domain.NewMergeCountAggregate(members)
	monthly = domain.NewMergeCountAggregate(members)
	for _, member := range members {
		weekCount := rand.Intn(9)
		monthCount := weekCount * (3 + rand.Intn(3))
		weekly.Raw[member] = weekCount
		weekly.Weighted[member] = float64(weekCount)
		monthly.Raw[member] = monthCount
		monthly.Weighted[member] = float64(monthCount)
	}
	logger.Info("generated sample data for demonstration", zap.Strings("team", members))
	return weekly, monthly
}
