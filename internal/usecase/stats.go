package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/merge-champ/merge-champ/internal/domain"
)

// CalculateTeamStats derives the read-only summary of one counting
// mode. An empty mapping yields the all-zero "No data" sentinel. Ties
// for top contributor break to the lexicographically smallest
// username, an explicit rule rather than map iteration order.
func CalculateTeamStats(counts map[string]float64) domain.TeamStats {
	if len(counts) == 0 {
		return domain.TeamStats{TopContributor: domain.NoData}
	}

	usernames := make([]string, 0, len(counts))
	values := make([]float64, 0, len(counts))
	for username := range counts {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)
	for _, username := range usernames {
		values = append(values, counts[username])
	}

	total, _ := stats.Sum(values)
	total, _ = stats.Round(total, 2)
	average, _ := stats.Mean(values)
	average, _ = stats.Round(average, 1)

	topUser := usernames[0]
	topCount := counts[topUser]
	activeMembers := 0
	for _, username := range usernames {
		count := counts[username]
		if count > topCount {
			topUser = username
			topCount = count
		}
		if count > 0 {
			activeMembers++
		}
	}

	participation, _ := stats.Round(float64(activeMembers)/float64(len(counts))*100, 1)

	return domain.TeamStats{
		TotalMRs:            total,
		TopContributor:      topUser,
		TopContributorCount: topCount,
		AveragePerMember:    average,
		ParticipationRate:   participation,
		ActiveMembers:       activeMembers,
	}
}
