package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/merge-champ/merge-champ/internal/domain"
)

func TestCalculateTeamStats(t *testing.T) {
	testCases := []struct {
		name     string
		counts   map[string]float64
		expected domain.TeamStats
	}{
		{
			name:     "empty input yields the no-data sentinel",
			counts:   map[string]float64{},
			expected: domain.TeamStats{TopContributor: domain.NoData},
		},
		{
			name:   "typical mixed team",
			counts: map[string]float64{"alice": 2, "bob": 1, "carol": 0},
			expected: domain.TeamStats{
				TotalMRs:            3,
				TopContributor:      "alice",
				TopContributorCount: 2,
				AveragePerMember:    1,
				ParticipationRate:   66.7,
				ActiveMembers:       2,
			},
		},
		{
			name:   "tie breaks to the lexicographically smallest username",
			counts: map[string]float64{"zoe": 4, "anna": 4, "mia": 1},
			expected: domain.TeamStats{
				TotalMRs:            9,
				TopContributor:      "anna",
				TopContributorCount: 4,
				AveragePerMember:    3,
				ParticipationRate:   100,
				ActiveMembers:       3,
			},
		},
		{
			name:   "weighted totals keep two decimals",
			counts: map[string]float64{"alice": 0.3, "bob": 0.9},
			expected: domain.TeamStats{
				TotalMRs:            1.2,
				TopContributor:      "bob",
				TopContributorCount: 0.9,
				AveragePerMember:    0.6,
				ParticipationRate:   100,
				ActiveMembers:       2,
			},
		},
		{
			name:   "all-zero team has no active members",
			counts: map[string]float64{"alice": 0, "bob": 0},
			expected: domain.TeamStats{
				TotalMRs:            0,
				TopContributor:      "alice",
				TopContributorCount: 0,
				AveragePerMember:    0,
				ParticipationRate:   0,
				ActiveMembers:       0,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CalculateTeamStats(tc.counts))
		})
	}
}
