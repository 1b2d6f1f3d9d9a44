package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/merge-champ/merge-champ/internal/config"
	"github.com/merge-champ/merge-champ/internal/domain"
	"github.com/merge-champ/merge-champ/internal/weight"
)

// mockFetcher is a mock implementation of the gateway.Fetcher
// interface. It lets us exercise the collector without a live API.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchProjectMergeRequests(ctx context.Context, projectID string, start, end time.Time) ([]domain.MergeRecord, error) {
	args := m.Called(ctx, projectID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MergeRecord), args.Error(1)
}

func (m *mockFetcher) FetchGroupMergeRequests(ctx context.Context, groupID string, start, end time.Time) ([]domain.MergeRecord, error) {
	args := m.Called(ctx, groupID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MergeRecord), args.Error(1)
}

func (m *mockFetcher) FetchMergeRequestLineCount(ctx context.Context, projectID string, iid int) *int {
	args := m.Called(ctx, projectID, iid)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*int)
}

func teamConfig(members ...string) *config.Config {
	return &config.Config{TeamMembers: members, ProjectID: "42"}
}

func TestCollector_Aggregate(t *testing.T) {
	testCases := []struct {
		name             string
		team             []string
		records          []domain.MergeRecord
		rules            string
		enableWeighting  bool
		expectedRaw      map[string]int
		expectedWeighted map[string]float64
	}{
		{
			name: "weighting disabled counts each record once",
			team: []string{"alice", "bob", "carol"},
			records: []domain.MergeRecord{
				{Author: "alice", IID: 1},
				{Author: "alice", IID: 2},
				{Author: "bob", IID: 3},
				{Author: "dave", IID: 4}, // not on the team, ignored entirely
			},
			enableWeighting:  false,
			expectedRaw:      map[string]int{"alice": 2, "bob": 1, "carol": 0},
			expectedWeighted: map[string]float64{"alice": 2, "bob": 1, "carol": 0},
		},
		{
			name: "small merge request is down-weighted",
			team: []string{"alice"},
			records: []domain.MergeRecord{
				{Author: "alice", IID: 1, LinesChanged: intPtr(10)},
			},
			rules:            "20:0.3,80:0.6,200:1.0",
			enableWeighting:  true,
			expectedRaw:      map[string]int{"alice": 1},
			expectedWeighted: map[string]float64{"alice": 0.3},
		},
		{
			name: "unknown size falls back to full weight",
			team: []string{"alice"},
			records: []domain.MergeRecord{
				{Author: "alice"}, // no IID, no size anywhere
			},
			rules:            "20:0.3",
			enableWeighting:  true,
			expectedRaw:      map[string]int{"alice": 1},
			expectedWeighted: map[string]float64{"alice": 1},
		},
		{
			name:             "empty input zero-fills every member",
			team:             []string{"alice", "bob"},
			records:          nil,
			enableWeighting:  true,
			expectedRaw:      map[string]int{"alice": 0, "bob": 0},
			expectedWeighted: map[string]float64{"alice": 0, "bob": 0},
		},
		{
			name: "weighted totals are rounded to two decimals",
			team: []string{"alice"},
			records: []domain.MergeRecord{
				{Author: "alice", IID: 1, LinesChanged: intPtr(5)},
				{Author: "alice", IID: 2, LinesChanged: intPtr(5)},
				{Author: "alice", IID: 3, LinesChanged: intPtr(5)},
			},
			rules:            "20:0.333",
			enableWeighting:  true,
			expectedRaw:      map[string]int{"alice": 3},
			expectedWeighted: map[string]float64{"alice": 1.0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			rules := weight.ParseRules(tc.rules, zap.NewNop())
			collector := NewCollector(teamConfig(tc.team...), fetcher, rules, zap.NewNop())

			agg := collector.Aggregate(context.Background(), tc.records, tc.enableWeighting)

			assert.Equal(t, tc.expectedRaw, agg.Raw)
			assert.InDeltaMapValues(t, tc.expectedWeighted, agg.Weighted, 1e-9)
			fetcher.AssertExpectations(t)
		})
	}
}

func TestCollector_Aggregate_DetailLookupUsed(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchMergeRequestLineCount", mock.Anything, "42", 7).Return(intPtr(50))

	rules := weight.ParseRules("20:0.3,80:0.6,200:1.0", zap.NewNop())
	collector := NewCollector(teamConfig("alice"), fetcher, rules, zap.NewNop())

	agg := collector.Aggregate(context.Background(), []domain.MergeRecord{
		{Author: "alice", IID: 7}, // no size on the summary, resolver must ask the gateway
	}, true)

	assert.Equal(t, map[string]float64{"alice": 0.6}, agg.Weighted)
	fetcher.AssertExpectations(t)
}

func TestCollector_Aggregate_NoDetailLookupWhenWeightingDisabled(t *testing.T) {
	fetcher := new(mockFetcher)
	rules := weight.ParseRules("20:0.3", zap.NewNop())
	collector := NewCollector(teamConfig("alice"), fetcher, rules, zap.NewNop())

	agg := collector.Aggregate(context.Background(), []domain.MergeRecord{
		{Author: "alice", IID: 7},
	}, false)

	assert.Equal(t, map[string]float64{"alice": 1}, agg.Weighted)
	fetcher.AssertNotCalled(t, "FetchMergeRequestLineCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollector_WeeklyData_GroupTakesPriority(t *testing.T) {
	cfg := &config.Config{TeamMembers: []string{"alice"}, ProjectID: "42", GroupID: "dev"}
	reference := time.Date(2025, 9, 26, 12, 0, 0, 0, time.UTC)

	fetcher := new(mockFetcher)
	fetcher.On("FetchGroupMergeRequests", mock.Anything, "dev",
		time.Date(2025, 9, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 28, 23, 59, 59, 0, time.UTC),
	).Return([]domain.MergeRecord{{Author: "alice", IID: 1}}, nil)

	collector := NewCollector(cfg, fetcher, nil, zap.NewNop())
	agg := collector.WeeklyData(context.Background(), 0, reference, false)

	assert.Equal(t, map[string]int{"alice": 1}, agg.Raw)
	fetcher.AssertExpectations(t)
	fetcher.AssertNotCalled(t, "FetchProjectMergeRequests", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCollector_MonthlyData_FetchFailureDegradesToEmpty(t *testing.T) {
	cfg := &config.Config{TeamMembers: []string{"alice", "bob"}, ProjectID: "42"}
	reference := time.Date(2025, 9, 26, 0, 0, 0, 0, time.UTC)

	fetcher := new(mockFetcher)
	fetcher.On("FetchProjectMergeRequests", mock.Anything, "42", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream down"))

	collector := NewCollector(cfg, fetcher, nil, zap.NewNop())
	agg := collector.MonthlyData(context.Background(), 0, reference, false)

	// A failed fetch is indistinguishable from an empty window.
	assert.Equal(t, map[string]int{"alice": 0, "bob": 0}, agg.Raw)
	fetcher.AssertExpectations(t)
}

func TestCollector_Aggregate_Deterministic(t *testing.T) {
	records := []domain.MergeRecord{
		{Author: "alice", IID: 1, LinesChanged: intPtr(10)},
		{Author: "bob", IID: 2, LinesChanged: intPtr(100)},
		{Author: "alice", IID: 3, LinesChanged: intPtr(300)},
	}
	rules := weight.ParseRules("20:0.3,80:0.6,200:1.0", zap.NewNop())

	first := NewCollector(teamConfig("alice", "bob"), new(mockFetcher), rules, zap.NewNop()).
		Aggregate(context.Background(), records, true)
	second := NewCollector(teamConfig("alice", "bob"), new(mockFetcher), rules, zap.NewNop()).
		Aggregate(context.Background(), records, true)

	assert.Equal(t, first.Raw, second.Raw)
	assert.Equal(t, first.Weighted, second.Weighted)
	assert.Equal(t, map[string]float64{"alice": 1.3, "bob": 1.0}, first.Weighted)
}

func intPtr(v int) *int { return &v }
