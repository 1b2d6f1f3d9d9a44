package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/merge-champ/merge-champ/internal/domain"
)

func TestLineCountResolver_SummaryStage(t *testing.T) {
	testCases := []struct {
		name     string
		record   domain.MergeRecord
		expected *int
	}{
		{
			name:     "explicit lines changed short-circuits everything",
			record:   domain.MergeRecord{LinesChanged: intPtr(42)},
			expected: intPtr(42),
		},
		{
			name:     "changes count string",
			record:   domain.MergeRecord{ChangesCount: "12"},
			expected: intPtr(12),
		},
		{
			name:     "capped changes count",
			record:   domain.MergeRecord{ChangesCount: "1000+"},
			expected: intPtr(1000),
		},
		{
			name:     "statistics total",
			record:   domain.MergeRecord{Statistics: map[string]any{"total_changes": float64(33)}},
			expected: intPtr(33),
		},
		{
			name:     "statistics additions and deletions",
			record:   domain.MergeRecord{Statistics: map[string]any{"additions": float64(8), "deletions": float64(2)}},
			expected: intPtr(10),
		},
		{
			name:     "unparseable changes count is not a value",
			record:   domain.MergeRecord{ChangesCount: "many"},
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := newLineCountResolver("", nil, zap.NewNop())

			got := resolver.fromSummary(context.Background(), tc.record)

			if tc.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tc.expected, *got)
			}
		})
	}
}

func TestLineCountResolver_FallsThroughToDetail(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchMergeRequestLineCount", mock.Anything, "42", 9).Return(intPtr(120))

	resolver := newLineCountResolver("", fetcher, zap.NewNop())
	lines := resolver.Resolve(context.Background(), domain.MergeRecord{Author: "alice", ProjectID: "42", IID: 9})

	require.NotNil(t, lines)
	assert.Equal(t, 120, *lines)
	fetcher.AssertExpectations(t)
}

func TestLineCountResolver_UsesFallbackProject(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchMergeRequestLineCount", mock.Anything, "77", 3).Return(intPtr(8))

	resolver := newLineCountResolver("77", fetcher, zap.NewNop())
	lines := resolver.Resolve(context.Background(), domain.MergeRecord{Author: "alice", IID: 3})

	require.NotNil(t, lines)
	assert.Equal(t, 8, *lines)
	fetcher.AssertExpectations(t)
}

func TestLineCountResolver_AllStagesEmpty(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("FetchMergeRequestLineCount", mock.Anything, "42", 5).Return(nil)

	resolver := newLineCountResolver("", fetcher, zap.NewNop())
	lines := resolver.Resolve(context.Background(), domain.MergeRecord{Author: "alice", ProjectID: "42", IID: 5})

	assert.Nil(t, lines)
	fetcher.AssertExpectations(t)
}

func TestLineCountResolver_SkipsDetailWithoutIdentifiers(t *testing.T) {
	fetcher := new(mockFetcher)

	resolver := newLineCountResolver("", fetcher, zap.NewNop())
	lines := resolver.Resolve(context.Background(), domain.MergeRecord{Author: "alice"})

	assert.Nil(t, lines)
	fetcher.AssertNotCalled(t, "FetchMergeRequestLineCount", mock.Anything, mock.Anything, mock.Anything)
}
