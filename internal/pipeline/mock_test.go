package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// --- Fetcher Mock ---

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, rawURL string) *model.FetchResult {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.FetchResult)
}

// --- Analyzer Mock ---

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, fetched *model.FetchResult) model.AnalysisResult {
	args := m.Called(ctx, fetched)
	return args.Get(0).(model.AnalysisResult)
}

// --- Discoverer Mock ---

type mockDiscoverer struct {
	mock.Mock
}

func (m *mockDiscoverer) Discover(ctx context.Context, content string) ([]string, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Cache Mock ---

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetEnriched(ctx context.Context, lead model.Lead) (*model.EnrichedLead, bool, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.EnrichedLead), args.Bool(1), args.Error(2)
}

func (m *mockCache) SetEnriched(ctx context.Context, e model.EnrichedLead) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
