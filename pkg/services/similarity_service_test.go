package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/repositories"
	"github.com/dense-analysis/pie/pkg/testhelpers"
)

// mockSimilarityRepository is a hand-written mock for SimilarityRepository.
type mockSimilarityRepository struct {
	matches []*models.SimilarIssueMatch
	err     error
	calls   int
}

func (m *mockSimilarityRepository) FindSimilarIssues(ctx context.Context, thresholds models.SimilarityThresholds) ([]*models.SimilarIssueMatch, error) {
	m.calls++
	return m.matches, m.err
}

func TestSimilarityService_RejectsInvalidThresholds(t *testing.T) {
	repo := &mockSimilarityRepository{}
	service := NewSimilarityService(repo, zap.NewNop())

	for _, tc := range []struct{ title, description float64 }{
		{-0.1, 0.2},
		{0.2, 2.5},
		{math.NaN(), 0.2},
		{0.2, math.Inf(1)},
	} {
		_, err := service.FindSimilarIssues(context.Background(), tc.title, tc.description)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	}
	assert.Zero(t, repo.calls)
}

func TestSimilarityService_EmptyResultIsNotNil(t *testing.T) {
	service := NewSimilarityService(&mockSimilarityRepository{}, zap.NewNop())

	matches, err := service.FindSimilarIssues(context.Background(), 0.2, 0.2)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestSimilarityService_QueryFailureReturnsNoMatches(t *testing.T) {
	repo := &mockSimilarityRepository{
		matches: []*models.SimilarIssueMatch{{Issue1ID: 1, Issue2ID: 2}},
		err:     apperrors.ErrQuery,
	}
	service := NewSimilarityService(repo, zap.NewNop())

	matches, err := service.FindSimilarIssues(context.Background(), 0.2, 0.2)
	assert.ErrorIs(t, err, apperrors.ErrQuery)
	assert.Nil(t, matches)
}

// setupScenario stores issues through the ingest service so vectors come from
// the embedder, then returns a similarity service over the same store.
func setupScenario(t *testing.T, table map[string][]float32) (IngestService, SimilarityService) {
	t.Helper()
	store := repositories.NewMemoryStore()
	repos := store.Repositories()
	ingest := NewIngestService(repos, newTestEmbedder(t, tableClient(table)), zap.NewNop())
	return ingest, NewSimilarityService(repos.Similarity, zap.NewNop())
}

func TestSimilarity_EndToEnd(t *testing.T) {
	ctx := context.Background()
	// cos = 0.95 between the two titles, so the title distance is 0.05.
	ingest, similarity := setupScenario(t, map[string][]float32{
		"Crash on startup":    {1, 0, 0, 0},
		"App crashes at boot": {0.95, float32(math.Sqrt(1 - 0.95*0.95)), 0, 0},
	})
	project := models.Project{SourceSystem: models.SourceSystemGitHub, Owner: "acme", Name: "widgets"}

	created, err := ingest.StoreIssue(ctx, testhelpers.NewIssue(project, 1, "Crash on startup", ""))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = ingest.StoreIssue(ctx, testhelpers.NewIssue(project, 1, "Crash on startup", ""))
	require.NoError(t, err)
	assert.False(t, created)

	created, err = ingest.StoreIssue(ctx, testhelpers.NewIssue(project, 2, "App crashes at boot", ""))
	require.NoError(t, err)
	assert.True(t, created)

	matches, err := similarity.FindSimilarIssues(ctx, 0.2, 0.2)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, project, matches[0].Project)
	assert.Equal(t, int64(1), matches[0].Issue1ID)
	assert.Equal(t, int64(2), matches[0].Issue2ID)
	assert.Equal(t, "Crash on startup", matches[0].Issue1Title)
	assert.Equal(t, "App crashes at boot", matches[0].Issue2Title)
	assert.InDelta(t, 0.05, matches[0].TitleDistance, 1e-4)
	assert.Equal(t, 0.0, matches[0].DescriptionDistance)

	assert.Equal(t, int64(2), matches[1].Issue1ID)
	assert.Equal(t, int64(1), matches[1].Issue2ID)
	assert.Equal(t, matches[0].TitleDistance, matches[1].TitleDistance)
}

func TestSimilarity_ClosedIssueExcluded(t *testing.T) {
	ctx := context.Background()
	ingest, similarity := setupScenario(t, map[string][]float32{
		"Crash": {1, 0, 0, 0},
	})
	project := testhelpers.GitHubProject("ale")

	for id := int64(1); id <= 3; id++ {
		_, err := ingest.StoreIssue(ctx, testhelpers.NewIssue(project, id, "Crash", ""))
		require.NoError(t, err)
	}

	matches, err := similarity.FindSimilarIssues(ctx, 0.2, 0.2)
	require.NoError(t, err)
	assert.Len(t, matches, 6)

	_, err = ingest.StoreIssueEvent(ctx, testhelpers.NewEvent(project, 3, 0, models.IssueEventClosed))
	require.NoError(t, err)
	// Other lifecycle events do not close an issue.
	_, err = ingest.StoreIssueEvent(ctx, testhelpers.NewEvent(project, 2, 0, models.IssueEventResolved))
	require.NoError(t, err)

	matches, err = similarity.FindSimilarIssues(ctx, 0.2, 0.2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotEqual(t, int64(3), m.Issue1ID)
		assert.NotEqual(t, int64(3), m.Issue2ID)
	}
}

func TestSimilarity_ThresholdBoundaryIsInclusive(t *testing.T) {
	ctx := context.Background()
	// Orthogonal titles are exactly distance 1.
	ingest, similarity := setupScenario(t, map[string][]float32{
		"Left":  {1, 0, 0, 0},
		"Right": {0, 1, 0, 0},
	})
	project := testhelpers.GitHubProject("ale")

	_, err := ingest.StoreIssue(ctx, testhelpers.NewIssue(project, 1, "Left", ""))
	require.NoError(t, err)
	_, err = ingest.StoreIssue(ctx, testhelpers.NewIssue(project, 2, "Right", ""))
	require.NoError(t, err)

	matches, err := similarity.FindSimilarIssues(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = similarity.FindSimilarIssues(ctx, math.Nextafter(1, 0), 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSimilarity_ProjectsAreSeparate(t *testing.T) {
	ctx := context.Background()
	ingest, similarity := setupScenario(t, map[string][]float32{"Crash": {1, 0, 0, 0}})

	_, err := ingest.StoreIssue(ctx, testhelpers.NewIssue(testhelpers.GitHubProject("ale"), 1, "Crash", ""))
	require.NoError(t, err)
	_, err = ingest.StoreIssue(ctx, testhelpers.NewIssue(testhelpers.GitHubProject("neural"), 2, "Crash", ""))
	require.NoError(t, err)

	matches, err := similarity.FindSimilarIssues(ctx, 2, 2)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUniquePairs(t *testing.T) {
	ale := testhelpers.GitHubProject("ale")
	neural := testhelpers.GitHubProject("neural")
	matches := []*models.SimilarIssueMatch{
		{Project: ale, Issue1ID: 1, Issue2ID: 2, Issue1Title: "one", Issue2Title: "two"},
		{Project: ale, Issue1ID: 2, Issue2ID: 1, Issue1Title: "two", Issue2Title: "one"},
		{Project: ale, Issue1ID: 5, Issue2ID: 3, Issue1Title: "five", Issue2Title: "three"},
		{Project: neural, Issue1ID: 2, Issue2ID: 1, Issue1Title: "b", Issue2Title: "a"},
		{Project: neural, Issue1ID: 1, Issue2ID: 2, Issue1Title: "a", Issue2Title: "b"},
	}

	unique := UniquePairs(matches)
	require.Len(t, unique, 3)

	assert.Equal(t, int64(1), unique[0].Issue1ID)
	assert.Equal(t, int64(2), unique[0].Issue2ID)

	assert.Equal(t, int64(3), unique[1].Issue1ID)
	assert.Equal(t, int64(5), unique[1].Issue2ID)
	assert.Equal(t, "three", unique[1].Issue1Title)
	assert.Equal(t, "five", unique[1].Issue2Title)

	assert.Equal(t, neural, unique[2].Project)
	assert.Equal(t, "a", unique[2].Issue1Title)

	// The input is left untouched.
	assert.Equal(t, int64(5), matches[2].Issue1ID)
	assert.Empty(t, UniquePairs(nil))
}
