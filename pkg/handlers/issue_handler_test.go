package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/repositories"
	"github.com/dense-analysis/pie/pkg/services"
	"github.com/dense-analysis/pie/pkg/testhelpers"
)

func newIssueMux(t *testing.T) *http.ServeMux {
	t.Helper()
	ctx := context.Background()
	repos := repositories.NewMemoryStore().Repositories()

	issue := testhelpers.NewIssue(ale, 1, "Crash on startup", "It crashes.")
	issue.TitleVector = models.Vector{1, 0}
	issue.DescriptionVector = models.Vector{0, 1}
	_, err := repos.Issues.Create(ctx, issue)
	require.NoError(t, err)
	_, err = repos.Events.Create(ctx, testhelpers.NewEvent(ale, 1, 0, models.IssueEventCreated))
	require.NoError(t, err)
	_, err = repos.Events.Create(ctx, testhelpers.NewEvent(ale, 1, 0, models.IssueEventClosed))
	require.NoError(t, err)

	comment := testhelpers.NewComment(ale, 1, 100, "Same here.")
	comment.BodyVector = models.Vector{1, 1}
	_, err = repos.Comments.Create(ctx, comment)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewIssueHandler(services.NewIssueService(repos, zap.NewNop()), zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func serveIssue(mux *http.ServeMux, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIssueHandler_GetIssue(t *testing.T) {
	rec := serveIssue(newIssueMux(t), "/api/projects/github/dense-analysis/ale/issues/1")
	require.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Issue struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
		} `json:"issue"`
		Events []map[string]any `json:"events"`
		Open   bool             `json:"open"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, int64(1), response.Issue.ID)
	assert.Equal(t, "Crash on startup", response.Issue.Title)
	assert.Len(t, response.Events, 2)
	assert.False(t, response.Open)
	assert.NotContains(t, rec.Body.String(), "title_vector")
}

func TestIssueHandler_GetIssueComment(t *testing.T) {
	rec := serveIssue(newIssueMux(t), "/api/projects/GitHub/dense-analysis/ale/issues/1/comments/100")
	require.Equal(t, http.StatusOK, rec.Code)

	var comment models.IssueComment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&comment))
	assert.Equal(t, int64(100), comment.ID)
	assert.Equal(t, "Same here.", comment.Body)
}

func TestIssueHandler_Errors(t *testing.T) {
	mux := newIssueMux(t)

	tests := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown issue", "/api/projects/github/dense-analysis/ale/issues/2", http.StatusNotFound, "not_found"},
		{"unknown comment", "/api/projects/github/dense-analysis/ale/issues/1/comments/101", http.StatusNotFound, "not_found"},
		{"other project", "/api/projects/github/dense-analysis/neural/issues/1", http.StatusNotFound, "not_found"},
		{"unknown source system", "/api/projects/gitlab/dense-analysis/ale/issues/1", http.StatusBadRequest, "invalid_argument"},
		{"non-numeric id", "/api/projects/github/dense-analysis/ale/issues/abc", http.StatusBadRequest, "invalid_argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveIssue(mux, tt.target)
			assert.Equal(t, tt.status, rec.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body["error"])
		})
	}
}
