package testhelpers

import (
	"time"

	"github.com/dense-analysis/pie/pkg/models"
)

// FixtureTime is the timestamp used by every fixture record.
var FixtureTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// GitHubProject returns a GitHub project owned by "dense-analysis".
func GitHubProject(name string) models.Project {
	return models.Project{
		SourceSystem: models.SourceSystemGitHub,
		Owner:        "dense-analysis",
		Name:         name,
	}
}

// NewIssue returns an issue without vectors.
func NewIssue(project models.Project, id int64, title, description string) *models.Issue {
	return &models.Issue{
		Project:     project,
		ID:          id,
		Title:       title,
		Description: description,
		Labels:      []string{"bug"},
		CreatedAt:   FixtureTime,
	}
}

// NewComment returns a comment without a vector.
func NewComment(project models.Project, issueID, id int64, body string) *models.IssueComment {
	return &models.IssueComment{
		Project:   project,
		IssueID:   issueID,
		ID:        id,
		Username:  "w0rp",
		Body:      body,
		CreatedAt: FixtureTime,
	}
}

// NewEvent returns an event for issue id.
func NewEvent(project models.Project, id, relatedObjectID int64, eventType models.IssueEventType) *models.IssueEvent {
	return &models.IssueEvent{
		Project:         project,
		ID:              id,
		RelatedObjectID: relatedObjectID,
		Type:            eventType,
		Timestamp:       FixtureTime,
	}
}
