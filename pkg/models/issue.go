package models

import "time"

// IssueKey is the identity of an issue: (project, id).
type IssueKey struct {
	Project Project
	ID      int64
}

// Issue is an issue as normalized from a source system.
// TitleVector and DescriptionVector are derived during ingestion and are never
// empty for a persisted issue.
type Issue struct {
	// Project is the project for the issue.
	Project Project `json:"project"`
	// ID is the numerical id of the issue in its source system.
	ID int64 `json:"id"`
	// ParentID is the id of the parent issue, or 0 when there is no parent.
	ParentID int64 `json:"parent_id"`
	// AssigneeUsername is empty when the issue is unassigned.
	AssigneeUsername string `json:"assignee_username"`
	Title            string `json:"title"`
	// Description may be empty.
	Description string `json:"description"`
	// Labels is an unordered set of label names.
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`

	TitleVector       Vector `json:"-"`
	DescriptionVector Vector `json:"-"`
}

// Key returns the identity key of the issue.
func (i *Issue) Key() IssueKey {
	return IssueKey{Project: i.Project, ID: i.ID}
}

// IssueCommentKey is the identity of a comment: (project, issue_id, id).
type IssueCommentKey struct {
	Project Project
	IssueID int64
	ID      int64
}

// IssueComment is a comment posted on an issue.
type IssueComment struct {
	Project Project `json:"project"`
	// IssueID is the id of the issue the comment belongs to.
	IssueID int64 `json:"issue_id"`
	// ID is the numerical id of the comment.
	ID       int64  `json:"id"`
	Username string `json:"username"`
	// Body is assumed to be non-empty by source systems, but an empty body still
	// gets a zero vector.
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`

	BodyVector Vector `json:"-"`
}

// Key returns the identity key of the comment.
func (c *IssueComment) Key() IssueCommentKey {
	return IssueCommentKey{Project: c.Project, IssueID: c.IssueID, ID: c.ID}
}
