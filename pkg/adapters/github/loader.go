// Package github loads issues, comments and lifecycle events from GitHub.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v59/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/retry"
	"github.com/dense-analysis/pie/pkg/services"
)

const pageSize = 100

// Config configures a Loader.
type Config struct {
	// Token is a personal access token. Empty uses unauthenticated requests.
	Token string
	// BaseURL overrides the REST API root, e.g. for GitHub Enterprise.
	BaseURL string
	// Retry controls how failed page fetches are retried. Nil uses retry.DefaultConfig.
	Retry *retry.Config
}

// Loader reads every issue of a GitHub repository, including closed ones and
// their comments, and hands them to a RecordSink.
type Loader struct {
	client *gh.Client
	retry  *retry.Config
	logger *zap.Logger
}

var _ services.ProjectLoader = (*Loader)(nil)

// NewLoader creates a Loader authenticating with cfg.Token.
func NewLoader(ctx context.Context, cfg Config, logger *zap.Logger) (*Loader, error) {
	var httpClient *http.Client
	if cfg.Token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	client := gh.NewClient(httpClient)

	if cfg.BaseURL != "" {
		baseURL, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.BaseURL, err)
		}
		if !strings.HasSuffix(baseURL.Path, "/") {
			baseURL.Path += "/"
		}
		client.BaseURL = baseURL
	}

	return NewLoaderWithClient(client, cfg.Retry, logger), nil
}

// NewLoaderWithClient creates a Loader around an existing client.
func NewLoaderWithClient(client *gh.Client, retryConfig *retry.Config, logger *zap.Logger) *Loader {
	if retryConfig == nil {
		retryConfig = retry.DefaultConfig()
	}
	return &Loader{
		client: client,
		retry:  retryConfig,
		logger: logger.Named("github-loader"),
	}
}

// Load implements services.ProjectLoader. For each issue it emits the issue,
// a CREATED event, a CLOSED event when the issue is closed, and then every
// comment followed by its COMMENT_ADDED event. Pull requests are skipped.
func (l *Loader) Load(ctx context.Context, project models.Project, sink services.RecordSink) error {
	if project.SourceSystem != models.SourceSystemGitHub {
		return fmt.Errorf("project %s is not a GitHub project", project)
	}

	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	loaded := 0
	for {
		page, err := retry.DoIfRetryableWithResult(ctx, l.retry, func() (issuePage, error) {
			issues, resp, err := l.client.Issues.ListByRepo(ctx, project.Owner, project.Name, opts)
			return issuePage{issues: issues, resp: resp}, classifyError(err)
		})
		if err != nil {
			return fmt.Errorf("failed to list issues of %s (page %d): %w", project, max(opts.Page, 1), err)
		}

		for _, issue := range page.issues {
			if issue.IsPullRequest() {
				continue
			}
			if err := l.loadIssue(ctx, project, issue, sink); err != nil {
				return err
			}
			loaded++
		}

		if page.resp == nil || page.resp.NextPage == 0 {
			break
		}
		opts.Page = page.resp.NextPage
	}

	l.logger.Info("Loaded GitHub project",
		zap.Stringer("project", project),
		zap.Int("issues", loaded))
	return nil
}

type issuePage struct {
	issues []*gh.Issue
	resp   *gh.Response
}

type commentPage struct {
	comments []*gh.IssueComment
	resp     *gh.Response
}

func (l *Loader) loadIssue(ctx context.Context, project models.Project, issue *gh.Issue, sink services.RecordSink) error {
	record := NormalizeIssue(project, issue)
	if err := sink.StoreIssue(ctx, record); err != nil {
		return err
	}

	created := &models.IssueEvent{
		Project:          project,
		ID:               record.ID,
		Type:             models.IssueEventCreated,
		AssigneeUsername: record.AssigneeUsername,
		Timestamp:        record.CreatedAt,
	}
	if err := sink.StoreIssueEvent(ctx, created); err != nil {
		return err
	}

	if issue.ClosedAt != nil {
		closed := &models.IssueEvent{
			Project:          project,
			ID:               record.ID,
			Type:             models.IssueEventClosed,
			AssigneeUsername: record.AssigneeUsername,
			Timestamp:        issue.GetClosedAt().Time,
		}
		if err := sink.StoreIssueEvent(ctx, closed); err != nil {
			return err
		}
	}

	if issue.GetComments() == 0 && issue.Comments != nil {
		return nil
	}
	return l.loadComments(ctx, project, issue, record, sink)
}

func (l *Loader) loadComments(ctx context.Context, project models.Project, issue *gh.Issue, record *models.Issue, sink services.RecordSink) error {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	for {
		page, err := retry.DoIfRetryableWithResult(ctx, l.retry, func() (commentPage, error) {
			comments, resp, err := l.client.Issues.ListComments(ctx, project.Owner, project.Name, issue.GetNumber(), opts)
			return commentPage{comments: comments, resp: resp}, classifyError(err)
		})
		if err != nil {
			return fmt.Errorf("failed to list comments of %s#%d: %w", project, issue.GetNumber(), err)
		}

		for _, comment := range page.comments {
			c := NormalizeComment(project, record.ID, comment)
			if err := sink.StoreIssueComment(ctx, c); err != nil {
				return err
			}
			event := &models.IssueEvent{
				Project:          project,
				ID:               record.ID,
				RelatedObjectID:  c.ID,
				Type:             models.IssueEventCommentAdded,
				AssigneeUsername: record.AssigneeUsername,
				Timestamp:        c.CreatedAt,
			}
			if err := sink.StoreIssueEvent(ctx, event); err != nil {
				return err
			}
		}

		if page.resp == nil || page.resp.NextPage == 0 {
			return nil
		}
		opts.Page = page.resp.NextPage
	}
}

// NormalizeIssue converts a GitHub issue. The issue number is used as the id
// because it is what users see and is unique within a repository.
func NormalizeIssue(project models.Project, issue *gh.Issue) *models.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		if name := label.GetName(); name != "" {
			labels = append(labels, name)
		}
	}
	return &models.Issue{
		Project:          project,
		ID:               int64(issue.GetNumber()),
		AssigneeUsername: issue.GetAssignee().GetLogin(),
		Title:            issue.GetTitle(),
		Description:      issue.GetBody(),
		Labels:           labels,
		CreatedAt:        issue.GetCreatedAt().Time,
	}
}

// NormalizeComment converts a GitHub comment on issue issueID.
func NormalizeComment(project models.Project, issueID int64, comment *gh.IssueComment) *models.IssueComment {
	return &models.IssueComment{
		Project:   project,
		IssueID:   issueID,
		ID:        comment.GetID(),
		Username:  comment.GetUser().GetLogin(),
		Body:      comment.GetBody(),
		CreatedAt: comment.GetCreatedAt().Time,
	}
}

// apiError marks GitHub API failures as transient or permanent for retry.
type apiError struct {
	err        error
	retryable  bool
	retryAfter time.Duration
}

func (e *apiError) Error() string             { return e.err.Error() }
func (e *apiError) Unwrap() error             { return e.err }
func (e *apiError) IsRetryable() bool         { return e.retryable }
func (e *apiError) RetryAfter() time.Duration { return e.retryAfter }

// classifyError wraps GitHub API errors with their retry behavior. Other
// errors, such as network failures, are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &apiError{err: err, retryable: true, retryAfter: time.Until(rateErr.Rate.Reset.Time)}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &apiError{err: err, retryable: true, retryAfter: abuseErr.GetRetryAfter()}
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		status := respErr.Response.StatusCode
		return &apiError{err: err, retryable: status == http.StatusTooManyRequests || status >= 500}
	}

	return err
}
