package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/repositories"
)

// IssueDetail is a stored issue with its lifecycle events.
type IssueDetail struct {
	Issue *models.Issue `json:"issue"`
	// Events are ordered by timestamp.
	Events []*models.IssueEvent `json:"events"`
	// Open is false once a CLOSED event is stored for the issue.
	Open bool `json:"open"`
}

// IssueService reads stored issues and comments.
type IssueService interface {
	// GetIssue returns apperrors.ErrNotFound when the issue is not stored.
	GetIssue(ctx context.Context, project models.Project, id int64) (*IssueDetail, error)
	// GetIssueComment returns apperrors.ErrNotFound when the comment is not stored.
	GetIssueComment(ctx context.Context, project models.Project, issueID, id int64) (*models.IssueComment, error)
}

type issueService struct {
	issues   repositories.IssueRepository
	comments repositories.IssueCommentRepository
	events   repositories.IssueEventRepository
	logger   *zap.Logger
}

// NewIssueService creates an IssueService over repos.
func NewIssueService(repos *repositories.Repositories, logger *zap.Logger) IssueService {
	return &issueService{
		issues:   repos.Issues,
		comments: repos.Comments,
		events:   repos.Events,
		logger:   logger.Named("issue-service"),
	}
}

var _ IssueService = (*issueService)(nil)

func (s *issueService) GetIssue(ctx context.Context, project models.Project, id int64) (*IssueDetail, error) {
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("issue %d: %w: %w", id, apperrors.ErrInvalidArgument, err)
	}

	issue, err := s.issues.Get(ctx, project, id)
	if err != nil {
		return nil, fmt.Errorf("issue %d in %s: %w", id, project, err)
	}

	events, err := s.events.ListByIssue(ctx, project, id)
	if err != nil {
		s.logger.Error("Failed to list issue events",
			zap.Stringer("project", project),
			zap.Int64("issue_id", id),
			zap.Error(err))
		return nil, err
	}

	detail := &IssueDetail{Issue: issue, Events: events, Open: true}
	if detail.Events == nil {
		detail.Events = []*models.IssueEvent{}
	}
	for _, event := range detail.Events {
		if event.Type == models.IssueEventClosed {
			detail.Open = false
			break
		}
	}
	return detail, nil
}

func (s *issueService) GetIssueComment(ctx context.Context, project models.Project, issueID, id int64) (*models.IssueComment, error) {
	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("comment %d: %w: %w", id, apperrors.ErrInvalidArgument, err)
	}

	comment, err := s.comments.Get(ctx, project, issueID, id)
	if err != nil {
		return nil, fmt.Errorf("comment %d on issue %d in %s: %w", id, issueID, project, err)
	}
	return comment, nil
}
