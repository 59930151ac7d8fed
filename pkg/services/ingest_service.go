package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/embedding"
	"github.com/dense-analysis/pie/pkg/logging"
	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/repositories"
)

// IngestService stores records from a source system exactly once, computing
// their vectors on first sight.
type IngestService interface {
	// StoreIssue stores a new issue. Returns false without embedding anything
	// when the issue is already stored.
	StoreIssue(ctx context.Context, issue *models.Issue) (bool, error)

	// StoreIssueComment stores a new comment. Returns false without embedding
	// anything when the comment is already stored.
	StoreIssueComment(ctx context.Context, comment *models.IssueComment) (bool, error)

	// StoreIssueEvent appends an event. Events are never embedded and an
	// identical event is stored once. Returns false when the event was already stored.
	StoreIssueEvent(ctx context.Context, event *models.IssueEvent) (bool, error)
}

type ingestService struct {
	oracle   repositories.ExistenceOracle
	issues   repositories.IssueRepository
	comments repositories.IssueCommentRepository
	events   repositories.IssueEventRepository
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewIngestService creates an IngestService over repos that embeds with embedder.
func NewIngestService(repos *repositories.Repositories, embedder embedding.Embedder, logger *zap.Logger) IngestService {
	return &ingestService{
		oracle:   repos.Oracle,
		issues:   repos.Issues,
		comments: repos.Comments,
		events:   repos.Events,
		embedder: embedder,
		logger:   logger.Named("ingest-service"),
	}
}

var _ IngestService = (*ingestService)(nil)

func (s *ingestService) StoreIssue(ctx context.Context, issue *models.Issue) (bool, error) {
	if issue == nil {
		return false, fmt.Errorf("issue is required: %w", apperrors.ErrInvalidArgument)
	}
	if err := issue.Project.Validate(); err != nil {
		return false, fmt.Errorf("issue %d: %w: %w", issue.ID, apperrors.ErrInvalidArgument, err)
	}

	exists, err := s.oracle.IssueExists(ctx, issue.Project, issue.ID)
	if err != nil {
		s.logger.Error("Failed to check issue existence",
			zap.Stringer("project", issue.Project),
			zap.Int64("issue_id", issue.ID),
			zap.Error(err))
		return false, err
	}
	if exists {
		s.logger.Debug("Issue already stored",
			zap.Stringer("project", issue.Project),
			zap.Int64("issue_id", issue.ID))
		return false, nil
	}

	titleVector, err := s.embedder.EmbedSingle(ctx, issue.Title)
	if err != nil {
		s.logEmbeddingFailure("title", issue.Project, issue.ID, issue.Title, err)
		return false, fmt.Errorf("failed to embed title of issue %d: %w", issue.ID, embeddingError(err))
	}
	descriptionVector, err := s.embedder.EmbedAggregate(ctx, issue.Description)
	if err != nil {
		s.logEmbeddingFailure("description", issue.Project, issue.ID, issue.Description, err)
		return false, fmt.Errorf("failed to embed description of issue %d: %w", issue.ID, embeddingError(err))
	}

	stored := *issue
	stored.TitleVector = titleVector
	stored.DescriptionVector = descriptionVector

	created, err := s.issues.Create(ctx, &stored)
	if err != nil {
		s.logger.Error("Failed to store issue",
			zap.Stringer("project", issue.Project),
			zap.Int64("issue_id", issue.ID),
			zap.Error(err))
		return false, err
	}
	if !created {
		s.logger.Debug("Issue stored concurrently by another writer",
			zap.Stringer("project", issue.Project),
			zap.Int64("issue_id", issue.ID))
		return false, nil
	}

	issue.TitleVector = titleVector
	issue.DescriptionVector = descriptionVector

	s.logger.Debug("Stored issue",
		zap.Stringer("project", issue.Project),
		zap.Int64("issue_id", issue.ID),
		zap.String("title", logging.SanitizeText(issue.Title)))
	return true, nil
}

func (s *ingestService) StoreIssueComment(ctx context.Context, comment *models.IssueComment) (bool, error) {
	if comment == nil {
		return false, fmt.Errorf("comment is required: %w", apperrors.ErrInvalidArgument)
	}
	if err := comment.Project.Validate(); err != nil {
		return false, fmt.Errorf("comment %d: %w: %w", comment.ID, apperrors.ErrInvalidArgument, err)
	}

	exists, err := s.oracle.IssueCommentExists(ctx, comment.Project, comment.IssueID, comment.ID)
	if err != nil {
		s.logger.Error("Failed to check comment existence",
			zap.Stringer("project", comment.Project),
			zap.Int64("issue_id", comment.IssueID),
			zap.Int64("comment_id", comment.ID),
			zap.Error(err))
		return false, err
	}
	if exists {
		s.logger.Debug("Comment already stored",
			zap.Stringer("project", comment.Project),
			zap.Int64("issue_id", comment.IssueID),
			zap.Int64("comment_id", comment.ID))
		return false, nil
	}

	bodyVector, err := s.embedder.EmbedAggregate(ctx, comment.Body)
	if err != nil {
		s.logEmbeddingFailure("body", comment.Project, comment.IssueID, comment.Body, err)
		return false, fmt.Errorf("failed to embed comment %d on issue %d: %w", comment.ID, comment.IssueID, embeddingError(err))
	}

	stored := *comment
	stored.BodyVector = bodyVector

	created, err := s.comments.Create(ctx, &stored)
	if err != nil {
		s.logger.Error("Failed to store comment",
			zap.Stringer("project", comment.Project),
			zap.Int64("issue_id", comment.IssueID),
			zap.Int64("comment_id", comment.ID),
			zap.Error(err))
		return false, err
	}
	if !created {
		return false, nil
	}

	comment.BodyVector = bodyVector

	s.logger.Debug("Stored comment",
		zap.Stringer("project", comment.Project),
		zap.Int64("issue_id", comment.IssueID),
		zap.Int64("comment_id", comment.ID))
	return true, nil
}

func (s *ingestService) StoreIssueEvent(ctx context.Context, event *models.IssueEvent) (bool, error) {
	if event == nil {
		return false, fmt.Errorf("event is required: %w", apperrors.ErrInvalidArgument)
	}
	if err := event.Project.Validate(); err != nil {
		return false, fmt.Errorf("event for issue %d: %w: %w", event.ID, apperrors.ErrInvalidArgument, err)
	}
	if !event.Type.Valid() {
		return false, fmt.Errorf("event for issue %d has unknown type %d: %w", event.ID, int16(event.Type), apperrors.ErrInvalidArgument)
	}

	created, err := s.events.Create(ctx, event)
	if err != nil {
		s.logger.Error("Failed to store event",
			zap.Stringer("project", event.Project),
			zap.Int64("issue_id", event.ID),
			zap.Stringer("type", event.Type),
			zap.Error(err))
		return false, err
	}

	s.logger.Debug("Stored event",
		zap.Stringer("project", event.Project),
		zap.Int64("issue_id", event.ID),
		zap.Int64("related_object_id", event.RelatedObjectID),
		zap.Stringer("type", event.Type),
		zap.Bool("new", created))
	return created, nil
}

func (s *ingestService) logEmbeddingFailure(field string, project models.Project, issueID int64, text string, err error) {
	s.logger.Error("Failed to embed text",
		zap.Stringer("project", project),
		zap.Int64("issue_id", issueID),
		zap.String("field", field),
		zap.String("text", logging.SanitizeText(text)),
		zap.String("error_type", string(embedding.GetErrorType(err))),
		zap.Error(err))
}

// embeddingError makes sure err matches apperrors.ErrEmbedding.
func embeddingError(err error) error {
	if errors.Is(err, apperrors.ErrEmbedding) {
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrEmbedding, err)
}
