package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/database"
	"github.com/dense-analysis/pie/pkg/models"
)

// IssueCommentRepository provides data access for issue comments.
type IssueCommentRepository interface {
	// Create inserts the comment unless one with the same (project, issue_id, id)
	// exists. It returns false when the row was already present.
	Create(ctx context.Context, comment *models.IssueComment) (bool, error)
	Get(ctx context.Context, project models.Project, issueID, id int64) (*models.IssueComment, error)
}

type issueCommentRepository struct {
	db database.Querier
}

// NewIssueCommentRepository returns an IssueCommentRepository backed by PostgreSQL.
func NewIssueCommentRepository(db database.Querier) IssueCommentRepository {
	return &issueCommentRepository{db: db}
}

var _ IssueCommentRepository = (*issueCommentRepository)(nil)

func (r *issueCommentRepository) Create(ctx context.Context, comment *models.IssueComment) (bool, error) {
	query := `
		INSERT INTO issue_comments (
			source_system, project_owner, project_name, issue_id, id,
			username, body, created_at, body_vector
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source_system, project_owner, project_name, issue_id, id) DO NOTHING`

	result, err := r.db.Exec(ctx, query,
		int16(comment.Project.SourceSystem),
		comment.Project.Owner,
		comment.Project.Name,
		comment.IssueID,
		comment.ID,
		comment.Username,
		comment.Body,
		comment.CreatedAt,
		pgvector.NewVector(comment.BodyVector),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert comment %d on issue %d: %w: %w",
			comment.ID, comment.IssueID, apperrors.ErrPersistence, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *issueCommentRepository) Get(ctx context.Context, project models.Project, issueID, id int64) (*models.IssueComment, error) {
	query := `
		SELECT username, body, created_at, body_vector
		FROM issue_comments
		WHERE source_system = $1 AND project_owner = $2 AND project_name = $3
		AND issue_id = $4 AND id = $5`

	comment := models.IssueComment{Project: project, IssueID: issueID, ID: id}
	var bodyVector pgvector.Vector

	err := r.db.QueryRow(ctx, query, int16(project.SourceSystem), project.Owner, project.Name, issueID, id).Scan(
		&comment.Username,
		&comment.Body,
		&comment.CreatedAt,
		&bodyVector,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment %d on issue %d: %w: %w", id, issueID, apperrors.ErrQuery, err)
	}

	comment.BodyVector = bodyVector.Slice()
	return &comment, nil
}
