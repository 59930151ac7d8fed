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

// IssueRepository provides data access for issues.
type IssueRepository interface {
	// Create inserts the issue unless one with the same (project, id) exists.
	// It returns false when the row was already present.
	Create(ctx context.Context, issue *models.Issue) (bool, error)
	// Get returns apperrors.ErrNotFound when there is no such issue.
	Get(ctx context.Context, project models.Project, id int64) (*models.Issue, error)
}

type issueRepository struct {
	db database.Querier
}

// NewIssueRepository returns an IssueRepository backed by PostgreSQL.
func NewIssueRepository(db database.Querier) IssueRepository {
	return &issueRepository{db: db}
}

var _ IssueRepository = (*issueRepository)(nil)

func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) (bool, error) {
	query := `
		INSERT INTO issues (
			source_system, project_owner, project_name, id,
			parent_id, assignee_username, title, description, labels, created_at,
			title_vector, description_vector
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (source_system, project_owner, project_name, id) DO NOTHING`

	labels := issue.Labels
	if labels == nil {
		labels = []string{}
	}

	result, err := r.db.Exec(ctx, query,
		int16(issue.Project.SourceSystem),
		issue.Project.Owner,
		issue.Project.Name,
		issue.ID,
		issue.ParentID,
		issue.AssigneeUsername,
		issue.Title,
		issue.Description,
		labels,
		issue.CreatedAt,
		pgvector.NewVector(issue.TitleVector),
		pgvector.NewVector(issue.DescriptionVector),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert issue %d: %w: %w", issue.ID, apperrors.ErrPersistence, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *issueRepository) Get(ctx context.Context, project models.Project, id int64) (*models.Issue, error) {
	query := `
		SELECT parent_id, assignee_username, title, description, labels, created_at,
			title_vector, description_vector
		FROM issues
		WHERE source_system = $1 AND project_owner = $2 AND project_name = $3 AND id = $4`

	issue := models.Issue{Project: project, ID: id}
	var titleVector, descriptionVector pgvector.Vector

	err := r.db.QueryRow(ctx, query, int16(project.SourceSystem), project.Owner, project.Name, id).Scan(
		&issue.ParentID,
		&issue.AssigneeUsername,
		&issue.Title,
		&issue.Description,
		&issue.Labels,
		&issue.CreatedAt,
		&titleVector,
		&descriptionVector,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue %d: %w: %w", id, apperrors.ErrQuery, err)
	}

	issue.TitleVector = titleVector.Slice()
	issue.DescriptionVector = descriptionVector.Slice()
	return &issue, nil
}
