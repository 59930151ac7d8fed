package repositories

import (
	"context"
	"fmt"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/database"
	"github.com/dense-analysis/pie/pkg/models"
)

// ExistenceOracle answers whether a record with a given identity is already stored.
// Implementations are read-only and have no side effects.
type ExistenceOracle interface {
	IssueExists(ctx context.Context, project models.Project, id int64) (bool, error)
	IssueCommentExists(ctx context.Context, project models.Project, issueID, id int64) (bool, error)
	IssueEventExists(ctx context.Context, project models.Project, id, relatedObjectID int64) (bool, error)
}

type existenceOracle struct {
	db database.Querier
}

// NewExistenceOracle returns an ExistenceOracle backed by PostgreSQL.
func NewExistenceOracle(db database.Querier) ExistenceOracle {
	return &existenceOracle{db: db}
}

var _ ExistenceOracle = (*existenceOracle)(nil)

func (o *existenceOracle) IssueExists(ctx context.Context, project models.Project, id int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM issues
			WHERE source_system = $1 AND project_owner = $2 AND project_name = $3
			AND id = $4
		)`

	return o.exists(ctx, "issue", query,
		int16(project.SourceSystem), project.Owner, project.Name, id)
}

func (o *existenceOracle) IssueCommentExists(ctx context.Context, project models.Project, issueID, id int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM issue_comments
			WHERE source_system = $1 AND project_owner = $2 AND project_name = $3
			AND issue_id = $4 AND id = $5
		)`

	return o.exists(ctx, "issue comment", query,
		int16(project.SourceSystem), project.Owner, project.Name, issueID, id)
}

func (o *existenceOracle) IssueEventExists(ctx context.Context, project models.Project, id, relatedObjectID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM issue_events
			WHERE source_system = $1 AND project_owner = $2 AND project_name = $3
			AND id = $4 AND related_object_id = $5
		)`

	return o.exists(ctx, "issue event", query,
		int16(project.SourceSystem), project.Owner, project.Name, id, relatedObjectID)
}

func (o *existenceOracle) exists(ctx context.Context, kind, query string, args ...any) (bool, error) {
	var exists bool
	if err := o.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w: %w", kind, apperrors.ErrQuery, err)
	}
	return exists, nil
}
