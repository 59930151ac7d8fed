package repositories

import (
	"context"
	"fmt"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/database"
	"github.com/dense-analysis/pie/pkg/models"
)

// IssueEventRepository provides data access for the append-only event log.
type IssueEventRepository interface {
	// Create appends the event. An identical event (same project, id,
	// related_object_id and type) already in the log is left alone and false is returned.
	Create(ctx context.Context, event *models.IssueEvent) (bool, error)
	// ListByIssue returns the events of one issue ordered by timestamp.
	ListByIssue(ctx context.Context, project models.Project, id int64) ([]*models.IssueEvent, error)
}

type issueEventRepository struct {
	db database.Querier
}

// NewIssueEventRepository returns an IssueEventRepository backed by PostgreSQL.
func NewIssueEventRepository(db database.Querier) IssueEventRepository {
	return &issueEventRepository{db: db}
}

var _ IssueEventRepository = (*issueEventRepository)(nil)

func (r *issueEventRepository) Create(ctx context.Context, event *models.IssueEvent) (bool, error) {
	query := `
		INSERT INTO issue_events (
			source_system, project_owner, project_name, id,
			parent_id, related_object_id, type, assignee_username, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source_system, project_owner, project_name, id, related_object_id, type) DO NOTHING`

	result, err := r.db.Exec(ctx, query,
		int16(event.Project.SourceSystem),
		event.Project.Owner,
		event.Project.Name,
		event.ID,
		event.ParentID,
		event.RelatedObjectID,
		int16(event.Type),
		event.AssigneeUsername,
		event.Timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert %s event for issue %d: %w: %w",
			event.Type, event.ID, apperrors.ErrPersistence, err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *issueEventRepository) ListByIssue(ctx context.Context, project models.Project, id int64) ([]*models.IssueEvent, error) {
	query := `
		SELECT parent_id, related_object_id, type, assignee_username, timestamp
		FROM issue_events
		WHERE source_system = $1 AND project_owner = $2 AND project_name = $3 AND id = $4
		ORDER BY timestamp, type, related_object_id`

	rows, err := r.db.Query(ctx, query, int16(project.SourceSystem), project.Owner, project.Name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for issue %d: %w: %w", id, apperrors.ErrQuery, err)
	}
	defer rows.Close()

	var events []*models.IssueEvent
	for rows.Next() {
		event := &models.IssueEvent{Project: project, ID: id}
		var eventType int16
		if err := rows.Scan(
			&event.ParentID,
			&event.RelatedObjectID,
			&eventType,
			&event.AssigneeUsername,
			&event.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w: %w", apperrors.ErrQuery, err)
		}
		event.Type = models.IssueEventType(eventType)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w: %w", apperrors.ErrQuery, err)
	}

	return events, nil
}
