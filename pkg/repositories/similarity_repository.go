package repositories

import (
	"context"
	"fmt"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/database"
	"github.com/dense-analysis/pie/pkg/models"
)

// SimilarityRepository finds probable duplicate issues.
type SimilarityRepository interface {
	// FindSimilarIssues returns every ordered pair (A, B) of distinct open issues in
	// the same project whose title and description distances are both within the
	// inclusive thresholds. Both (A, B) and (B, A) are returned.
	// Results are ordered by project, then A's id, then B's id.
	FindSimilarIssues(ctx context.Context, thresholds models.SimilarityThresholds) ([]*models.SimilarIssueMatch, error)
}

type similarityRepository struct {
	db database.Querier
}

// NewSimilarityRepository returns a SimilarityRepository that computes all
// distances inside PostgreSQL with pgvector.
func NewSimilarityRepository(db database.Querier) SimilarityRepository {
	return &similarityRepository{db: db}
}

var _ SimilarityRepository = (*similarityRepository)(nil)

func (r *similarityRepository) FindSimilarIssues(ctx context.Context, thresholds models.SimilarityThresholds) ([]*models.SimilarIssueMatch, error) {
	query := `
		WITH open_issues AS (
			SELECT i.source_system, i.project_owner, i.project_name, i.id, i.title,
				i.title_vector, i.description_vector
			FROM issues i
			WHERE NOT EXISTS (
				SELECT 1 FROM issue_events e
				WHERE e.source_system = i.source_system
				AND e.project_owner = i.project_owner
				AND e.project_name = i.project_name
				AND e.id = i.id
				AND e.type = $3
			)
		),
		pairs AS (
			SELECT a.source_system, a.project_owner, a.project_name,
				a.id AS issue1_id, b.id AS issue2_id,
				a.title AS issue1_title, b.title AS issue2_title,
				pie_cosine_distance(a.title_vector, b.title_vector) AS title_distance,
				pie_cosine_distance(a.description_vector, b.description_vector) AS description_distance
			FROM open_issues a
			JOIN open_issues b
				ON b.source_system = a.source_system
				AND b.project_owner = a.project_owner
				AND b.project_name = a.project_name
				AND b.id <> a.id
		)
		SELECT source_system, project_owner, project_name,
			issue1_id, issue2_id, issue1_title, issue2_title,
			title_distance, description_distance
		FROM pairs
		WHERE title_distance <= $1 AND description_distance <= $2
		ORDER BY source_system, project_owner, project_name, issue1_id, issue2_id`

	rows, err := r.db.Query(ctx, query,
		thresholds.MaxTitleDistance,
		thresholds.MaxDescriptionDistance,
		int16(models.IssueEventClosed),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar issues: %w: %w", apperrors.ErrQuery, err)
	}
	defer rows.Close()

	var matches []*models.SimilarIssueMatch
	for rows.Next() {
		var match models.SimilarIssueMatch
		var sourceSystem int16
		if err := rows.Scan(
			&sourceSystem,
			&match.Project.Owner,
			&match.Project.Name,
			&match.Issue1ID,
			&match.Issue2ID,
			&match.Issue1Title,
			&match.Issue2Title,
			&match.TitleDistance,
			&match.DescriptionDistance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan similar issue pair: %w: %w", apperrors.ErrQuery, err)
		}
		match.Project.SourceSystem = models.SourceSystem(sourceSystem)
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate similar issues: %w: %w", apperrors.ErrQuery, err)
	}

	return matches, nil
}
