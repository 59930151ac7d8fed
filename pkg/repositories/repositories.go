// Package repositories stores issues, comments and events and answers the
// existence and similarity queries over them.
package repositories

import "github.com/dense-analysis/pie/pkg/database"

// Repositories groups every repository used by the services.
type Repositories struct {
	Oracle     ExistenceOracle
	Issues     IssueRepository
	Comments   IssueCommentRepository
	Events     IssueEventRepository
	Similarity SimilarityRepository
}

// NewPostgresRepositories returns PostgreSQL implementations sharing db.
func NewPostgresRepositories(db database.Querier) *Repositories {
	return &Repositories{
		Oracle:     NewExistenceOracle(db),
		Issues:     NewIssueRepository(db),
		Comments:   NewIssueCommentRepository(db),
		Events:     NewIssueEventRepository(db),
		Similarity: NewSimilarityRepository(db),
	}
}
