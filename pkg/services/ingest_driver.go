package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/models"
)

// RecordSink receives normalized records from a source system loader.
type RecordSink interface {
	StoreIssue(ctx context.Context, issue *models.Issue) error
	StoreIssueComment(ctx context.Context, comment *models.IssueComment) error
	StoreIssueEvent(ctx context.Context, event *models.IssueEvent) error
}

// RecordCounts counts the outcome of storing one kind of record.
type RecordCounts struct {
	Written  int `json:"written" yaml:"written"`
	Existing int `json:"existing" yaml:"existing"`
	Failed   int `json:"failed" yaml:"failed"`
}

func (c *RecordCounts) add(other RecordCounts) {
	c.Written += other.Written
	c.Existing += other.Existing
	c.Failed += other.Failed
}

// IngestStats summarizes a load.
type IngestStats struct {
	Issues   RecordCounts `json:"issues" yaml:"issues"`
	Comments RecordCounts `json:"comments" yaml:"comments"`
	Events   RecordCounts `json:"events" yaml:"events"`
}

// Add accumulates other into s.
func (s *IngestStats) Add(other IngestStats) {
	s.Issues.add(other.Issues)
	s.Comments.add(other.Comments)
	s.Events.add(other.Events)
}

// Failed returns the number of records that could not be stored.
func (s IngestStats) Failed() int {
	return s.Issues.Failed + s.Comments.Failed + s.Events.Failed
}

// IngestDriver feeds records from a loader into an IngestService, counting
// outcomes. When continueOnError is false the first failed record aborts the
// load; otherwise failures are logged and skipped.
type IngestDriver struct {
	service         IngestService
	continueOnError bool
	logger          *zap.Logger

	mu    sync.Mutex
	stats IngestStats
}

// NewIngestDriver creates an IngestDriver writing through service.
func NewIngestDriver(service IngestService, continueOnError bool, logger *zap.Logger) *IngestDriver {
	return &IngestDriver{
		service:         service,
		continueOnError: continueOnError,
		logger:          logger.Named("ingest-driver"),
	}
}

var _ RecordSink = (*IngestDriver)(nil)

// Stats returns a snapshot of the counts so far.
func (d *IngestDriver) Stats() IngestStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *IngestDriver) StoreIssue(ctx context.Context, issue *models.Issue) error {
	created, err := d.service.StoreIssue(ctx, issue)
	return d.record(ctx, &d.stats.Issues, created, err, "issue", issue.Project, issue.ID, 0)
}

func (d *IngestDriver) StoreIssueComment(ctx context.Context, comment *models.IssueComment) error {
	created, err := d.service.StoreIssueComment(ctx, comment)
	return d.record(ctx, &d.stats.Comments, created, err, "comment", comment.Project, comment.IssueID, comment.ID)
}

func (d *IngestDriver) StoreIssueEvent(ctx context.Context, event *models.IssueEvent) error {
	created, err := d.service.StoreIssueEvent(ctx, event)
	return d.record(ctx, &d.stats.Events, created, err, "event", event.Project, event.ID, event.RelatedObjectID)
}

func (d *IngestDriver) record(ctx context.Context, counts *RecordCounts, created bool, err error, kind string, project models.Project, issueID, objectID int64) error {
	d.mu.Lock()
	switch {
	case err != nil:
		counts.Failed++
	case created:
		counts.Written++
	default:
		counts.Existing++
	}
	d.mu.Unlock()

	if err == nil {
		return nil
	}
	if d.continueOnError && ctx.Err() == nil {
		d.logger.Warn("Skipping record that failed to store",
			zap.String("kind", kind),
			zap.Stringer("project", project),
			zap.Int64("issue_id", issueID),
			zap.Int64("object_id", objectID),
			zap.Error(err))
		return nil
	}
	return fmt.Errorf("failed to store %s for issue %d in %s: %w", kind, issueID, project, err)
}
