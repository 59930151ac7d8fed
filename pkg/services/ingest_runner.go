package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/embedding"
	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/workerpool"
)

// ProjectLoader reads every record of a project from its source system and
// hands them to sink in order: each issue before its events and comments.
type ProjectLoader interface {
	Load(ctx context.Context, project models.Project, sink RecordSink) error
}

// IngestRunnerConfig configures an IngestRunner.
type IngestRunnerConfig struct {
	// Concurrency is the number of projects loaded at once. 1 loads sequentially.
	Concurrency     int
	ContinueOnError bool
}

// ProjectReport is the outcome of loading one project.
type ProjectReport struct {
	Project models.Project `json:"project" yaml:"project"`
	Stats   IngestStats    `json:"stats" yaml:"stats"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunReport is the outcome of one IngestRunner.Run.
type RunReport struct {
	RunID    uuid.UUID       `json:"run_id" yaml:"run_id"`
	Stats    IngestStats     `json:"stats" yaml:"stats"`
	Projects []ProjectReport `json:"projects" yaml:"projects"`
	Elapsed  time.Duration   `json:"elapsed" yaml:"elapsed"`
}

// IngestRunner loads a set of projects into an IngestService.
type IngestRunner struct {
	loader  ProjectLoader
	service IngestService
	config  IngestRunnerConfig
	logger  *zap.Logger
}

// NewIngestRunner creates an IngestRunner.
func NewIngestRunner(loader ProjectLoader, service IngestService, config IngestRunnerConfig, logger *zap.Logger) *IngestRunner {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &IngestRunner{
		loader:  loader,
		service: service,
		config:  config,
		logger:  logger.Named("ingest-runner"),
	}
}

// Run loads every project and returns per-project stats. The returned error
// joins every project failure. Without ContinueOnError the first failure stops
// projects that have not started yet.
func (r *IngestRunner) Run(ctx context.Context, projects []models.Project) (*RunReport, error) {
	runID := uuid.New()
	ctx = embedding.WithRunID(ctx, runID)
	logger := r.logger.With(zap.String("run_id", runID.String()))
	start := time.Now()

	logger.Info("Starting ingestion",
		zap.Int("projects", len(projects)),
		zap.Int("concurrency", r.config.Concurrency),
		zap.Bool("continue_on_error", r.config.ContinueOnError))

	projects = uniqueProjects(projects)
	drivers := make(map[string]*IngestDriver, len(projects))
	items := make([]workerpool.WorkItem[models.Project], 0, len(projects))
	for _, project := range projects {
		driver := NewIngestDriver(r.service, r.config.ContinueOnError, logger)
		drivers[project.String()] = driver
		items = append(items, workerpool.WorkItem[models.Project]{
			ID: project.String(),
			Execute: func(ctx context.Context) (models.Project, error) {
				logger.Info("Loading project", zap.Stringer("project", project))
				if err := r.loader.Load(ctx, project, driver); err != nil {
					return project, fmt.Errorf("failed to load %s: %w", project, err)
				}
				return project, nil
			},
		})
	}

	pool := workerpool.New(workerpool.Config{
		MaxConcurrent: r.config.Concurrency,
		StopOnError:   !r.config.ContinueOnError,
	}, logger)
	results := workerpool.Process(ctx, pool, items, func(completed, total int) {
		logger.Debug("Project finished", zap.Int("completed", completed), zap.Int("total", total))
	})

	report := &RunReport{RunID: runID}
	reports := make(map[string]ProjectReport, len(results))
	var errs []error
	for _, result := range results {
		driver := drivers[result.ID]
		pr := ProjectReport{Stats: driver.Stats()}
		if result.Err != nil {
			pr.Error = result.Err.Error()
			errs = append(errs, result.Err)
		}
		reports[result.ID] = pr
	}
	for _, project := range projects {
		pr := reports[project.String()]
		pr.Project = project
		report.Projects = append(report.Projects, pr)
		report.Stats.Add(pr.Stats)
	}
	report.Elapsed = time.Since(start)

	fields := []zap.Field{
		zap.Int("issues_written", report.Stats.Issues.Written),
		zap.Int("issues_existing", report.Stats.Issues.Existing),
		zap.Int("comments_written", report.Stats.Comments.Written),
		zap.Int("comments_existing", report.Stats.Comments.Existing),
		zap.Int("events_written", report.Stats.Events.Written),
		zap.Int("failed", report.Stats.Failed()),
		zap.Duration("elapsed", report.Elapsed),
	}
	if err := errors.Join(errs...); err != nil {
		logger.Error("Ingestion finished with errors", append(fields, zap.Error(err))...)
		return report, err
	}
	logger.Info("Ingestion finished", fields...)
	return report, nil
}

func uniqueProjects(projects []models.Project) []models.Project {
	seen := make(map[models.Project]bool, len(projects))
	unique := make([]models.Project, 0, len(projects))
	for _, project := range projects {
		if !seen[project] {
			seen[project] = true
			unique = append(unique, project)
		}
	}
	return unique
}
