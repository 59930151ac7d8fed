package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/models"
)

type memoryEventKey struct {
	models.IssueEventKey
	Type models.IssueEventType
}

// MemoryStore keeps issues, comments and events in process memory.
// It has the same semantics as the PostgreSQL repositories, with distances
// computed by models.CosineDistance. Used for dry runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	issues   map[models.IssueKey]models.Issue
	comments map[models.IssueCommentKey]models.IssueComment
	events   map[memoryEventKey]models.IssueEvent
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		issues:   make(map[models.IssueKey]models.Issue),
		comments: make(map[models.IssueCommentKey]models.IssueComment),
		events:   make(map[memoryEventKey]models.IssueEvent),
	}
}

var (
	_ ExistenceOracle      = (*MemoryStore)(nil)
	_ SimilarityRepository = (*MemoryStore)(nil)
)

// Repositories returns every repository view of the store.
func (s *MemoryStore) Repositories() *Repositories {
	return &Repositories{
		Oracle:     s,
		Issues:     memoryIssues{s},
		Comments:   memoryComments{s},
		Events:     memoryEvents{s},
		Similarity: s,
	}
}

// Counts returns how many issues, comments and events are stored.
func (s *MemoryStore) Counts() (issues, comments, events int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.issues), len(s.comments), len(s.events)
}

func (s *MemoryStore) IssueExists(ctx context.Context, project models.Project, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.issues[models.IssueKey{Project: project, ID: id}]
	return ok, nil
}

func (s *MemoryStore) IssueCommentExists(ctx context.Context, project models.Project, issueID, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.comments[models.IssueCommentKey{Project: project, IssueID: issueID, ID: id}]
	return ok, nil
}

func (s *MemoryStore) IssueEventExists(ctx context.Context, project models.Project, id, relatedObjectID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := models.IssueEventKey{Project: project, ID: id, RelatedObjectID: relatedObjectID}
	for k := range s.events {
		if k.IssueEventKey == key {
			return true, nil
		}
	}
	return false, nil
}

// FindSimilarIssues implements SimilarityRepository.
func (s *MemoryStore) FindSimilarIssues(ctx context.Context, thresholds models.SimilarityThresholds) ([]*models.SimilarIssueMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	closed := make(map[models.IssueKey]bool)
	for k := range s.events {
		if k.Type == models.IssueEventClosed {
			closed[models.IssueKey{Project: k.Project, ID: k.ID}] = true
		}
	}

	byProject := make(map[models.Project][]models.Issue)
	for key, issue := range s.issues {
		if !closed[key] {
			byProject[key.Project] = append(byProject[key.Project], issue)
		}
	}

	var matches []*models.SimilarIssueMatch
	for project, issues := range byProject {
		for _, a := range issues {
			for _, b := range issues {
				if a.ID == b.ID {
					continue
				}
				titleDistance, err := models.CosineDistance(a.TitleVector, b.TitleVector)
				if err != nil {
					return nil, fmt.Errorf("issues %d and %d: %w: %w", a.ID, b.ID, apperrors.ErrQuery, err)
				}
				descriptionDistance, err := models.CosineDistance(a.DescriptionVector, b.DescriptionVector)
				if err != nil {
					return nil, fmt.Errorf("issues %d and %d: %w: %w", a.ID, b.ID, apperrors.ErrQuery, err)
				}
				if titleDistance <= thresholds.MaxTitleDistance && descriptionDistance <= thresholds.MaxDescriptionDistance {
					matches = append(matches, &models.SimilarIssueMatch{
						Project:             project,
						Issue1ID:            a.ID,
						Issue2ID:            b.ID,
						Issue1Title:         a.Title,
						Issue2Title:         b.Title,
						TitleDistance:       titleDistance,
						DescriptionDistance: descriptionDistance,
					})
				}
			}
		}
	}

	slices.SortFunc(matches, compareMatches)
	return matches, nil
}

// compareMatches orders matches the way the PostgreSQL query does.
func compareMatches(a, b *models.SimilarIssueMatch) int {
	return cmp.Or(
		cmp.Compare(a.Project.SourceSystem, b.Project.SourceSystem),
		cmp.Compare(a.Project.Owner, b.Project.Owner),
		cmp.Compare(a.Project.Name, b.Project.Name),
		cmp.Compare(a.Issue1ID, b.Issue1ID),
		cmp.Compare(a.Issue2ID, b.Issue2ID),
	)
}

type memoryIssues struct{ s *MemoryStore }

func (r memoryIssues) Create(ctx context.Context, issue *models.Issue) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := issue.Key()
	if _, ok := r.s.issues[key]; ok {
		return false, nil
	}
	stored := *issue
	stored.Labels = slices.Clone(issue.Labels)
	stored.TitleVector = slices.Clone(issue.TitleVector)
	stored.DescriptionVector = slices.Clone(issue.DescriptionVector)
	r.s.issues[key] = stored
	return true, nil
}

func (r memoryIssues) Get(ctx context.Context, project models.Project, id int64) (*models.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	issue, ok := r.s.issues[models.IssueKey{Project: project, ID: id}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &issue, nil
}

type memoryComments struct{ s *MemoryStore }

func (r memoryComments) Create(ctx context.Context, comment *models.IssueComment) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := comment.Key()
	if _, ok := r.s.comments[key]; ok {
		return false, nil
	}
	stored := *comment
	stored.BodyVector = slices.Clone(comment.BodyVector)
	r.s.comments[key] = stored
	return true, nil
}

func (r memoryComments) Get(ctx context.Context, project models.Project, issueID, id int64) (*models.IssueComment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comment, ok := r.s.comments[models.IssueCommentKey{Project: project, IssueID: issueID, ID: id}]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &comment, nil
}

type memoryEvents struct{ s *MemoryStore }

func (r memoryEvents) Create(ctx context.Context, event *models.IssueEvent) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := memoryEventKey{IssueEventKey: event.Key(), Type: event.Type}
	if _, ok := r.s.events[key]; ok {
		return false, nil
	}
	r.s.events[key] = *event
	return true, nil
}

func (r memoryEvents) ListByIssue(ctx context.Context, project models.Project, id int64) ([]*models.IssueEvent, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var events []*models.IssueEvent
	for k, event := range r.s.events {
		if k.Project == project && k.ID == id {
			e := event
			events = append(events, &e)
		}
	}
	slices.SortFunc(events, func(a, b *models.IssueEvent) int {
		return cmp.Or(
			a.Timestamp.Compare(b.Timestamp),
			cmp.Compare(a.Type, b.Type),
			cmp.Compare(a.RelatedObjectID, b.RelatedObjectID),
		)
	})
	return events, nil
}
