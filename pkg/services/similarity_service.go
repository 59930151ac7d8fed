package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/repositories"
)

// SimilarityService reports probable duplicate issues.
type SimilarityService interface {
	// FindSimilarIssues returns every ordered pair of open issues in the same
	// project whose title and description distances are both within the
	// inclusive thresholds. Returns an empty, non-nil slice when nothing matches.
	FindSimilarIssues(ctx context.Context, maxTitleDistance, maxDescriptionDistance float64) ([]*models.SimilarIssueMatch, error)
}

type similarityService struct {
	repo   repositories.SimilarityRepository
	logger *zap.Logger
}

// NewSimilarityService creates a SimilarityService over repo.
func NewSimilarityService(repo repositories.SimilarityRepository, logger *zap.Logger) SimilarityService {
	return &similarityService{
		repo:   repo,
		logger: logger.Named("similarity-service"),
	}
}

var _ SimilarityService = (*similarityService)(nil)

func (s *similarityService) FindSimilarIssues(ctx context.Context, maxTitleDistance, maxDescriptionDistance float64) ([]*models.SimilarIssueMatch, error) {
	thresholds := models.SimilarityThresholds{
		MaxTitleDistance:       maxTitleDistance,
		MaxDescriptionDistance: maxDescriptionDistance,
	}
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidArgument, err)
	}

	start := time.Now()
	matches, err := s.repo.FindSimilarIssues(ctx, thresholds)
	if err != nil {
		s.logger.Error("Failed to find similar issues",
			zap.Float64("max_title_distance", maxTitleDistance),
			zap.Float64("max_description_distance", maxDescriptionDistance),
			zap.Error(err))
		return nil, err
	}
	if matches == nil {
		matches = []*models.SimilarIssueMatch{}
	}

	s.logger.Info("Found similar issues",
		zap.Int("pairs", len(matches)),
		zap.Float64("max_title_distance", maxTitleDistance),
		zap.Float64("max_description_distance", maxDescriptionDistance),
		zap.Duration("elapsed", time.Since(start)))

	return matches, nil
}

// UniquePairs collapses each (A, B)/(B, A) pair into one match with the lower
// id first, keeping the order in which pairs are first seen.
func UniquePairs(matches []*models.SimilarIssueMatch) []*models.SimilarIssueMatch {
	type pairKey struct {
		project models.Project
		low     int64
		high    int64
	}

	seen := make(map[pairKey]bool, len(matches)/2)
	unique := make([]*models.SimilarIssueMatch, 0, len(matches)/2)
	for _, m := range matches {
		normalized := *m
		if normalized.Issue1ID > normalized.Issue2ID {
			normalized.Issue1ID, normalized.Issue2ID = normalized.Issue2ID, normalized.Issue1ID
			normalized.Issue1Title, normalized.Issue2Title = normalized.Issue2Title, normalized.Issue1Title
		}
		key := pairKey{project: normalized.Project, low: normalized.Issue1ID, high: normalized.Issue2ID}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, &normalized)
	}
	return unique
}
