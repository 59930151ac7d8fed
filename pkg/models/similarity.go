package models

import (
	"fmt"
	"math"
)

// MaxCosineDistance is the largest possible cosine distance.
const MaxCosineDistance = 2.0

// SimilarityThresholds bounds the distances a pair of issues may have to be
// reported as a probable duplicate. Both bounds are inclusive.
type SimilarityThresholds struct {
	MaxTitleDistance       float64 `json:"max_title_distance" yaml:"max_title_distance"`
	MaxDescriptionDistance float64 `json:"max_description_distance" yaml:"max_description_distance"`
}

// DefaultSimilarityThresholds returns 0.2 for both title and description.
func DefaultSimilarityThresholds() SimilarityThresholds {
	return SimilarityThresholds{
		MaxTitleDistance:       0.2,
		MaxDescriptionDistance: 0.2,
	}
}

// Validate checks both thresholds are finite and within [0, 2].
func (t SimilarityThresholds) Validate() error {
	if err := validateDistance("max_title_distance", t.MaxTitleDistance); err != nil {
		return err
	}
	return validateDistance("max_description_distance", t.MaxDescriptionDistance)
}

func validateDistance(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	if value < 0 || value > MaxCosineDistance {
		return fmt.Errorf("%s must be between 0 and %g, got %g", name, MaxCosineDistance, value)
	}
	return nil
}

// SimilarIssueMatch is one directional pair of open issues in the same project
// whose title and description vectors are both within threshold.
type SimilarIssueMatch struct {
	Project             Project `json:"project" yaml:"project"`
	Issue1ID            int64   `json:"issue1_id" yaml:"issue1_id"`
	Issue2ID            int64   `json:"issue2_id" yaml:"issue2_id"`
	Issue1Title         string  `json:"issue1_title" yaml:"issue1_title"`
	Issue2Title         string  `json:"issue2_title" yaml:"issue2_title"`
	TitleDistance       float64 `json:"title_distance" yaml:"title_distance"`
	DescriptionDistance float64 `json:"description_distance" yaml:"description_distance"`
}
