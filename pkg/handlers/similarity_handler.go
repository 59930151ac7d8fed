package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/services"
)

// SimilarIssuesResponse is returned by GET /api/similar-issues.
type SimilarIssuesResponse struct {
	Thresholds models.SimilarityThresholds `json:"thresholds"`
	Unique     bool                        `json:"unique"`
	Count      int                         `json:"count"`
	Matches    []*models.SimilarIssueMatch `json:"matches"`
}

// SimilarityHandler serves probable duplicate issues.
type SimilarityHandler struct {
	similarityService services.SimilarityService
	defaults          models.SimilarityThresholds
	logger            *zap.Logger
}

// NewSimilarityHandler creates a SimilarityHandler. defaults apply when a
// request omits a threshold.
func NewSimilarityHandler(similarityService services.SimilarityService, defaults models.SimilarityThresholds, logger *zap.Logger) *SimilarityHandler {
	return &SimilarityHandler{
		similarityService: similarityService,
		defaults:          defaults,
		logger:            logger,
	}
}

// RegisterRoutes registers the similarity handler's routes on the given mux.
func (h *SimilarityHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/similar-issues", h.ListSimilarIssues)
}

// ListSimilarIssues handles
// GET /api/similar-issues?max_title_distance=&max_description_distance=&unique=
func (h *SimilarityHandler) ListSimilarIssues(w http.ResponseWriter, r *http.Request) {
	maxTitle, err := parseFloatParam(r, "max_title_distance", h.defaults.MaxTitleDistance)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	maxDescription, err := parseFloatParam(r, "max_description_distance", h.defaults.MaxDescriptionDistance)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	unique, err := parseBoolParam(r, "unique", false)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	matches, err := h.similarityService.FindSimilarIssues(r.Context(), maxTitle, maxDescription)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	if unique {
		matches = services.UniquePairs(matches)
	}

	response := SimilarIssuesResponse{
		Thresholds: models.SimilarityThresholds{
			MaxTitleDistance:       maxTitle,
			MaxDescriptionDistance: maxDescription,
		},
		Unique:  unique,
		Count:   len(matches),
		Matches: matches,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode similar issues response", zap.Error(err))
	}
}
