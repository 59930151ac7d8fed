package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/services"
)

// IssueHandler serves stored issues and comments.
type IssueHandler struct {
	issueService services.IssueService
	logger       *zap.Logger
}

// NewIssueHandler creates an IssueHandler.
func NewIssueHandler(issueService services.IssueService, logger *zap.Logger) *IssueHandler {
	return &IssueHandler{
		issueService: issueService,
		logger:       logger,
	}
}

// RegisterRoutes registers the issue handler's routes on the given mux.
func (h *IssueHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects/{source}/{owner}/{name}/issues/{id}", h.GetIssue)
	mux.HandleFunc("GET /api/projects/{source}/{owner}/{name}/issues/{id}/comments/{comment_id}", h.GetIssueComment)
}

// GetIssue handles GET /api/projects/{source}/{owner}/{name}/issues/{id}
func (h *IssueHandler) GetIssue(w http.ResponseWriter, r *http.Request) {
	project, err := parseProjectPath(r)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	id, err := parseIDPath(r, "id")
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	detail, err := h.issueService.GetIssue(r.Context(), project, id)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, detail); err != nil {
		h.logger.Error("Failed to encode issue response", zap.Error(err))
	}
}

// GetIssueComment handles
// GET /api/projects/{source}/{owner}/{name}/issues/{id}/comments/{comment_id}
func (h *IssueHandler) GetIssueComment(w http.ResponseWriter, r *http.Request) {
	project, err := parseProjectPath(r)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	issueID, err := parseIDPath(r, "id")
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	commentID, err := parseIDPath(r, "comment_id")
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	comment, err := h.issueService.GetIssueComment(r.Context(), project, issueID, commentID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	if err := WriteJSON(w, http.StatusOK, comment); err != nil {
		h.logger.Error("Failed to encode comment response", zap.Error(err))
	}
}
