package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/models"
)

// parseFloatParam reads a float query parameter, returning def when absent.
func parseFloatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, apperrors.ErrInvalidArgument)
	}
	return value, nil
}

// parseBoolParam reads a boolean query parameter, returning def when absent.
func parseBoolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false: %w", name, apperrors.ErrInvalidArgument)
	}
	return value, nil
}

// parseProjectPath reads the {source}, {owner} and {name} path values.
func parseProjectPath(r *http.Request) (models.Project, error) {
	system, err := models.ParseSourceSystem(r.PathValue("source"))
	if err != nil {
		return models.Project{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidArgument, err)
	}
	project := models.Project{
		SourceSystem: system,
		Owner:        r.PathValue("owner"),
		Name:         r.PathValue("name"),
	}
	if err := project.Validate(); err != nil {
		return models.Project{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidArgument, err)
	}
	return project, nil
}

// parseIDPath reads a numeric path value.
func parseIDPath(r *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, apperrors.ErrInvalidArgument)
	}
	return value, nil
}
