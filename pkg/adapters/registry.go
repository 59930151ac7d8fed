// Package adapters routes projects to the loader for their source system.
package adapters

import (
	"context"
	"fmt"
	"sync"

	"github.com/dense-analysis/pie/pkg/models"
	"github.com/dense-analysis/pie/pkg/services"
)

// Registry holds one loader per source system and dispatches each project to
// the loader registered for it.
type Registry struct {
	mu      sync.RWMutex
	loaders map[models.SourceSystem]services.ProjectLoader
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[models.SourceSystem]services.ProjectLoader)}
}

var _ services.ProjectLoader = (*Registry)(nil)

// Register sets the loader for system, replacing any previous one.
func (r *Registry) Register(system models.SourceSystem, loader services.ProjectLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[system] = loader
}

// SourceSystems returns the systems with a registered loader.
func (r *Registry) SourceSystems() []models.SourceSystem {
	r.mu.RLock()
	defer r.mu.RUnlock()

	systems := make([]models.SourceSystem, 0, len(r.loaders))
	for system := range r.loaders {
		systems = append(systems, system)
	}
	return systems
}

// Load implements services.ProjectLoader.
func (r *Registry) Load(ctx context.Context, project models.Project, sink services.RecordSink) error {
	r.mu.RLock()
	loader, ok := r.loaders[project.SourceSystem]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no loader for source system %s (project %s)", project.SourceSystem, project)
	}
	return loader.Load(ctx, project, sink)
}
