// Package models contains domain types for pie.
package models

import (
	"fmt"
	"strings"
)

// SourceSystem identifies the issue tracker a project lives in.
// The integer values are stored in the source_system column and must stay stable.
type SourceSystem int16

const (
	SourceSystemGitHub SourceSystem = 0
	SourceSystemJira   SourceSystem = 1
)

var sourceSystemNames = map[SourceSystem]string{
	SourceSystemGitHub: "github",
	SourceSystemJira:   "jira",
}

// String returns the lowercase name of the source system.
func (s SourceSystem) String() string {
	if name, ok := sourceSystemNames[s]; ok {
		return name
	}
	return fmt.Sprintf("source_system(%d)", int16(s))
}

// Valid reports whether s is a known source system.
func (s SourceSystem) Valid() bool {
	_, ok := sourceSystemNames[s]
	return ok
}

// ParseSourceSystem converts a name such as "github" or "JIRA" to a SourceSystem.
func ParseSourceSystem(name string) (SourceSystem, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for system, systemName := range sourceSystemNames {
		if systemName == lower {
			return system, nil
		}
	}
	return 0, fmt.Errorf("unknown source system %q", name)
}

// Project identifies a project in a source system.
// It is the partition key for every issue, comment and event.
type Project struct {
	// SourceSystem is the tracker the project belongs to.
	SourceSystem SourceSystem `json:"source_system" yaml:"source_system"`
	// Owner is the organisation or domain for the project.
	Owner string `json:"owner" yaml:"owner"`
	// Name is the project name within the owner.
	Name string `json:"name" yaml:"name"`
}

// String renders the project as "github:owner/name".
func (p Project) String() string {
	return fmt.Sprintf("%s:%s/%s", p.SourceSystem, p.Owner, p.Name)
}

// Validate checks that the project can be used as a partition key.
func (p Project) Validate() error {
	if !p.SourceSystem.Valid() {
		return fmt.Errorf("invalid source system %d", int16(p.SourceSystem))
	}
	if strings.TrimSpace(p.Owner) == "" {
		return fmt.Errorf("project owner is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name is required")
	}
	return nil
}
