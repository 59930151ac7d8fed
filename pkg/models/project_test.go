package models

import (
	"testing"
)

func TestSourceSystem_WireValues(t *testing.T) {
	// These values are persisted; renumbering breaks existing rows.
	if SourceSystemGitHub != 0 {
		t.Errorf("SourceSystemGitHub = %d, want 0", SourceSystemGitHub)
	}
	if SourceSystemJira != 1 {
		t.Errorf("SourceSystemJira = %d, want 1", SourceSystemJira)
	}
}

func TestParseSourceSystem(t *testing.T) {
	tests := []struct {
		input   string
		want    SourceSystem
		wantErr bool
	}{
		{"github", SourceSystemGitHub, false},
		{"GitHub", SourceSystemGitHub, false},
		{" jira ", SourceSystemJira, false},
		{"gitlab", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSourceSystem(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSourceSystem(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseSourceSystem(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSourceSystem_StringUnknown(t *testing.T) {
	if got := SourceSystem(9).String(); got != "source_system(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestProject_String(t *testing.T) {
	p := Project{SourceSystem: SourceSystemGitHub, Owner: "acme", Name: "widgets"}
	if got := p.String(); got != "github:acme/widgets" {
		t.Errorf("String() = %q, want github:acme/widgets", got)
	}
}

func TestProject_Validate(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		wantErr bool
	}{
		{"valid", Project{SourceSystemGitHub, "acme", "widgets"}, false},
		{"unknown source", Project{SourceSystem(7), "acme", "widgets"}, true},
		{"missing owner", Project{SourceSystemJira, " ", "widgets"}, true},
		{"missing name", Project{SourceSystemJira, "acme", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.project.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProject_Comparable(t *testing.T) {
	a := Project{SourceSystemGitHub, "acme", "widgets"}
	b := Project{SourceSystemGitHub, "acme", "widgets"}
	c := Project{SourceSystemJira, "acme", "widgets"}

	seen := map[Project]bool{a: true}
	if !seen[b] {
		t.Error("expected identical projects to share a map key")
	}
	if seen[c] {
		t.Error("expected projects in different source systems to differ")
	}
}
